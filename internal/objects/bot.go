package objects

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// Bot is a registered automation account. Besides the root mail a bot may carry
// one alias per site, e.g. a GitHub or GitLab account used by the same automation.
type Bot struct {
	ID        int        `json:"id"`
	ProjectID string     `json:"projectId"`
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email,omitempty"`
	Aliases   []BotAlias `json:"aliases,omitempty"`
}

type BotAlias struct {
	Site     string `json:"site"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

var ErrInvalidBotDocument = errors.New("bots document must be a JSON array")

// ParseBots reads the loosely typed bots document. Every nested object of a
// record is an alias keyed by its site; unknown scalar fields are ignored.
func ParseBots(raw []byte) ([]Bot, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidBotDocument
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, ErrInvalidBotDocument
	}

	records := doc.Array()
	bots := make([]Bot, 0, len(records))

	for _, record := range records {
		if !record.IsObject() {
			continue
		}

		bot := Bot{
			ID:        int(record.Get("id").Int()),
			ProjectID: record.Get("projectId").String(),
			Username:  record.Get("username").String(),
			Email:     record.Get("email").String(),
		}

		record.ForEach(func(key, value gjson.Result) bool {
			if value.IsObject() {
				bot.Aliases = append(bot.Aliases, BotAlias{
					Site:     key.String(),
					Username: value.Get("username").String(),
					Email:    value.Get("email").String(),
				})
			}

			return true
		})

		bots = append(bots, bot)
	}

	return bots, nil
}

// MatchesMail reports whether mail equals the root or any alias mail, ignoring case.
func (b Bot) MatchesMail(mail string) bool {
	mail = strings.TrimSpace(mail)
	if mail == "" {
		return false
	}

	if b.Email != "" && strings.EqualFold(b.Email, mail) {
		return true
	}

	for _, alias := range b.Aliases {
		if alias.Email != "" && strings.EqualFold(alias.Email, mail) {
			return true
		}
	}

	return false
}

// IsOwnedBy reports whether the bot belongs to the project, ignoring case.
func (b Bot) IsOwnedBy(projectID string) bool {
	return projectID != "" && strings.EqualFold(b.ProjectID, projectID)
}
