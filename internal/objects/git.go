package objects

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GitUser is the raw identity recorded on a commit.
type GitUser struct {
	Name string `json:"name"`
	Mail string `json:"mail"`
}

func (u GitUser) String() string {
	return fmt.Sprintf("%s <%s>", u.Name, u.Mail)
}

type Commit struct {
	Hash                 string     `json:"hash"`
	Subject              string     `json:"subject,omitempty"`
	Body                 string     `json:"body,omitempty"`
	Parents              []string   `json:"parents"`
	Author               *GitUser   `json:"author"`
	Committer            *GitUser   `json:"committer"`
	Head                 bool       `json:"head,omitempty"`
	LastModificationDate *time.Time `json:"lastModificationDate,omitempty"`
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// IsValid reports whether the commit carries a hash and both identities with a mail.
func (c Commit) IsValid() bool {
	if strings.TrimSpace(c.Hash) == "" {
		return false
	}

	if c.Author == nil || strings.TrimSpace(c.Author.Mail) == "" {
		return false
	}

	if c.Committer == nil || strings.TrimSpace(c.Committer.Mail) == "" {
		return false
	}

	return true
}

type ProviderType string

const (
	ProviderGithub ProviderType = "github"
	ProviderGitlab ProviderType = "gitlab"
	ProviderGerrit ProviderType = "gerrit"
)

func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderGithub, ProviderGitlab, ProviderGerrit:
		return true
	default:
		return false
	}
}

// UnmarshalJSON accepts the provider name in any case. An empty value is kept as is
// so a missing provider can be reported by the validation itself.
func (p *ProviderType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("provider must be a string: %w", err)
	}

	provider := ProviderType(strings.ToLower(strings.TrimSpace(raw)))
	if provider != "" && !provider.IsValid() {
		return fmt.Errorf("unsupported provider %q", raw)
	}

	*p = provider

	return nil
}
