package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/metrics"
	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/pkg/xcache"
	"github.com/looplj/ecagate/internal/upstream"
)

const allBotsKey = "allBots"

type BotServiceParams struct {
	fx.In

	Registry    BotRegistry
	CacheConfig xcache.Config
	Bots        upstream.BotsConfig
	Config      ValidationConfig
}

// BotService answers whether a mail belongs to an automated or allow-listed identity.
type BotService struct {
	registry  BotRegistry
	allowList []string
	bots      *xcache.Loader[[]objects.Bot]
}

func NewBotService(params BotServiceParams) (*BotService, error) {
	cache, err := xcache.NewFromConfig[[]objects.Bot](context.Background(), params.CacheConfig, "bots")
	if err != nil {
		return nil, fmt.Errorf("failed to create bot cache: %w", err)
	}

	var opts []xcache.LoaderOption[[]objects.Bot]
	if params.Bots.CacheTTL > 0 {
		opts = append(opts, xcache.WithSetOptions[[]objects.Bot](xcache.WithExpiration(params.Bots.CacheTTL)))
	}

	return newBotService(params.Registry, params.Config.AllowList, cache, opts...), nil
}

func newBotService(
	registry BotRegistry,
	allowList []string,
	cache xcache.Cache[[]objects.Bot],
	opts ...xcache.LoaderOption[[]objects.Bot],
) *BotService {
	return &BotService{
		registry:  registry,
		allowList: allowList,
		bots:      xcache.NewLoader(cache, opts...),
	}
}

// IsAllowed reports exact membership of mail in the allow-list.
func (s *BotService) IsAllowed(mail string) bool {
	return lo.Contains(s.allowList, mail)
}

// IsBot reports whether mail belongs to a registered bot. With matched projects
// only bots owned by one of them count, otherwise every bot is considered.
func (s *BotService) IsBot(ctx context.Context, mail string, matched []objects.Project) bool {
	if strings.TrimSpace(mail) == "" {
		return false
	}

	bots := s.Bots(ctx)

	if len(matched) == 0 {
		return lo.ContainsBy(bots, func(bot objects.Bot) bool {
			return bot.MatchesMail(mail)
		})
	}

	for _, project := range matched {
		for _, bot := range bots {
			if bot.IsOwnedBy(project.ProjectID) && bot.MatchesMail(mail) {
				log.Debug(ctx, "found matching bot",
					log.String("mail", mail),
					log.String("project_id", project.ProjectID))

				return true
			}
		}
	}

	return false
}

// Bots returns the cached registry. A registry failure yields an empty list and is retried on the next call.
func (s *BotService) Bots(ctx context.Context) []objects.Bot {
	bots, err := s.bots.Get(ctx, allBotsKey, func(ctx context.Context) ([]objects.Bot, error) {
		bots, err := s.registry.ListBots(ctx)
		if err != nil {
			metrics.RecordLookup(ctx, "bots", "error")
			return nil, err
		}

		metrics.RecordLookup(ctx, "bots", "found")

		return bots, nil
	})
	if err != nil {
		log.Error(ctx, "failed to load bots", log.Cause(err))
		return []objects.Bot{}
	}

	return bots
}

// Forget drops the cached registry.
func (s *BotService) Forget(ctx context.Context) error {
	return s.bots.Delete(ctx, allBotsKey)
}
