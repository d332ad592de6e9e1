package biz

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/looplj/ecagate/internal/log"
)

type CacheServiceParams struct {
	fx.In

	Projects   *ProjectService
	Identities *IdentityService
	Bots       *BotService
}

// CacheService loads and resets the upstream data held by the other services.
type CacheService struct {
	projects   *ProjectService
	identities *IdentityService
	bots       *BotService
}

func NewCacheService(params CacheServiceParams) *CacheService {
	return &CacheService{
		projects:   params.Projects,
		identities: params.Identities,
		bots:       params.Bots,
	}
}

// Warmup loads the project catalog and the bot registry concurrently.
// Only a catalog failure is returned; bots are loaded again on first use.
func (s *CacheService) Warmup(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		if err := s.projects.Load(ctx); err != nil {
			return fmt.Errorf("failed to load project catalog: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		bots := s.bots.Bots(ctx)
		log.Info(ctx, "bot registry loaded", log.Int("bots", len(bots)))

		return nil
	})

	return g.Wait()
}

// Refresh reloads the catalog and drops cached accounts and bots.
func (s *CacheService) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.projects.Load(gctx)
	})

	g.Go(func() error {
		return s.identities.Forget(gctx)
	})

	g.Go(func() error {
		return s.bots.Forget(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to refresh caches: %w", err)
	}

	log.Info(ctx, "caches refreshed", log.Time("catalog_updated_at", s.projects.LastUpdate()))

	return nil
}
