package biz

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("biz",
	fx.Provide(NewProjectService),
	fx.Provide(NewIdentityService),
	fx.Provide(NewBotService),
	fx.Provide(NewValidationService),
	fx.Provide(NewCacheService),
	fx.Invoke(func(lc fx.Lifecycle, svc *CacheService, projects *ProjectService) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return svc.Warmup(ctx)
			},
			OnStop: func(ctx context.Context) error {
				projects.Stop()
				return nil
			},
		})
	}),
)
