package dependencies

import (
	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/server/biz"
	"github.com/looplj/ecagate/internal/upstream"
)

var Module = fx.Module("dependencies",
	fx.Provide(
		fx.Annotate(upstream.NewAccountsClient, fx.As(new(biz.AccountDirectory))),
		fx.Annotate(upstream.NewBotsClient, fx.As(new(biz.BotRegistry))),
		fx.Annotate(upstream.NewProjectsClient, fx.As(new(biz.ProjectCatalog))),
	),
)
