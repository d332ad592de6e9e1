package biz

import (
	"context"

	"github.com/looplj/ecagate/internal/objects"
)

// AccountDirectory resolves mail addresses and GitHub handles to directory accounts.
type AccountDirectory interface {
	LookupByMail(ctx context.Context, mail string) ([]objects.EclipseUser, error)
	LookupByGithubHandle(ctx context.Context, handle string) (*objects.EclipseUser, error)
}

type BotRegistry interface {
	ListBots(ctx context.Context) ([]objects.Bot, error)
}

type ProjectCatalog interface {
	ListProjects(ctx context.Context) ([]objects.Project, error)
}
