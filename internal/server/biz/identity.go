package biz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/metrics"
	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/pkg/httpclient"
	"github.com/looplj/ecagate/internal/pkg/xcache"
	"github.com/looplj/ecagate/internal/pkg/xregexp"
	"github.com/looplj/ecagate/internal/upstream"
)

const (
	userCacheKeyPrefix = "user|"
	githubNoreplyHost  = "noreply.github.com"
)

type IdentityServiceParams struct {
	fx.In

	Directory   AccountDirectory
	CacheConfig xcache.Config
	Accounts    upstream.AccountsConfig
	Config      ValidationConfig
}

// IdentityService maps git identities to directory accounts.
type IdentityService struct {
	directory AccountDirectory
	noreply   *xregexp.PatternSet
	users     *xcache.Loader[*objects.EclipseUser]
}

func NewIdentityService(params IdentityServiceParams) (*IdentityService, error) {
	noreply, err := params.Config.CompileNoreplyPatterns()
	if err != nil {
		return nil, fmt.Errorf("invalid noreply patterns: %w", err)
	}

	cache, err := xcache.NewFromConfig[*objects.EclipseUser](context.Background(), params.CacheConfig, "users")
	if err != nil {
		return nil, fmt.Errorf("failed to create user cache: %w", err)
	}

	var opts []xcache.LoaderOption[*objects.EclipseUser]
	if params.Accounts.CacheTTL > 0 {
		opts = append(opts, xcache.WithSetOptions[*objects.EclipseUser](xcache.WithExpiration(params.Accounts.CacheTTL)))
	}

	return newIdentityService(params.Directory, noreply, cache, opts...), nil
}

func newIdentityService(
	directory AccountDirectory,
	noreply *xregexp.PatternSet,
	cache xcache.Cache[*objects.EclipseUser],
	opts ...xcache.LoaderOption[*objects.EclipseUser],
) *IdentityService {
	opts = append([]xcache.LoaderOption[*objects.EclipseUser]{
		xcache.WithSkip(func(user *objects.EclipseUser) bool {
			return user == nil
		}),
	}, opts...)

	return &IdentityService{
		directory: directory,
		noreply:   noreply,
		users:     xcache.NewLoader(cache, opts...),
	}
}

// Resolve returns the directory account of user, or nil when none can be found.
// Directory failures are logged and reported as unresolved.
func (s *IdentityService) Resolve(ctx context.Context, user objects.GitUser) *objects.EclipseUser {
	found, err := s.users.Get(ctx, userCacheKeyPrefix+user.Mail, func(ctx context.Context) (*objects.EclipseUser, error) {
		return s.retrieve(ctx, user)
	})
	if err != nil {
		log.Error(ctx, "error while checking for user", log.String("mail", user.Mail), log.Cause(err))
		return nil
	}

	if found == nil {
		log.Warn(ctx, "no users found for mail", log.String("mail", user.Mail))
		return nil
	}

	return found
}

// Forget drops every cached account.
func (s *IdentityService) Forget(ctx context.Context) error {
	return s.users.Clear(ctx)
}

func (s *IdentityService) retrieve(ctx context.Context, user objects.GitUser) (*objects.EclipseUser, error) {
	if found := s.lookupNoreply(ctx, user); found != nil {
		return found, nil
	}

	log.Debug(ctx, "checking user with mail", log.String("mail", user.Mail))

	users, err := s.directory.LookupByMail(ctx, user.Mail)
	if err != nil {
		if httpclient.IsNotFoundErr(err) {
			metrics.RecordLookup(ctx, "mail", "not_found")
			return nil, nil
		}

		metrics.RecordLookup(ctx, "mail", "error")

		return nil, err
	}

	if len(users) == 0 {
		metrics.RecordLookup(ctx, "mail", "not_found")
		return nil, nil
	}

	metrics.RecordLookup(ctx, "mail", "found")

	// The first match is authoritative.
	return &users[0], nil
}

// lookupNoreply resolves GitHub no-reply addresses through the linked GitHub handle.
func (s *IdentityService) lookupNoreply(ctx context.Context, user objects.GitUser) *objects.EclipseUser {
	mail := strings.TrimSpace(user.Mail)
	if !s.noreply.MatchAny(mail) {
		return nil
	}

	handle := NoreplyHandle(mail)
	log.Debug(ctx, "noreply mail detected", log.String("mail", mail), log.String("handle", handle))

	if !strings.HasSuffix(mail, githubNoreplyHost) || handle == "" {
		return nil
	}

	found, err := s.directory.LookupByGithubHandle(ctx, handle)
	if err != nil {
		metrics.RecordLookup(ctx, "github", "not_found")
		log.Warn(ctx, "no match for handle in github", log.String("handle", handle), log.Cause(err))

		return nil
	}

	metrics.RecordLookup(ctx, "github", "found")

	return found
}

// NoreplyHandle extracts the user handle of a no-reply address: the local part,
// or the segment after the first '+' for "id+handle@" addresses when it is not blank.
func NoreplyHandle(mail string) string {
	local, _, _ := strings.Cut(mail, "@")

	parts := strings.Split(local, "+")
	if len(parts) > 1 {
		if handle := strings.TrimSpace(parts[1]); handle != "" {
			return handle
		}
	}

	return strings.TrimSpace(parts[0])
}
