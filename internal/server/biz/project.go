package biz

import (
	"context"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/pkg/xcache/live"
	"github.com/looplj/ecagate/internal/upstream"
)

const matchMemoSize = 1024

type ProjectServiceParams struct {
	fx.In

	Catalog ProjectCatalog
	Config  upstream.ProjectsConfig
}

// ProjectService keeps the project catalog in memory and matches requests against it.
type ProjectService struct {
	catalog *live.Cache[[]objects.Project]

	// matches memoizes MatchProjects per catalog snapshot.
	matches *lru.Cache[string, projectMatch]
}

// projectMatch is a memoized match tagged with the load time of the snapshot it was computed from.
type projectMatch struct {
	loadedAt time.Time
	projects []objects.Project
}

func NewProjectService(params ProjectServiceParams) *ProjectService {
	return newProjectService(params.Catalog, params.Config.RefreshInterval)
}

func newProjectService(catalog ProjectCatalog, refreshInterval time.Duration) *ProjectService {
	matches, err := lru.New[string, projectMatch](matchMemoSize)
	if err != nil {
		panic(err)
	}

	svc := &ProjectService{matches: matches}
	svc.catalog = live.NewCache(live.Options[[]objects.Project]{
		Name:            "projects",
		RefreshFunc:     catalog.ListProjects,
		RefreshInterval: refreshInterval,
		OnSwap: func(_, projects []objects.Project) {
			svc.matches.Purge()
			log.Debug(context.Background(), "project catalog swapped", log.Int("projects", len(projects)))
		},
	})

	return svc
}

// Load fetches the catalog synchronously. The previous snapshot is kept on failure.
func (s *ProjectService) Load(ctx context.Context) error {
	return s.catalog.Load(ctx)
}

func (s *ProjectService) Projects() []objects.Project {
	return s.catalog.GetData()
}

func (s *ProjectService) LastUpdate() time.Time {
	return s.catalog.GetLastUpdate()
}

func (s *ProjectService) Stop() {
	s.catalog.Stop()
}

// Match returns the catalog projects tracking the repository of the request.
func (s *ProjectService) Match(ctx context.Context, repoURL string, provider objects.ProviderType) []objects.Project {
	projects, loadedAt := s.catalog.Snapshot()

	key := string(provider) + "|" + repoURL
	if memo, ok := s.matches.Get(key); ok && memo.loadedAt.Equal(loadedAt) {
		return memo.projects
	}

	matched := MatchProjects(ctx, repoURL, provider, projects)
	s.matches.Add(key, projectMatch{loadedAt: loadedAt, projects: matched})

	return matched
}

// MatchProjects filters projects to those registering a repository whose URL
// ends with the path of repoURL. Only the repository list of the provider is
// considered, the generic list is used for an unknown provider.
func MatchProjects(ctx context.Context, repoURL string, provider objects.ProviderType, projects []objects.Project) []objects.Project {
	parsed, err := url.Parse(repoURL)
	if err != nil {
		log.Warn(ctx, "can not parse repo url", log.String("repo_url", repoURL), log.Cause(err))
		return []objects.Project{}
	}

	path := parsed.Path
	if path == "" {
		log.Warn(ctx, "can not match empty repo path to projects", log.String("repo_url", repoURL))
		return []objects.Project{}
	}

	if len(projects) == 0 {
		log.Warn(ctx, "could not find any projects to match against")
		return []objects.Project{}
	}

	if log.DebugEnabled(ctx) {
		log.Debug(ctx, "checking projects for repos", log.String("suffix", path), log.String("provider", string(provider)))
	}

	return lo.Filter(projects, func(p objects.Project, _ int) bool {
		return lo.ContainsBy(p.ReposFor(provider), func(repo objects.Repo) bool {
			return repo.URL != "" && strings.HasSuffix(repo.URL, path)
		})
	})
}
