package biz

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/ecagate/internal/objects"
)

func TestMatchProjects(t *testing.T) {
	ctx := context.Background()
	projects := testProjects()

	tests := []struct {
		name     string
		repoURL  string
		provider objects.ProviderType
		want     []string
	}{
		{
			name:     "github exact",
			repoURL:  "http://www.github.com/eclipsefdn/sample",
			provider: objects.ProviderGithub,
			want:     []string{"sample.proj"},
		},
		{
			name:     "host is ignored",
			repoURL:  "https://github.com/eclipsefdn/sample",
			provider: objects.ProviderGithub,
			want:     []string{"sample.proj"},
		},
		{
			name:     "suffix of registered url",
			repoURL:  "https://mirror.example.org/eclipsefdn/prototype.git",
			provider: objects.ProviderGithub,
			want:     []string{"sample.proto"},
		},
		{
			name:     "provider selects repo list",
			repoURL:  "https://gitlab.eclipse.org/eclipse/dash/dash.handbook.test",
			provider: objects.ProviderGithub,
			want:     []string{},
		},
		{
			name:     "gitlab",
			repoURL:  "https://gitlab.eclipse.org/eclipse/dash/dash.git",
			provider: objects.ProviderGitlab,
			want:     []string{"spec.proj"},
		},
		{
			name:     "gerrit path only",
			repoURL:  "/gitroot/sample/gerrit.other-project",
			provider: objects.ProviderGerrit,
			want:     []string{"sample.proto"},
		},
		{
			name:     "untracked",
			repoURL:  "http://www.github.com/eclipsefdn/sample-not-tracked",
			provider: objects.ProviderGithub,
			want:     []string{},
		},
		{
			name:     "empty path",
			repoURL:  "https://github.com",
			provider: objects.ProviderGithub,
			want:     []string{},
		},
		{
			name:     "unparseable url",
			repoURL:  "http://[::1",
			provider: objects.ProviderGithub,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := MatchProjects(ctx, tt.repoURL, tt.provider, projects)
			ids := lo.Map(matched, func(p objects.Project, _ int) string { return p.ProjectID })
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMatchProjects_GenericRepos(t *testing.T) {
	projects := []objects.Project{
		{ProjectID: "generic", Repos: []objects.Repo{{URL: "https://git.example.org/r/generic"}, {URL: ""}}},
	}

	matched := MatchProjects(context.Background(), "ssh://host/r/generic", objects.ProviderType("other"), projects)
	require.Len(t, matched, 1)
	assert.Equal(t, "generic", matched[0].ProjectID)
}

func TestMatchProjects_EmptyCatalog(t *testing.T) {
	matched := MatchProjects(context.Background(), "http://www.github.com/eclipsefdn/sample", objects.ProviderGithub, nil)
	assert.NotNil(t, matched)
	assert.Empty(t, matched)
}

func TestProjectService_MatchMemoIsResetOnReload(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{projects: testProjects()[:1]}

	svc := newProjectService(catalog, 0)
	t.Cleanup(svc.Stop)

	assert.Empty(t, svc.Match(ctx, "/gitroot/sample/gerrit.other-project", objects.ProviderGerrit))

	require.NoError(t, svc.Load(ctx))
	assert.Empty(t, svc.Match(ctx, "/gitroot/sample/gerrit.other-project", objects.ProviderGerrit))

	catalog.mu.Lock()
	catalog.projects = testProjects()
	catalog.mu.Unlock()

	require.NoError(t, svc.Load(ctx))
	matched := svc.Match(ctx, "/gitroot/sample/gerrit.other-project", objects.ProviderGerrit)
	require.Len(t, matched, 1)
	assert.Equal(t, "sample.proto", matched[0].ProjectID)
	assert.False(t, svc.LastUpdate().IsZero())
}

func TestProjectService_MatchIgnoresMemoOfOlderSnapshot(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{projects: testProjects()}

	svc := newProjectService(catalog, 0)
	t.Cleanup(svc.Stop)

	require.NoError(t, svc.Load(ctx))

	// An entry computed from an earlier snapshot that was stored after the swap purged the memo.
	key := string(objects.ProviderGerrit) + "|/gitroot/sample/gerrit.other-project"
	svc.matches.Add(key, projectMatch{loadedAt: svc.LastUpdate().Add(-time.Minute), projects: []objects.Project{}})

	matched := svc.Match(ctx, "/gitroot/sample/gerrit.other-project", objects.ProviderGerrit)
	require.Len(t, matched, 1)
	assert.Equal(t, "sample.proto", matched[0].ProjectID)

	memo, ok := svc.matches.Get(key)
	require.True(t, ok)
	assert.True(t, memo.loadedAt.Equal(svc.LastUpdate()))
}

func TestProjectService_LoadFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{projects: testProjects()}

	svc := newProjectService(catalog, 0)
	t.Cleanup(svc.Stop)

	require.NoError(t, svc.Load(ctx))

	catalog.mu.Lock()
	catalog.err = errUpstream
	catalog.mu.Unlock()

	require.ErrorIs(t, svc.Load(ctx), errUpstream)
	assert.Len(t, svc.Projects(), 3)
}
