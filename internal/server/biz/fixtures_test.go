package biz

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/pkg/httpclient"
	"github.com/looplj/ecagate/internal/pkg/xcache"
	"github.com/looplj/ecagate/internal/pkg/xregexp"
)

var (
	wizard = objects.EclipseUser{
		UID:  1,
		Name: "da_wizard",
		Mail: "code.wiz@important.co",
		ECA:  objects.ECA{Signed: true, CanContributeSpecProject: true},
	}
	grunt = objects.EclipseUser{
		UID:  2,
		Name: "grunter",
		Mail: "grunt@important.co",
		ECA:  objects.ECA{Signed: true},
	}
	newbie = objects.EclipseUser{
		UID:  3,
		Name: "newbieAnon",
		Mail: "newbie@important.co",
	}
	barshall = objects.EclipseUser{
		UID:  4,
		Name: "barshallb",
		Mail: "slom@eclipse-foundation.org",
		ECA:  objects.ECA{Signed: true},
	}
)

func testProjects() []objects.Project {
	committers := []objects.Committer{{Username: "da_wizard"}, {Username: "grunter"}}

	return []objects.Project{
		{
			ProjectID:   "sample.proj",
			Name:        "Sample project",
			Committers:  committers,
			GithubRepos: []objects.Repo{{URL: "http://www.github.com/eclipsefdn/sample"}},
		},
		{
			ProjectID:   "sample.proto",
			Name:        "Prototype thing",
			Committers:  committers,
			GithubRepos: []objects.Repo{{URL: "http://www.github.com/eclipsefdn/prototype.git"}},
			GitlabRepos: []objects.Repo{{URL: "https://gitlab.eclipse.org/eclipse/dash/dash.handbook.test"}},
			GerritRepos: []objects.Repo{{URL: "/gitroot/sample/gerrit.other-project"}},
		},
		{
			ProjectID:               "spec.proj",
			Name:                    "Spec project",
			SpecProjectWorkingGroup: "proto-wg",
			Committers:              committers,
			GithubRepos:             []objects.Repo{{URL: "http://www.github.com/eclipsefdn/tck-proto"}},
			GitlabRepos:             []objects.Repo{{URL: "https://gitlab.eclipse.org/eclipse/dash/dash.git"}},
		},
	}
}

func testBots() []objects.Bot {
	return []objects.Bot{
		{ID: 1, ProjectID: "sample.proj", Username: "projbot", Email: "1.bot@eclipse.org"},
		{
			ID:        2,
			ProjectID: "sample.proto",
			Username:  "protobot",
			Email:     "2.bot@eclipse.org",
			Aliases: []objects.BotAlias{
				{Site: "github.com", Username: "protobot-gh", Email: "2.bot-github@eclipse.org"},
			},
		},
		{
			ID:        11,
			ProjectID: "spec.proj",
			Username:  "specbot",
			Email:     "3.bot@eclipse.org",
			Aliases: []objects.BotAlias{
				{Site: "gitlab.eclipse.org", Username: "specbot", Email: "3.bot-gitlab@eclipse.org"},
			},
		},
	}
}

type fakeDirectory struct {
	mu          sync.Mutex
	byMail      map[string][]objects.EclipseUser
	byHandle    map[string]objects.EclipseUser
	err         error
	delay       time.Duration
	mailCalls   map[string]int
	handleCalls map[string]int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byMail: map[string][]objects.EclipseUser{
			wizard.Mail:   {wizard},
			grunt.Mail:    {grunt},
			newbie.Mail:   {newbie},
			barshall.Mail: {barshall},
		},
		byHandle: map[string]objects.EclipseUser{
			"grunter": grunt,
		},
		mailCalls:   map[string]int{},
		handleCalls: map[string]int{},
	}
}

func notFound(url string) error {
	return &httpclient.Error{Method: http.MethodGet, URL: url, StatusCode: http.StatusNotFound, Status: "404 Not Found"}
}

func (d *fakeDirectory) LookupByMail(_ context.Context, mail string) ([]objects.EclipseUser, error) {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.mailCalls[mail]++

	if d.err != nil {
		return nil, d.err
	}

	users, ok := d.byMail[mail]
	if !ok {
		return nil, notFound("/account/profile")
	}

	return users, nil
}

func (d *fakeDirectory) LookupByGithubHandle(_ context.Context, handle string) (*objects.EclipseUser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handleCalls[handle]++

	if d.err != nil {
		return nil, d.err
	}

	user, ok := d.byHandle[handle]
	if !ok {
		return nil, notFound("/github/profile/" + handle)
	}

	return &user, nil
}

func (d *fakeDirectory) mailCallCount(mail string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.mailCalls[mail]
}

func (d *fakeDirectory) handleCallCount(handle string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.handleCalls[handle]
}

type fakeRegistry struct {
	mu    sync.Mutex
	bots  []objects.Bot
	err   error
	calls int
}

func (r *fakeRegistry) ListBots(context.Context) ([]objects.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return nil, r.err
	}

	return r.bots, nil
}

func (r *fakeRegistry) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls
}

type fakeCatalog struct {
	mu       sync.Mutex
	projects []objects.Project
	err      error
	calls    int
}

func (c *fakeCatalog) ListProjects(context.Context) ([]objects.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}

	return c.projects, nil
}

var errUpstream = errors.New("upstream unavailable")

func newMemoryCache[T any]() xcache.Cache[T] {
	return xcache.NewMemoryWithOptions[T](time.Minute, time.Minute)
}

type testEnv struct {
	directory  *fakeDirectory
	registry   *fakeRegistry
	catalog    *fakeCatalog
	projects   *ProjectService
	identities *IdentityService
	bots       *BotService
	validation *ValidationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return newTestEnvWithCaches(t, newMemoryCache[*objects.EclipseUser](), newMemoryCache[[]objects.Bot]())
}

func newTestEnvWithCaches(t *testing.T, users xcache.Cache[*objects.EclipseUser], bots xcache.Cache[[]objects.Bot]) *testEnv {
	t.Helper()

	env := &testEnv{
		directory: newFakeDirectory(),
		registry:  &fakeRegistry{bots: testBots()},
		catalog:   &fakeCatalog{projects: testProjects()},
	}

	env.projects = newProjectService(env.catalog, 0)
	require.NoError(t, env.projects.Load(context.Background()))
	t.Cleanup(env.projects.Stop)

	env.identities = newIdentityService(env.directory, xregexp.MustCompile(`@users\.noreply\.github\.com$`), users)
	env.bots = newBotService(env.registry, []string{"noreply@github.com"}, bots)
	env.validation = NewValidationService(ValidationServiceParams{
		Projects:   env.projects,
		Identities: env.identities,
		Bots:       env.bots,
	})

	return env
}

func gitUser(name, mail string) *objects.GitUser {
	return &objects.GitUser{Name: name, Mail: mail}
}

func singleCommit(hash string, author, committer *objects.GitUser) objects.Commit {
	return objects.Commit{
		Hash:      hash,
		Subject:   "Testing",
		Body:      "Signed-off-by: " + author.String(),
		Parents:   []string{"46bb69bf6aa4ed26b2bf8c322ae05bef0bcc5c10"},
		Author:    author,
		Committer: committer,
	}
}
