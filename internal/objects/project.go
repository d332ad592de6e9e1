package objects

import (
	"strings"
)

type Project struct {
	ProjectID               string      `json:"project_id"`
	Name                    string      `json:"name"`
	SpecProjectWorkingGroup string      `json:"spec_project_working_group,omitempty"`
	Committers              []Committer `json:"committers"`
	Repos                   []Repo      `json:"repos"`
	GithubRepos             []Repo      `json:"github_repos"`
	GitlabRepos             []Repo      `json:"gitlab_repos"`
	GerritRepos             []Repo      `json:"gerrit_repos"`
}

type Committer struct {
	Username string `json:"username"`
	URL      string `json:"url,omitempty"`
}

type Repo struct {
	URL string `json:"url"`
}

// IsSpecProject reports whether the project produces a specification for a working group.
func (p Project) IsSpecProject() bool {
	return strings.TrimSpace(p.SpecProjectWorkingGroup) != ""
}

// ReposFor returns the repository list registered for the provider, falling back to the generic list.
func (p Project) ReposFor(provider ProviderType) []Repo {
	switch provider {
	case ProviderGithub:
		return p.GithubRepos
	case ProviderGitlab:
		return p.GitlabRepos
	case ProviderGerrit:
		return p.GerritRepos
	default:
		return p.Repos
	}
}

// HasCommitter reports whether username is registered as a committer. Usernames are compared exactly.
func (p Project) HasCommitter(username string) bool {
	for _, c := range p.Committers {
		if c.Username == username {
			return true
		}
	}

	return false
}
