package upstream

import (
	"time"
)

type AccountsConfig struct {
	BaseURL string        `conf:"base_url" yaml:"base_url" json:"base_url"`
	Timeout time.Duration `conf:"timeout" yaml:"timeout" json:"timeout"`
	OAuth   OAuthConfig   `conf:"oauth" yaml:"oauth" json:"oauth"`

	// CacheTTL bounds how long a resolved account is reused. Zero keeps the cache backend default.
	CacheTTL time.Duration `conf:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
}

// OAuthConfig configures the client credentials grant. An empty ClientID disables it.
type OAuthConfig struct {
	TokenURL     string   `conf:"token_url" yaml:"token_url" json:"token_url"`
	ClientID     string   `conf:"client_id" yaml:"client_id" json:"client_id"`
	ClientSecret string   `conf:"client_secret" yaml:"client_secret" json:"-"`
	Scopes       []string `conf:"scopes" yaml:"scopes" json:"scopes"`
}

func (c OAuthConfig) Enabled() bool {
	return c.ClientID != ""
}

type BotsConfig struct {
	BaseURL  string        `conf:"base_url" yaml:"base_url" json:"base_url"`
	Timeout  time.Duration `conf:"timeout" yaml:"timeout" json:"timeout"`
	CacheTTL time.Duration `conf:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
}

type ProjectsConfig struct {
	BaseURL         string        `conf:"base_url" yaml:"base_url" json:"base_url"`
	Timeout         time.Duration `conf:"timeout" yaml:"timeout" json:"timeout"`
	PageSize        int           `conf:"page_size" yaml:"page_size" json:"page_size"`
	MaxPages        int           `conf:"max_pages" yaml:"max_pages" json:"max_pages"`
	RefreshInterval time.Duration `conf:"refresh_interval" yaml:"refresh_interval" json:"refresh_interval"`
}
