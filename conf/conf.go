package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/metrics"
	"github.com/looplj/ecagate/internal/pkg/xcache"
	"github.com/looplj/ecagate/internal/server"
	"github.com/looplj/ecagate/internal/server/biz"
	"github.com/looplj/ecagate/internal/upstream"
)

const envPrefix = "ECAGATE"

type Config struct {
	fx.Out `conf:"-" yaml:"-" json:"-"`

	APIServer  server.Config           `conf:"server" yaml:"server" json:"server"`
	Log        log.Config              `conf:"log" yaml:"log" json:"log"`
	Cache      xcache.Config           `conf:"cache" yaml:"cache" json:"cache"`
	Accounts   upstream.AccountsConfig `conf:"accounts" yaml:"accounts" json:"accounts"`
	Bots       upstream.BotsConfig     `conf:"bots" yaml:"bots" json:"bots"`
	Projects   upstream.ProjectsConfig `conf:"projects" yaml:"projects" json:"projects"`
	Validation biz.ValidationConfig    `conf:"validation" yaml:"validation" json:"validation"`
	Metrics    metrics.Config          `conf:"metrics" yaml:"metrics" json:"metrics"`
}

// Load reads config.yml from the working directory, ./conf or /etc/ecagate,
// then applies ECAGATE_ prefixed environment overrides.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("/etc/ecagate")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config

	err := v.Unmarshal(&cfg, viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}))
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.name", "ecagate")
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.trace.trace_header", "X-Trace-Id")
	v.SetDefault("server.trace.request_header", "X-Request-Id")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.cors.enabled", false)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("server.cors.allowed_headers", []string{"Content-Type", "Authorization", "X-Trace-Id"})
	v.SetDefault("server.cors.exposed_headers", []string{"X-Trace-Id", "X-Request-Id"})
	v.SetDefault("server.cors.allow_credentials", false)
	v.SetDefault("server.cors.max_age", 12*time.Hour)

	v.SetDefault("log.name", "ecagate")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("cache.mode", xcache.ModeMemory)
	v.SetDefault("cache.memory.expiration", 5*time.Minute)
	v.SetDefault("cache.memory.cleanup_interval", 10*time.Minute)
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.url", "")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.expiration", 30*time.Minute)
	v.SetDefault("cache.redis.key_prefix", "ecagate:")

	v.SetDefault("accounts.base_url", "https://api.eclipse.org")
	v.SetDefault("accounts.timeout", 10*time.Second)
	v.SetDefault("accounts.cache_ttl", 5*time.Minute)
	v.SetDefault("accounts.oauth.token_url", "https://accounts.eclipse.org/oauth2/token")
	v.SetDefault("accounts.oauth.client_id", "")
	v.SetDefault("accounts.oauth.client_secret", "")
	v.SetDefault("accounts.oauth.scopes", []string{"eclipsefdn_view_all_profiles"})

	v.SetDefault("bots.base_url", "https://api.eclipse.org")
	v.SetDefault("bots.timeout", 10*time.Second)
	v.SetDefault("bots.cache_ttl", time.Hour)

	v.SetDefault("projects.base_url", "https://projects.eclipse.org/api")
	v.SetDefault("projects.timeout", 30*time.Second)
	v.SetDefault("projects.page_size", 100)
	v.SetDefault("projects.max_pages", 50)
	v.SetDefault("projects.refresh_interval", 10*time.Minute)

	v.SetDefault("validation.allow_list", []string{"noreply@github.com"})
	v.SetDefault("validation.noreply_email_patterns", []string{`@users\.noreply\.github\.com$`})

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.interval", time.Minute)
	v.SetDefault("metrics.exporter.type", metrics.ExporterStdout)
	v.SetDefault("metrics.exporter.endpoint", "")
	v.SetDefault("metrics.exporter.insecure", false)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.APIServer.Port <= 0 || c.APIServer.Port > 65535 {
		result = multierror.Append(result, errors.New("server.port must be between 1 and 65535"))
	}

	if c.Log.Name == "" {
		result = multierror.Append(result, errors.New("log.name cannot be empty"))
	}

	if c.APIServer.CORS.Enabled && len(c.APIServer.CORS.AllowedOrigins) == 0 {
		result = multierror.Append(result, errors.New("server.cors.allowed_origins cannot be empty when CORS is enabled"))
	}

	switch c.Cache.Mode {
	case xcache.ModeMemory, xcache.ModeNone:
	case xcache.ModeRedis, xcache.ModeTwoLevel:
		if !c.Cache.Redis.Enabled() {
			result = multierror.Append(result, fmt.Errorf("cache.redis.addr or cache.redis.url is required in %s mode", c.Cache.Mode))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("cache.mode %q is not supported", c.Cache.Mode))
	}

	for _, endpoint := range []struct {
		key string
		url string
	}{
		{"accounts.base_url", c.Accounts.BaseURL},
		{"bots.base_url", c.Bots.BaseURL},
		{"projects.base_url", c.Projects.BaseURL},
	} {
		if endpoint.url == "" {
			result = multierror.Append(result, fmt.Errorf("%s cannot be empty", endpoint.key))
		}
	}

	if c.Accounts.OAuth.Enabled() && c.Accounts.OAuth.TokenURL == "" {
		result = multierror.Append(result, errors.New("accounts.oauth.token_url is required when client_id is set"))
	}

	if _, err := c.Validation.CompileNoreplyPatterns(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Metrics.Enabled && (c.Metrics.Exporter.Type == metrics.ExporterOTLPHTTP || c.Metrics.Exporter.Type == metrics.ExporterOTLPGRPC) && c.Metrics.Exporter.Endpoint == "" {
		result = multierror.Append(result, fmt.Errorf("metrics.exporter.endpoint is required for %s", c.Metrics.Exporter.Type))
	}

	return result.ErrorOrNil()
}
