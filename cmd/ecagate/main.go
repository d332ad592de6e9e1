package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andreazorzetto/yh/highlight"
	"github.com/hashicorp/go-multierror"
	"github.com/hokaccha/go-prettyjson"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gopkg.in/yaml.v3"

	sdk "go.opentelemetry.io/otel/sdk/metric"

	"github.com/looplj/ecagate/conf"
	"github.com/looplj/ecagate/internal/build"
	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/metrics"
	"github.com/looplj/ecagate/internal/server"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			handleConfigCommand()
			return
		case "version", "--version", "-v":
			showVersion()
			return
		case "help", "--help", "-h":
			showHelp()
			return
		case "build-info":
			showBuildInfo()
			return
		}
	}

	startServer()
}

func showBuildInfo() {
	fmt.Println(build.GetBuildInfo())
}

type logger struct{}

func (l *logger) LogEvent(event fxevent.Event) {
	log.Debug(context.Background(), "fx event", log.Any("event", event))
}

func loadConfig() (conf.Config, error) {
	config, err := conf.Load()
	if err != nil {
		return conf.Config{}, err
	}

	if err := config.Validate(); err != nil {
		return conf.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func startServer() {
	server.Run(
		fx.WithLogger(func() fxevent.Logger {
			return &logger{}
		}),
		fx.Provide(loadConfig),
		fx.Provide(metrics.NewProvider),
		fx.Invoke(func(lc fx.Lifecycle, server *server.Server, provider *sdk.MeterProvider) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if provider != nil {
						return metrics.SetupMetrics(provider, server.Config.Name)
					}

					return nil
				},
				OnStop: func(ctx context.Context) error {
					if provider != nil {
						return provider.Shutdown(ctx)
					}

					return nil
				},
			})
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						err := server.Run()
						if err != nil {
							log.Error(context.Background(), "server run error:", log.Cause(err))
							os.Exit(1)
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					err := server.Shutdown(ctx)
					if err != nil {
						log.Error(context.Background(), "server shutdown error:", log.Cause(err))
					}

					_ = log.GetGlobalLogger().Sync()

					return nil
				},
			})
		}),
	)
}

func handleConfigCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ecagate config <preview|validate|get>")
		os.Exit(1)
	}

	switch os.Args[2] {
	case "preview":
		configPreview()
	case "validate":
		configValidate()
	case "get":
		configGet()
	default:
		fmt.Println("Usage: ecagate config <preview|validate|get>")
		os.Exit(1)
	}
}

func configPreview() {
	format := "yml"

	for i := 3; i < len(os.Args); i++ {
		if os.Args[i] == "--format" || os.Args[i] == "-f" {
			if i+1 < len(os.Args) {
				format = os.Args[i+1]
			}
		}
	}

	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var output string

	switch format {
	case "json":
		b, err := prettyjson.Marshal(config)
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}

		output = string(b)
	case "yml", "yaml":
		b, err := yaml.Marshal(config)
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}

		output, err = highlight.Highlight(bytes.NewBuffer(b))
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unsupported format: %s\n", format)
		os.Exit(1)
	}

	fmt.Println(output)
}

func configValidate() {
	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = config.Validate()
	if err == nil {
		fmt.Println("Configuration is valid!")
		return
	}

	fmt.Println("Configuration validation failed:")

	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			fmt.Printf("  - %s\n", e)
		}
	} else {
		fmt.Printf("  - %s\n", err)
	}

	os.Exit(1)
}

func configGet() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: ecagate config get <key>")
		fmt.Println("")
		fmt.Println("Available keys:")
		fmt.Println("  server.port                 Server port number")
		fmt.Println("  server.name                 Server name")
		fmt.Println("  server.base_path            Route prefix")
		fmt.Println("  server.debug                Debug mode")
		fmt.Println("  cache.mode                  Cache backend (none, memory, redis, two-level)")
		fmt.Println("  accounts.base_url           Account directory API")
		fmt.Println("  accounts.cache_ttl          Account lookup cache TTL")
		fmt.Println("  bots.base_url               Bots registry API")
		fmt.Println("  bots.cache_ttl              Bots list cache TTL")
		fmt.Println("  projects.base_url           Project catalog API")
		fmt.Println("  projects.refresh_interval   Catalog refresh interval")
		fmt.Println("  validation.allow_list       Addresses accepted without an account")
		os.Exit(1)
	}

	key := os.Args[3]

	config, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var value any

	switch key {
	case "server.port":
		value = config.APIServer.Port
	case "server.name":
		value = config.APIServer.Name
	case "server.base_path":
		value = config.APIServer.BasePath
	case "server.debug":
		value = config.APIServer.Debug
	case "cache.mode":
		value = config.Cache.Mode
	case "accounts.base_url":
		value = config.Accounts.BaseURL
	case "accounts.cache_ttl":
		value = config.Accounts.CacheTTL
	case "bots.base_url":
		value = config.Bots.BaseURL
	case "bots.cache_ttl":
		value = config.Bots.CacheTTL
	case "projects.base_url":
		value = config.Projects.BaseURL
	case "projects.refresh_interval":
		value = config.Projects.RefreshInterval
	case "validation.allow_list":
		value = config.Validation.AllowList
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}

	fmt.Println(value)
}

func showHelp() {
	fmt.Println("ECA Gate")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  ecagate                    Start the server (default)")
	fmt.Println("  ecagate config preview     Preview configuration")
	fmt.Println("  ecagate config validate    Validate configuration")
	fmt.Println("  ecagate config get <key>   Get a specific config value")
	fmt.Println("  ecagate version            Show version")
	fmt.Println("  ecagate build-info         Show build information")
	fmt.Println("  ecagate help               Show this help message")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -f, --format FORMAT       Output format for config preview (yml, json)")
}

func showVersion() {
	fmt.Println(build.Version)
}
