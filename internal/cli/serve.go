// Package cli wires the gateway's commands together.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	appconfig "github.com/lewisedginton/chat-gateway/internal/config"
	"github.com/lewisedginton/chat-gateway/internal/provider"
	"github.com/lewisedginton/chat-gateway/internal/secrets"
	"github.com/lewisedginton/chat-gateway/internal/server"
	"github.com/lewisedginton/chat-gateway/pkg/config"
	"github.com/lewisedginton/chat-gateway/pkg/logger"
	"github.com/lewisedginton/chat-gateway/pkg/metrics"
	"github.com/lewisedginton/chat-gateway/pkg/utils"
)

// ServeCommand returns the command that runs the gateway server.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the chat gateway server",
		Action:  serveAction,
	}
}

func serveAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.String("config-file"))
	if err != nil {
		return err
	}

	log := logger.NewLogger(logger.Config{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.Logging.Format,
		Service: cfg.ServiceName,
	})
	cfg.LogConfig(log)

	p, err := buildProvider(ctx.Context, cfg, log)
	if err != nil {
		log.Error("Failed to set up provider", logger.ErrorField(err))
		return fmt.Errorf("failed to set up provider: %w", err)
	}

	m := metrics.NewMetrics(cfg.Metrics.Enabled, cfg.Metrics.Enabled, log)

	s := server.New(cfg, log, p, m)
	errChan, closer, gracefulCloser, err := s.Listen()
	if err != nil {
		log.Error("Failed to start server", logger.ErrorField(err))
		return fmt.Errorf("failed to start server: %w", err)
	}

	errChans := []chan error{errChan}
	var metricsShutdown func()
	if cfg.Metrics.Enabled && cfg.Metrics.Expose {
		metricsErrChan, shutdown := m.Listen(cfg.Metrics.Port)
		errChans = append(errChans, metricsErrChan)
		metricsShutdown = shutdown
	}

	log.Info("Chat gateway started",
		logger.IntField("port", cfg.Port),
		logger.StringField("provider", p.Kind()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	mergedErrChan := utils.MergeErrorChans(errChans...)

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.StringField("signal", sig.String()))
		if metricsShutdown != nil {
			metricsShutdown()
		}
		gracefulCloser()
		log.Info("Server exited gracefully")
	case err := <-mergedErrChan:
		if err != nil {
			log.Error("Fatal server error occurred", logger.ErrorField(err))
			if metricsShutdown != nil {
				metricsShutdown()
			}
			closer()
			return fmt.Errorf("server error: %w", err)
		}
		log.Info("Server exited normally")
	}

	return nil
}

func loadConfig(configFile string) (*appconfig.AppConfig, error) {
	cfg := &appconfig.AppConfig{}
	if configFile != "" {
		if err := config.GetConfig(cfg, configFile, false); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if err := config.GetConfigFromEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildProvider selects, constructs and initializes the configured provider.
// Any failure here is fatal and happens before the server binds its port.
func buildProvider(ctx context.Context, cfg *appconfig.AppConfig, log logger.Logger) (provider.Provider, error) {
	kind, err := provider.ResolveKind(cfg.Provider.Kind)
	if err != nil {
		return nil, err
	}

	var accessor secrets.Accessor
	if kind == appconfig.KindAIStudio {
		accessor, err = secrets.NewManager(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating secret manager client: %w", err)
		}
	}

	p, err := provider.New(cfg.Provider, accessor, log)
	if err != nil {
		return nil, err
	}
	if err := p.Init(ctx); err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", p.Kind(), err)
	}
	return p, nil
}
