package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/samvad-newsdesk/internal/app"
	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk start failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("newsdesk", pflag.ContinueOnError)
	once := fs.Bool("once", false, "run a single pass and exit")
	fs.String("api-key", "", "NewsAPI key (overrides NEWSAPI_KEY)")
	fs.String("base-url", "", "NewsAPI base URL")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("watches", "", "watches file (YAML or JSON)")
	fs.String("sinks", "", "sinks file (YAML or JSON)")
	fs.String("storage", "", "storage backend: bbolt, memory, redis, none")
	fs.Int("retries", 0, "retry budget for transient NewsAPI failures")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("newsdesk starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := app.NewDesk(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize desk", "error", err.Error())
		return err
	}

	if *once {
		return d.RunOnce(ctx)
	}
	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("desk run: %w", err)
	}
	return nil
}
