package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/samvad-newsdesk/internal/app"
	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/storage"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

const usage = `usage: newsctl [flags] <command> [args]

commands:
  headlines                 US top headlines
  top <category>            US top headlines for a category (--page)
  search <terms...>         search all articles
  sources                   English-language sources (--filter, --sort category)
  source <source-id>        top headlines from one source

flags:
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "newsctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("newsctl", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	page := fs.String("page", "1", "page number for the top command")
	filter := fs.String("filter", "", "case-insensitive source name filter")
	order := fs.String("sort", app.SortDefault, "source order: default or category")
	fs.String("api-key", "", "NewsAPI key (overrides NEWSAPI_KEY)")
	fs.String("base-url", "", "NewsAPI base URL")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Int("timeout", 0, "request deadline in seconds")
	fs.Int("retries", 0, "retry budget for transient failures")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lookup, err := parseLookup(fs.Args())
	if err != nil {
		fs.Usage()
		return err
	}
	lookup.Page = *page
	lookup.Filter = *filter
	lookup.Sort = *order

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// stdout carries the JSON result.
	cfg.LogOutput = "stderr"

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, release := openCache(cfg, log)
	defer release()

	exec := newsapi.NewSerialExecutor()
	defer exec.Close()

	client, err := app.NewNewsClient(cfg, log, cache, exec)
	if err != nil {
		return err
	}
	return app.RunLookup(ctx, client, lookup, os.Stdout)
}

func parseLookup(args []string) (app.Lookup, error) {
	if len(args) == 0 {
		return app.Lookup{}, fmt.Errorf("missing command")
	}
	l := app.Lookup{Command: strings.ToLower(args[0])}
	rest := args[1:]

	switch l.Command {
	case app.CommandHeadlines, app.CommandSources:
		if len(rest) != 0 {
			return l, fmt.Errorf("%s takes no arguments", l.Command)
		}
	case app.CommandTop:
		if len(rest) != 1 {
			return l, fmt.Errorf("top takes exactly one category")
		}
		l.Category = rest[0]
	case app.CommandSource:
		if len(rest) != 1 {
			return l, fmt.Errorf("source takes exactly one source id")
		}
		l.SourceID = rest[0]
	case app.CommandSearch:
		if len(rest) == 0 {
			return l, fmt.Errorf("search needs at least one term")
		}
		l.Query = url.QueryEscape(strings.Join(rest, " "))
	default:
		return l, fmt.Errorf("unknown command %q", args[0])
	}
	return l, nil
}

// openCache returns the response cache for a lookup, or nil when caching is off or
// the store is unavailable. A running newsdesk holds the bbolt file lock, so a
// failed open only costs the cache.
func openCache(cfg *config.Config, log logger.Logger) (newsapi.ResponseCache, func()) {
	if cfg.ResponseTTL <= 0 {
		return nil, func() {}
	}
	store, err := app.OpenStore(cfg, log)
	if err != nil {
		log.WarnObj("response cache unavailable, continuing without it", "error", err.Error())
		return nil, func() {}
	}
	return store, func() { closeStore(store) }
}

func closeStore(store storage.Store) {
	if err := store.Close(); err != nil {
		logger.ErrorObj("storage close failed", "error", err.Error())
	}
}
