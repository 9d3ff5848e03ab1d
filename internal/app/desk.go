package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/desk"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/storage"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
	"github.com/samvad-hq/samvad-newsdesk/pkg/sinks"
	"github.com/samvad-hq/samvad-newsdesk/pkg/watches"
)

const enrichDelay = 250 * time.Millisecond

// Desk is the long-running newsdesk runtime. It owns the poll loop, the sinks
// and the storage backend.
type Desk struct {
	cfg          *config.Config
	fanout       *sinks.Fanout
	service      *desk.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewDesk builds a desk runtime from config files.
func NewDesk(ctx context.Context, cfg *config.Config, log logger.Logger) (*Desk, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := watches.LoadWatches(cfg.WatchesFile); err != nil {
		return nil, fmt.Errorf("load watches registry: %w", err)
	}
	watchIDs := make([]string, 0)
	for _, w := range watches.Enabled() {
		watchIDs = append(watchIDs, w.ID)
	}
	log.InfoObj("watches registry loaded", "watches_meta", map[string]any{
		"count": len(watchIDs),
		"ids":   watchIDs,
	})

	sinkReg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabledSinks := sinkReg.Enabled()
	if len(enabledSinks) == 0 {
		return nil, fmt.Errorf("no sinks configured")
	}
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabledSinks, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}
	fanout := sinks.NewFanout(built)
	sinkSummaries := make([]map[string]string, 0, len(enabledSinks))
	for _, c := range enabledSinks {
		sinkSummaries = append(sinkSummaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(sinkSummaries),
		"sinks": sinkSummaries,
	})

	store, err := OpenStore(cfg, log)
	if err != nil {
		_ = fanout.Close()
		return nil, err
	}

	client, err := NewNewsClient(cfg, log, store, nil)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, err
	}

	var enricher desk.ArticleEnricher
	if cfg.EnrichArticles {
		enricher = desk.NewEnricher(httpclient.NewRestyClient(httpclient.Config{Timeout: cfg.HTTPTimeout}), enrichDelay, log)
	}

	return &Desk{
		cfg:          cfg,
		fanout:       fanout,
		service:      desk.NewService(client, enricher, fanout, store, log, cfg.DeskConcurrency),
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (d *Desk) Run(ctx context.Context) error {
	if d == nil || d.service == nil {
		return fmt.Errorf("desk is not initialized")
	}
	defer d.close()

	ws := watches.Enabled()
	if len(ws) == 0 {
		d.log.WarnObj("no enabled watches; desk idle", "watches_file", d.cfg.WatchesFile)
		<-ctx.Done()
		return ctx.Err()
	}

	d.log.InfoObj("desk loop starting", "desk_state", map[string]any{
		"watches_count": len(ws),
		"sinks_count":   d.fanout.Size(),
		"poll_interval": d.pollInterval.String(),
	})

	if err := d.runOnce(ctx, ws); err != nil {
		d.log.ErrorObj("initial pass failed", "error", err.Error())
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.InfoObj("desk loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := d.runOnce(ctx, ws); err != nil {
				d.log.ErrorObj("scheduled pass failed", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single pass and releases resources.
func (d *Desk) RunOnce(ctx context.Context) error {
	if d == nil || d.service == nil {
		return fmt.Errorf("desk is not initialized")
	}
	defer d.close()
	return d.runOnce(ctx, watches.Enabled())
}

func (d *Desk) runOnce(ctx context.Context, ws []watches.Watch) error {
	start := time.Now()
	d.log.InfoObj("pass started", "pass_meta", map[string]any{
		"watches_count": len(ws),
		"started_at":    start.UTC(),
	})
	stats, err := d.service.Run(ctx, ws)
	d.log.InfoObj("pass completed", "pass_meta", map[string]any{
		"watches_count": stats.Watches,
		"fetched":       stats.Fetched,
		"fresh":         stats.Fresh,
		"published":     stats.Published,
		"failed":        stats.Failed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return err
}

// close releases sinks and the storage backend, logging any errors encountered.
func (d *Desk) close() {
	if err := d.fanout.Close(); err != nil {
		d.log.ErrorObj("sinks close failed", "error", err.Error())
	}
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		d.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
