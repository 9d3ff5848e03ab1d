package sinks

import "context"

// logSink writes each event to the structured log. Useful for dry runs.
type logSink struct {
	id  string
	log Logger
}

func newLogSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	return &logSink{id: cfg.ID, log: ensureLogger(log)}, nil
}

func (l *logSink) ID() string   { return l.id }
func (l *logSink) Type() string { return TypeLog }

func (l *logSink) Publish(_ context.Context, evt Event) error {
	l.log.InfoObj("article event", "sink_log_event", map[string]any{
		"sink_id":    l.id,
		"event_id":   evt.ID,
		"watch_id":   evt.WatchID,
		"title":      evt.Article.Title,
		"url":        evt.Article.URL,
		"source":     evt.Article.Source.Name,
		"collected":  evt.CollectedAt,
		"watch_name": evt.WatchName,
	})
	return nil
}
