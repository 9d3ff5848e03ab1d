package sinks

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubSink struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubSink) Close() error {
	s.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	bad := &stubSink{id: "bad", typ: "http", err: errors.New("failed")}
	after := &stubSink{id: "after", typ: "log"}
	fanout := NewFanout([]Sink{&stubSink{id: "ok", typ: "http"}, nil, bad, after})

	if fanout.Size() != 3 {
		t.Fatalf("nil sinks should be skipped, size=%d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 2 {
		t.Fatalf("expected 2 successes, got %d", count)
	}
	if err == nil || !strings.Contains(err.Error(), "http sink[bad]") {
		t.Fatalf("expected aggregated error naming the sink, got %v", err)
	}
	if after.calls != 1 {
		t.Fatalf("a failing sink must not stop later sinks")
	}
}

func TestFanoutCloseClosesSinks(t *testing.T) {
	s := &stubSink{id: "a", typ: "pubsub"}
	if err := NewFanout([]Sink{s}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.closed {
		t.Fatalf("expected sink to be closed")
	}
	var nilFanout *Fanout
	if n, err := nilFanout.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout should be a no-op")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	built, err := BuildAll(context.Background(), reg, []SinkConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
		{ID: "stdout", Type: TypeLog},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(built) != 2 || built[0].Type() != TypeHTTP || built[1].ID() != "stdout" {
		t.Fatalf("unexpected sinks %#v", built)
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []SinkConfig{{ID: "k", Type: "kafka"}}, nil)
	if err == nil || !strings.Contains(err.Error(), "kafka") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestNewEventStampsIDAndTime(t *testing.T) {
	a := NewEvent("w", "Watch", articleFixture())
	b := NewEvent("w", "Watch", articleFixture())
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique event ids, got %q and %q", a.ID, b.ID)
	}
	if a.CollectedAt.IsZero() || a.CollectedAt.Location().String() != "UTC" {
		t.Fatalf("expected UTC collection time, got %v", a.CollectedAt)
	}
}
