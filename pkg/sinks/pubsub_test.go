package sinks

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubSinkPublishes(t *testing.T) {
	// In-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "articles"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	sink, err := newPubSubSink(ctx, SinkConfig{
		ID:     "gcp",
		Type:   TypePubSub,
		PubSub: &PubSubConfig{ProjectID: "test-project", Topic: "articles"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubSink: %v", err)
	}
	defer sink.(*pubsubSink).Close()

	evt := NewEvent("tech", "Technology", articleFixture())
	if err := sink.Publish(ctx, evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["watch_id"] != "tech" {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
	var got Event
	if err := json.Unmarshal(msgs[0].Data, &got); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.ID != evt.ID || got.Article.Title != "Rover finds water" {
		t.Fatalf("unexpected payload %#v", got)
	}
}

func TestLogSinkAlwaysAccepts(t *testing.T) {
	sink, err := newLogSink(context.Background(), SinkConfig{ID: "stdout", Type: TypeLog}, nil)
	if err != nil {
		t.Fatalf("newLogSink: %v", err)
	}
	if err := sink.Publish(context.Background(), NewEvent("w", "W", articleFixture())); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
