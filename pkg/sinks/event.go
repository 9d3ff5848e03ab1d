package sinks

import (
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

// Event is the payload published downstream for each fresh article.
type Event struct {
	ID          string          `json:"id"`
	WatchID     string          `json:"watch_id"`
	WatchName   string          `json:"watch_name"`
	Article     newsapi.Article `json:"article"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent stamps an article found by a watch with a fresh id and collection time.
func NewEvent(watchID, watchName string, article newsapi.Article) Event {
	return Event{
		ID:          uuid.NewString(),
		WatchID:     watchID,
		WatchName:   watchName,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}
