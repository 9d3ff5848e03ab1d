// Package watches loads the desk's watch registry: named NewsAPI queries polled on
// every pass, declared in YAML or JSON.
package watches

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

// Watch kinds, one per article-returning NewsAPI entry point.
const (
	KindHeadlines = "headlines"
	KindCategory  = "category"
	KindSearch    = "search"
	KindSource    = "source"
)

// Watch is one polled query. Query holds the raw search text; it is escaped when the
// endpoint is built.
type Watch struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Category string `json:"category" yaml:"category"`
	Page     string `json:"page" yaml:"page"`
	Query    string `json:"query" yaml:"query"`
	SourceID string `json:"source_id" yaml:"source_id"`
	Enabled  *bool  `json:"enabled" yaml:"enabled"`
}

// IsEnabled reports whether the watch takes part in desk passes. Watches are enabled
// unless they say otherwise.
func (w Watch) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// Endpoint maps the watch onto the NewsAPI endpoint it polls.
func (w Watch) Endpoint() (newsapi.Endpoint, error) {
	switch w.Kind {
	case KindHeadlines:
		return newsapi.TopHeadlines{}, nil
	case KindCategory:
		return newsapi.TopHeadlinesByCategory{Category: w.Category, Page: w.Page}, nil
	case KindSearch:
		return newsapi.Search{Query: url.QueryEscape(w.Query)}, nil
	case KindSource:
		return newsapi.TopHeadlinesFromSource{SourceID: w.SourceID}, nil
	default:
		return nil, fmt.Errorf("unknown watch kind %q", w.Kind)
	}
}

type registry struct {
	Watches []Watch `json:"watches" yaml:"watches"`
}

var (
	regMu      sync.RWMutex
	currentReg registry
	watchesIdx map[string]Watch
)

// Watches returns a copy of the currently loaded registry.
func Watches() []Watch {
	regMu.RLock()
	defer regMu.RUnlock()

	if len(currentReg.Watches) == 0 {
		return nil
	}

	out := make([]Watch, len(currentReg.Watches))
	copy(out, currentReg.Watches)
	return out
}

// Enabled returns the loaded watches that take part in desk passes.
func Enabled() []Watch {
	all := Watches()
	out := make([]Watch, 0, len(all))
	for _, w := range all {
		if w.IsEnabled() {
			out = append(out, w)
		}
	}
	return out
}

// WatchByID returns the watch entry for the given id, if loaded.
func WatchByID(id string) (Watch, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Watch{}, false
	}

	regMu.RLock()
	defer regMu.RUnlock()

	w, ok := watchesIdx[id]
	return w, ok
}

// LoadWatches loads the watch registry from file, replacing any previous one.
func LoadWatches(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("watches file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open watches file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read watches file: %w", err)
	}

	list, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return err
	}

	idx := make(map[string]Watch, len(list))
	for _, w := range list {
		idx[w.ID] = w
	}

	regMu.Lock()
	currentReg = registry{Watches: list}
	watchesIdx = idx
	regMu.Unlock()

	return nil
}

// Parse decodes, sanitizes and validates a registry document. ext selects the format
// (".yaml", ".yml" or ".json"); an empty ext tries each in turn.
func Parse(data []byte, ext string) ([]Watch, error) {
	reg, err := parseRegistry(data, ext)
	if err != nil {
		return nil, err
	}
	if len(reg.Watches) == 0 {
		return nil, errors.New("watches file contains no watches entries")
	}

	seen := make(map[string]struct{}, len(reg.Watches))
	for i := range reg.Watches {
		w := sanitizeWatch(reg.Watches[i])
		if err := validateWatch(w); err != nil {
			return nil, fmt.Errorf("watch[%d]: %w", i, err)
		}
		if _, exists := seen[w.ID]; exists {
			return nil, fmt.Errorf("duplicate watch id %q", w.ID)
		}
		seen[w.ID] = struct{}{}
		reg.Watches[i] = w
	}
	return reg.Watches, nil
}

func parseRegistry(data []byte, ext string) (registry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registry
		if err := d.fn(data, &reg); err != nil {
			errs = append(errs, fmt.Errorf("decode %s watches: %w", d.name, err))
			continue
		}
		return reg, nil
	}

	return registry{}, errors.Join(append([]error{errors.New("watches file format not recognized (expected YAML or JSON)")}, errs...)...)
}

type unmarshalFn func([]byte, any) error

func sanitizeWatch(w Watch) Watch {
	w.ID = strings.TrimSpace(w.ID)
	w.Name = strings.TrimSpace(w.Name)
	w.Kind = strings.ToLower(strings.TrimSpace(w.Kind))
	w.Category = strings.ToLower(strings.TrimSpace(w.Category))
	w.Page = strings.TrimSpace(w.Page)
	w.Query = strings.TrimSpace(w.Query)
	w.SourceID = strings.TrimSpace(w.SourceID)
	if w.Name == "" {
		w.Name = w.ID
	}
	return w
}

func validateWatch(w Watch) error {
	if w.ID == "" {
		return errors.New("id is required")
	}
	switch w.Kind {
	case KindHeadlines:
	case KindCategory:
		if w.Category == "" {
			return fmt.Errorf("category is required for watch %q", w.ID)
		}
	case KindSearch:
		if w.Query == "" {
			return fmt.Errorf("query is required for watch %q", w.ID)
		}
	case KindSource:
		if w.SourceID == "" {
			return fmt.Errorf("source_id is required for watch %q", w.ID)
		}
	case "":
		return fmt.Errorf("kind is required for watch %q", w.ID)
	default:
		return fmt.Errorf("unknown kind %q for watch %q", w.Kind, w.ID)
	}

	ep, err := w.Endpoint()
	if err != nil {
		return err
	}
	if err := newsapi.ValidateEndpoint(ep); err != nil {
		return fmt.Errorf("watch %q: %w", w.ID, err)
	}
	return nil
}
