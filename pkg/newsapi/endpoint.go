package newsapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	pathTopHeadlines = "top-headlines"
	pathEverything   = "everything"
	pathSources      = "sources"

	defaultCountry  = "us"
	defaultLanguage = "en"
	defaultPage     = "1"
)

// Param is one query parameter. Values are sent verbatim.
type Param struct {
	Key   string
	Value string
}

// Endpoint describes one NewsAPI operation as data.
type Endpoint interface {
	// Name identifies the operation in logs, metrics and errors.
	Name() string
	Path() string
	Method() string
	// Params returns the query parameters in the order they are serialized.
	Params() []Param
}

// TopHeadlinesByCategory lists US top headlines for a category, one page at a time.
type TopHeadlinesByCategory struct {
	Category string `validate:"required"`
	Page     string `validate:"omitempty,number"`
}

func (TopHeadlinesByCategory) Name() string   { return "top_headlines_category" }
func (TopHeadlinesByCategory) Path() string   { return pathTopHeadlines }
func (TopHeadlinesByCategory) Method() string { return http.MethodGet }

func (e TopHeadlinesByCategory) Params() []Param {
	page := e.Page
	if page == "" {
		page = defaultPage
	}
	return []Param{
		{Key: "country", Value: defaultCountry},
		{Key: "category", Value: e.Category},
		{Key: "page", Value: page},
	}
}

// TopHeadlines lists US top headlines across all categories.
type TopHeadlines struct{}

func (TopHeadlines) Name() string    { return "top_headlines" }
func (TopHeadlines) Path() string    { return pathTopHeadlines }
func (TopHeadlines) Method() string  { return http.MethodGet }
func (TopHeadlines) Params() []Param { return []Param{{Key: "country", Value: defaultCountry}} }

// TopHeadlinesFromSource lists top headlines published by one source.
type TopHeadlinesFromSource struct {
	SourceID string `validate:"required"`
}

func (TopHeadlinesFromSource) Name() string   { return "top_headlines_source" }
func (TopHeadlinesFromSource) Path() string   { return pathTopHeadlines }
func (TopHeadlinesFromSource) Method() string { return http.MethodGet }

func (e TopHeadlinesFromSource) Params() []Param {
	return []Param{{Key: "sources", Value: e.SourceID}}
}

// Search queries every indexed article.
type Search struct {
	Query string `validate:"required"`
}

func (Search) Name() string      { return "search" }
func (Search) Path() string      { return pathEverything }
func (Search) Method() string    { return http.MethodGet }
func (e Search) Params() []Param { return []Param{{Key: "q", Value: e.Query}} }

// ListSources lists English-language news sources.
type ListSources struct{}

func (ListSources) Name() string    { return "sources" }
func (ListSources) Path() string    { return pathSources }
func (ListSources) Method() string  { return http.MethodGet }
func (ListSources) Params() []Param { return []Param{{Key: "language", Value: defaultLanguage}} }

// Query serializes the endpoint's params as key=value pairs joined with "&".
func Query(ep Endpoint) string {
	params := ep.Params()
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, "&")
}

// Headers returns the headers every request carries.
func Headers(apiKey, host string) map[string]string {
	return map[string]string{
		"Accept":        "application/json",
		"Content-Type":  "application/json",
		"Authorization": "X-Api-Key " + apiKey,
		"Host":          host,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// ValidateEndpoint checks the endpoint's fields against their validation tags.
func ValidateEndpoint(ep Endpoint) error {
	if ep == nil {
		return newError("", ErrInvalidParams, errNilEndpoint)
	}
	validateOnce.Do(func() { validate = validator.New() })

	err := validate.Struct(ep)
	var notStruct *validator.InvalidValidationError
	switch {
	case err == nil, errors.As(err, &notStruct):
		return nil
	default:
		return newError(ep.Name(), ErrInvalidParams, err)
	}
}

var errNilEndpoint = errors.New("endpoint is nil")
