package newsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Source identifies the publisher of an article. Absent or null fields decode to "".
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is a single news item. Only Source is required upstream.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	ImageURL    string `json:"urlToImage,omitempty"`
	Content     string `json:"content,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// UnmarshalJSON rejects articles without a source object.
func (a *Article) UnmarshalJSON(data []byte) error {
	type plain Article
	var aux struct {
		plain
		Source *Source `json:"source"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Source == nil {
		return missingField("article.source")
	}
	*a = Article(aux.plain)
	a.Source = *aux.Source
	return nil
}

// ArticleList is the envelope returned by the top-headlines and everything endpoints.
type ArticleList struct {
	Status       string    `json:"status,omitempty"`
	TotalResults int       `json:"totalResults,omitempty"`
	Articles     []Article `json:"articles"`
}

// UnmarshalJSON rejects payloads without an articles array.
func (l *ArticleList) UnmarshalJSON(data []byte) error {
	var aux struct {
		Status       string     `json:"status"`
		TotalResults int        `json:"totalResults"`
		Articles     *[]Article `json:"articles"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Articles == nil {
		return missingField("articles")
	}
	*l = ArticleList{Status: aux.Status, TotalResults: aux.TotalResults, Articles: *aux.Articles}
	return nil
}

// Category is a news source together with its topical category. It is a comparable
// value, so two Categories with equal fields are == and share a map slot.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

const categoryKeySep = "|"

// Key encodes c as a stable string identity that ParseCategoryKey reverses.
func (c Category) Key() string {
	return strings.Join([]string{
		url.QueryEscape(c.ID),
		url.QueryEscape(c.Name),
		url.QueryEscape(c.Category),
	}, categoryKeySep)
}

// ParseCategoryKey decodes a key produced by Category.Key.
func ParseCategoryKey(key string) (Category, error) {
	parts := strings.Split(key, categoryKeySep)
	if len(parts) != 3 {
		return Category{}, fmt.Errorf("category key %q: want 3 parts, got %d", key, len(parts))
	}
	fields := make([]string, len(parts))
	for i, p := range parts {
		v, err := url.QueryUnescape(p)
		if err != nil {
			return Category{}, fmt.Errorf("category key %q: %w", key, err)
		}
		fields[i] = v
	}
	return Category{ID: fields[0], Name: fields[1], Category: fields[2]}, nil
}

// DisplayCategory returns the category capitalised for display ("technology" -> "Technology").
func (c Category) DisplayCategory() string {
	// a Caser carries state and must not be shared across goroutines
	return cases.Title(language.English).String(strings.TrimSpace(c.Category))
}

// AllNewsSources is the envelope returned by the sources endpoint.
type AllNewsSources struct {
	Status  string     `json:"status,omitempty"`
	Sources []Category `json:"sources"`
}

// UnmarshalJSON rejects payloads without a sources array.
func (s *AllNewsSources) UnmarshalJSON(data []byte) error {
	var aux struct {
		Status  string      `json:"status"`
		Sources *[]Category `json:"sources"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Sources == nil {
		return missingField("sources")
	}
	*s = AllNewsSources{Status: aux.Status, Sources: *aux.Sources}
	return nil
}

// APIError is the error envelope NewsAPI returns alongside non-2xx statuses.
type APIError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("newsapi %s: %s", e.Code, e.Message)
}

var errMissingField = errors.New("missing required field")

func missingField(name string) error {
	return fmt.Errorf("%w %q", errMissingField, name)
}
