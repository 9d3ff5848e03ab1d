package newsapi

import (
	"errors"
	"strings"
	"testing"
)

func TestQueryCarriesExactlyTheRequiredKeys(t *testing.T) {
	cases := []struct {
		name string
		ep   Endpoint
		want string
		path string
	}{
		{"category", TopHeadlinesByCategory{Category: "technology", Page: "2"}, "country=us&category=technology&page=2", "top-headlines"},
		{"category default page", TopHeadlinesByCategory{Category: "health"}, "country=us&category=health&page=1", "top-headlines"},
		{"default", TopHeadlines{}, "country=us", "top-headlines"},
		{"source", TopHeadlinesFromSource{SourceID: "bbc-news"}, "sources=bbc-news", "top-headlines"},
		{"search", Search{Query: "go+lang"}, "q=go+lang", "everything"},
		{"sources", ListSources{}, "language=en", "sources"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Query(tc.ep); got != tc.want {
				t.Fatalf("Query = %q, want %q", got, tc.want)
			}
			if tc.ep.Path() != tc.path {
				t.Fatalf("Path = %q, want %q", tc.ep.Path(), tc.path)
			}
			if tc.ep.Method() != "GET" {
				t.Fatalf("Method = %q", tc.ep.Method())
			}
		})
	}
}

func TestQueryKeepsValuesVerbatim(t *testing.T) {
	raw := "caf%C3%A9&x"
	got := Query(Search{Query: raw})
	if got != "q="+raw {
		t.Fatalf("expected verbatim value, got %q", got)
	}
	// the same input always serializes the same way
	if Query(Search{Query: raw}) != got {
		t.Fatalf("query serialization is not deterministic")
	}
}

func TestHeadersIncludeAuthAndHost(t *testing.T) {
	h := Headers("secret", "newsapi.org")
	want := map[string]string{
		"Accept":        "application/json",
		"Content-Type":  "application/json",
		"Authorization": "X-Api-Key secret",
		"Host":          "newsapi.org",
	}
	for k, v := range want {
		if h[k] != v {
			t.Fatalf("header %s = %q, want %q", k, h[k], v)
		}
	}
}

func TestValidateEndpointRejectsMissingFields(t *testing.T) {
	for _, ep := range []Endpoint{
		TopHeadlinesByCategory{},
		TopHeadlinesByCategory{Category: "science", Page: "two"},
		TopHeadlinesFromSource{},
		Search{},
		nil,
	} {
		err := ValidateEndpoint(ep)
		if !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("ValidateEndpoint(%#v) = %v, want ErrInvalidParams", ep, err)
		}
	}

	for _, ep := range []Endpoint{
		TopHeadlines{},
		ListSources{},
		TopHeadlinesByCategory{Category: "science", Page: "3"},
		Search{Query: "mars"},
	} {
		if err := ValidateEndpoint(ep); err != nil {
			t.Fatalf("ValidateEndpoint(%#v): %v", ep, err)
		}
	}
}

func TestValidateEndpointNamesTheOperation(t *testing.T) {
	err := ValidateEndpoint(Search{})
	if err == nil || !strings.Contains(err.Error(), "search") {
		t.Fatalf("expected error naming the endpoint, got %v", err)
	}
}
