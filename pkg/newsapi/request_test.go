package newsapi

import (
	"errors"
	"testing"
)

func TestBuildRequestComposesURLAndHeaders(t *testing.T) {
	req, err := BuildRequest(TopHeadlinesByCategory{Category: "technology", Page: "1"}, DefaultBaseURL, "secret")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	want := "https://newsapi.org/v2/top-headlines?country=us&category=technology&page=1"
	if req.URL != want {
		t.Fatalf("URL = %q, want %q", req.URL, want)
	}
	if req.Method != "GET" {
		t.Fatalf("Method = %q", req.Method)
	}
	if req.Endpoint != "top_headlines_category" {
		t.Fatalf("Endpoint = %q", req.Endpoint)
	}
	if req.Headers["Host"] != "newsapi.org" || req.Headers["Authorization"] != "X-Api-Key secret" {
		t.Fatalf("unexpected headers %#v", req.Headers)
	}
}

func TestBuildRequestAddsMissingTrailingSlash(t *testing.T) {
	req, err := BuildRequest(ListSources{}, "http://127.0.0.1:8080/v2", "k")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.URL != "http://127.0.0.1:8080/v2/sources?language=en" {
		t.Fatalf("URL = %q", req.URL)
	}
	if req.Headers["Host"] != "127.0.0.1:8080" {
		t.Fatalf("Host = %q", req.Headers["Host"])
	}
}

func TestBuildRequestRejectsIllegalCharacters(t *testing.T) {
	for _, q := range []string{"two words", "quote\"d", "bad%zz", "trailing%2", "tab\tx", "naïve"} {
		_, err := BuildRequest(Search{Query: q}, DefaultBaseURL, "k")
		if !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("query %q: expected ErrInvalidURL, got %v", q, err)
		}
	}
}

func TestBuildRequestAcceptsEncodedQuery(t *testing.T) {
	req, err := BuildRequest(Search{Query: "two+words%21"}, DefaultBaseURL, "k")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.URL != "https://newsapi.org/v2/everything?q=two+words%21" {
		t.Fatalf("URL = %q", req.URL)
	}
}

func TestBuildRequestRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "newsapi.org/v2", "ftp://newsapi.org/", "https://newsapi.org/v2/?x=1", "https:///v2"} {
		_, err := BuildRequest(TopHeadlines{}, base, "k")
		if !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("base %q: expected ErrInvalidURL, got %v", base, err)
		}
	}
}

func TestBuildRequestValidatesParamsFirst(t *testing.T) {
	_, err := BuildRequest(Search{}, "not a url", "k")
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}
