package newsapi

import (
	"reflect"
	"testing"
)

var testSources = []Category{
	{ID: "wired", Name: "Wired", Category: "technology"},
	{ID: "bbc-news", Name: "BBC News", Category: "general"},
	{ID: "anon", Category: "general"},
	{ID: "espn", Name: "ESPN"},
	{ID: "bbc-sport", Name: "BBC Sport", Category: "sports"},
}

func TestFilterSourcesMatchesNameCaseInsensitively(t *testing.T) {
	got := FilterSources(testSources, "bbc")
	if len(got) != 2 || got[0].ID != "bbc-news" || got[1].ID != "bbc-sport" {
		t.Fatalf("unexpected filter result %#v", got)
	}
	if got := FilterSources(testSources, "  WIRED "); len(got) != 1 || got[0].ID != "wired" {
		t.Fatalf("unexpected filter result %#v", got)
	}
}

func TestFilterSourcesEmptyQueryReturnsCopy(t *testing.T) {
	got := FilterSources(testSources, "")
	if !reflect.DeepEqual(got, testSources) {
		t.Fatalf("expected all sources, got %#v", got)
	}
	got[0].Name = "changed"
	if testSources[0].Name != "Wired" {
		t.Fatalf("filter result aliases its input")
	}
}

func TestSortByCategoryIsStableAndPutsEmptyLast(t *testing.T) {
	got := SortByCategory(testSources)
	var ids []string
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	want := []string{"bbc-news", "anon", "bbc-sport", "wired", "espn"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("order = %v, want %v", ids, want)
	}
	if testSources[0].ID != "wired" {
		t.Fatalf("sort mutated its input")
	}
}
