package newsapi

import (
	"sort"
	"strings"
)

// FilterSources returns the sources whose name contains query, ignoring case.
// An empty query returns a copy of sources. Sources without a name never match.
func FilterSources(sources []Category, query string) []Category {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Category, 0, len(sources))
	for _, s := range sources {
		if query == "" {
			out = append(out, s)
			continue
		}
		if s.Name != "" && strings.Contains(strings.ToLower(s.Name), query) {
			out = append(out, s)
		}
	}
	return out
}

// SortByCategory returns a copy of sources ordered by category, ascending.
// Equal categories keep their input order; sources without a category go last.
func SortByCategory(sources []Category) []Category {
	out := make([]Category, len(sources))
	copy(out, sources)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Category, out[j].Category
		switch {
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})
	return out
}
