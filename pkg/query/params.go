package query

import (
	"net/url"
	"strconv"
)

// Pagination defaults. ResultsPerPage is additionally capped by the
// service configuration (max_results_per_page).
const (
	DefaultPage           = 1
	DefaultResultsPerPage = 10
)

// SearchParams represents all parameters for one search request against
// either dataset. Filters only apply to the recipe dataset.
type SearchParams struct {
	// Query is the free-text search term. Empty means "no keyword
	// constraint" for the recipe dataset (filter-only search); the food
	// dataset requires it.
	Query string

	// Filters holds the structured recipe filters (ignored for food).
	Filters Filters

	// Page is the 1-based page number.
	Page int

	// ResultsPerPage is the page window size.
	ResultsPerPage int
}

// Offset returns the 0-based row offset of the requested page.
func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.ResultsPerPage
}

// ParseSearchParams parses HTTP query parameters into a SearchParams struct.
// Missing or malformed page/results_per_page values fall back to defaults;
// results_per_page is clamped to maxPerPage. Malformed numeric filter values
// are an error (see ParseFilters).
//
// Supported parameters:
//   - q: free-text query
//   - page: page number (>= 1, defaults to 1)
//   - results_per_page: page size (>= 1, capped)
//   - category, country, dietType: repeatable categorical filters
//   - calories_min, calories_max, time_min, time_max: inclusive bounds
func ParseSearchParams(values url.Values, maxPerPage int) (SearchParams, error) {
	params := SearchParams{
		Query:          values.Get("q"),
		Page:           DefaultPage,
		ResultsPerPage: DefaultResultsPerPage,
	}

	if raw := values.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			params.Page = n
		}
	}

	if raw := values.Get("results_per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			params.ResultsPerPage = n
		}
	}
	if maxPerPage > 0 && params.ResultsPerPage > maxPerPage {
		params.ResultsPerPage = maxPerPage
	}

	filters, err := ParseFilters(values)
	if err != nil {
		return params, err
	}
	params.Filters = filters

	return params, nil
}
