package query

import (
	"net/url"
	"testing"
)

func TestParseSearchParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		max      int
		expected SearchParams
		hasError bool
	}{
		{
			name:  "basic query",
			query: "q=chicken+rice&page=2&results_per_page=25",
			max:   50,
			expected: SearchParams{
				Query:          "chicken rice",
				Page:           2,
				ResultsPerPage: 25,
			},
		},
		{
			name:  "defaults when no params",
			query: "",
			max:   50,
			expected: SearchParams{
				Page:           1,
				ResultsPerPage: 10,
			},
		},
		{
			name:  "invalid page defaults to 1",
			query: "q=soup&page=zero",
			max:   50,
			expected: SearchParams{
				Query:          "soup",
				Page:           1,
				ResultsPerPage: 10,
			},
		},
		{
			name:  "results_per_page clamped to max",
			query: "q=soup&results_per_page=500",
			max:   50,
			expected: SearchParams{
				Query:          "soup",
				Page:           1,
				ResultsPerPage: 50,
			},
		},
		{
			name:  "zero results_per_page defaults",
			query: "results_per_page=0",
			max:   50,
			expected: SearchParams{
				Page:           1,
				ResultsPerPage: 10,
			},
		},
		{
			name:     "malformed filter bound is an error",
			query:    "q=soup&calories_min=spicy",
			max:      50,
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parsing query string: %v", err)
			}

			params, err := ParseSearchParams(values, tt.max)
			if tt.hasError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSearchParams: %v", err)
			}

			if params.Query != tt.expected.Query {
				t.Errorf("query = %q, want %q", params.Query, tt.expected.Query)
			}
			if params.Page != tt.expected.Page {
				t.Errorf("page = %d, want %d", params.Page, tt.expected.Page)
			}
			if params.ResultsPerPage != tt.expected.ResultsPerPage {
				t.Errorf("results_per_page = %d, want %d", params.ResultsPerPage, tt.expected.ResultsPerPage)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := SearchParams{Page: 3, ResultsPerPage: 10}
	if got := p.Offset(); got != 20 {
		t.Errorf("offset = %d, want 20", got)
	}
}
