package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filters holds the structured filter predicates recognized by the recipe
// search endpoint. A zero value means "no constraint". Categorical fields
// accept multiple values (OR-membership within the field); all present
// fields are combined with AND.
type Filters struct {
	Categories  []string
	Countries   []string
	DietTypes   []string
	CaloriesMin *int
	CaloriesMax *int
	TimeMin     *int
	TimeMax     *int
}

// Empty reports whether no filter constraint is present.
func (f Filters) Empty() bool {
	return len(f.Categories) == 0 &&
		len(f.Countries) == 0 &&
		len(f.DietTypes) == 0 &&
		f.CaloriesMin == nil && f.CaloriesMax == nil &&
		f.TimeMin == nil && f.TimeMax == nil
}

// Conditions translates the filters into parameterized SQL conditions over
// the recipe query's table aliases (r = recipes, c = countries). The caller
// joins the conditions with AND. Numeric bounds are inclusive. Diet types
// match as substrings of the JSON-encoded dietType column, OR-ed together.
func (f Filters) Conditions() ([]string, []any) {
	var conds []string
	var args []any

	if len(f.Categories) > 0 {
		conds = append(conds, "r.category IN ("+placeholders(len(f.Categories))+")")
		for _, v := range f.Categories {
			args = append(args, v)
		}
	}

	if len(f.Countries) > 0 {
		conds = append(conds, "c.countries IN ("+placeholders(len(f.Countries))+")")
		for _, v := range f.Countries {
			args = append(args, v)
		}
	}

	if len(f.DietTypes) > 0 {
		clauses := make([]string, len(f.DietTypes))
		for i, v := range f.DietTypes {
			clauses[i] = "r.dietType LIKE ?"
			args = append(args, "%"+v+"%")
		}
		conds = append(conds, "("+strings.Join(clauses, " OR ")+")")
	}

	ranges := []struct {
		val    *int
		clause string
	}{
		{f.CaloriesMin, "r.calories >= ?"},
		{f.CaloriesMax, "r.calories <= ?"},
		{f.TimeMin, "r.time >= ?"},
		{f.TimeMax, "r.time <= ?"},
	}
	for _, rng := range ranges {
		if rng.val != nil {
			conds = append(conds, rng.clause)
			args = append(args, *rng.val)
		}
	}

	return conds, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// ParseFilters extracts the recognized filter keys from HTTP query
// parameters. Unrecognized keys are ignored. Categorical keys may be
// repeated. Numeric keys must parse as non-negative integers; a malformed
// value is an error rather than a silently dropped constraint.
func ParseFilters(values url.Values) (Filters, error) {
	var f Filters

	f.Categories = nonEmpty(values["category"])
	f.Countries = nonEmpty(values["country"])
	f.DietTypes = nonEmpty(values["dietType"])

	var err error
	if f.CaloriesMin, err = parseBound(values, "calories_min"); err != nil {
		return f, err
	}
	if f.CaloriesMax, err = parseBound(values, "calories_max"); err != nil {
		return f, err
	}
	if f.TimeMin, err = parseBound(values, "time_min"); err != nil {
		return f, err
	}
	if f.TimeMax, err = parseBound(values, "time_max"); err != nil {
		return f, err
	}

	return f, nil
}

func parseBound(values url.Values, key string) (*int, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("parameter %s must be a non-negative integer", key)
	}
	return &n, nil
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
