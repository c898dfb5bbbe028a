// Package storage provides read-only access to the pre-built food nutrition
// and recipe SQLite datasets. It implements the keyword matching, filter
// composition and result assembly for both datasets: per-token substring
// matches over a precomputed keyword column are intersected in SQL, combined
// with the structured filter predicates from pkg/query, counted, and sliced
// into a paginated envelope.
//
// All queries are parameterized; candidate ID sets are intersected inside the
// database instead of being interpolated into query strings. Every statement
// runs under a bounded timeout so pathological inputs cannot block a request
// indefinitely.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/quantumgrove/calosync/pkg/query"
)

// ErrNoResults is the sentinel returned when a query matches no records at
// all. A page past the end of a non-empty match is NOT this error; it is a
// normal envelope with empty rows and the true total_rows.
var ErrNoResults = errors.New("no matching records")

// DefaultImageURL is the presentation constant attached to every summary
// record when the configuration does not override it. It is not stored data.
const DefaultImageURL = "https://api.quantumgrove.tech:8001/calosync/xxhdpi/fi_alcohol.png"

const defaultQueryTimeout = 5 * time.Second

// Page is the paginated result envelope returned by every search operation.
// TotalRows is the full match count before pagination, so callers can tell
// "nothing matched" apart from "page past the end".
type Page[T any] struct {
	TotalRows      int `json:"total_rows"`
	Page           int `json:"page"`
	ResultsPerPage int `json:"results_per_page"`
	Rows           []T `json:"rows"`
}

// Options configures how a store opens and queries its dataset.
type Options struct {
	// QueryTimeout bounds every statement issued against the store.
	// Zero selects the default of 5s.
	QueryTimeout time.Duration

	// ImageURL overrides the constant image URL attached to summary rows.
	ImageURL string

	// CountryCodes maps country names to ISO codes for the filter
	// inventory. Only used by the recipe store; may be nil.
	CountryCodes map[string]string
}

func (o Options) imageURL() string {
	if o.ImageURL == "" {
		return DefaultImageURL
	}
	return o.ImageURL
}

func (o Options) timeout() time.Duration {
	if o.QueryTimeout <= 0 {
		return defaultQueryTimeout
	}
	return o.QueryTimeout
}

// openDatabase opens a dataset read-only and applies the session pragmas.
// The datasets are immutable at query time, so WAL and write tuning do not
// apply; we only care about lookup performance and not blocking forever on
// a locked file.
func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

// matchedIDs builds the keyword-intersection subquery: one SELECT per token
// over the keyword column, combined with INTERSECT so that every token must
// appear somewhere in the field (strict AND semantics). Returns the subquery
// body and its bind arguments.
func matchedIDs(table, column string, tokens []string) (string, []any) {
	parts := make([]string, len(tokens))
	args := make([]any, len(tokens))
	for i, tok := range tokens {
		parts[i] = "SELECT id FROM " + table + " WHERE " + column + " LIKE ?"
		args[i] = query.LikePattern(tok)
	}
	return strings.Join(parts, " INTERSECT "), args
}

// decodeJSONList decodes a JSON-array-encoded column into a string slice.
// NULL, empty and malformed values all decode to an empty slice; a
// field-level decode failure never fails the surrounding record.
func decodeJSONList(raw sql.NullString) []string {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return []string{}
	}
	return out
}

// splitList splits a GROUP_CONCAT-joined column back into its values.
// NULL or empty becomes an empty slice, never nil.
func splitList(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return []string{}
	}
	return strings.Split(raw.String, ",")
}

func withQueryTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
