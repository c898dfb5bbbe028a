package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quantumgrove/calosync/pkg/log"
	"github.com/quantumgrove/calosync/pkg/query"
)

// FoodStore provides keyword search over the food nutrition dataset.
type FoodStore struct {
	db   *sql.DB
	opts Options
	log  *log.Logger
}

// NewFoodStore opens the food nutrition database read-only.
func NewFoodStore(path string, opts Options) (*FoodStore, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("opening food database: %w", err)
	}
	return &FoodStore{
		db:   db,
		opts: opts,
		log:  log.ForService("food"),
	}, nil
}

func (s *FoodStore) Close() error {
	return s.db.Close()
}

// FoodRecord is one row of the food nutrition dataset as returned to callers.
// Serving is stored as a JSON-encoded array and decoded during assembly.
type FoodRecord struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	Serving       []string `json:"serving"`
	Calories      float64  `json:"calories"`
	Protein       float64  `json:"protein"`
	TotalFat      float64  `json:"total_fat"`
	Carbohydrates float64  `json:"carbohydrates"`
	ImageURL      string   `json:"image_url"`
}

// Search tokenizes the free-text query and returns the requested page of
// matching food records. Every token must appear as a substring of the
// record's keyword column. A query that normalizes to zero tokens, or whose
// tokens match nothing, yields ErrNoResults. Records are ordered USA first,
// then alphabetically by country, then by ascending name length.
func (s *FoodStore) Search(ctx context.Context, params query.SearchParams) (*Page[FoodRecord], error) {
	tokens := query.Tokenize(params.Query)
	if len(tokens) == 0 {
		return nil, ErrNoResults
	}
	s.log.Debugf("searching with tokens %v", tokens)

	matched, args := matchedIDs("foodNutrient_fts", "nameKeys", tokens)

	ctx, cancel := withQueryTimeout(ctx, s.opts.timeout())
	defer cancel()

	var total int
	countSQL := "SELECT COUNT(*) FROM (" + matched + ")"
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting food matches: %w", err)
	}
	if total == 0 {
		return nil, ErrNoResults
	}

	dataSQL := `
		WITH matched AS (` + matched + `)
		SELECT fn.id, fn.name, fn.country, fn.serving,
		       fn.calories, fn.protein, fn.total_fat, fn.carbohydrates
		FROM foodNutrient fn
		JOIN matched ON fn.id = matched.id
		ORDER BY
			CASE WHEN fn.country = 'USA' THEN 1 ELSE 2 END,
			fn.country,
			LENGTH(fn.name)
		LIMIT ? OFFSET ?`
	dataArgs := append(append([]any{}, args...), params.ResultsPerPage, params.Offset())

	rows, err := s.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying food records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warnf("closing rows: %v", err)
		}
	}()

	records := make([]FoodRecord, 0, params.ResultsPerPage)
	for rows.Next() {
		var rec FoodRecord
		var serving sql.NullString
		var calories, protein, fat, carbs sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Country, &serving,
			&calories, &protein, &fat, &carbs); err != nil {
			return nil, fmt.Errorf("scanning food row: %w", err)
		}
		rec.Serving = decodeJSONList(serving)
		rec.Calories = calories.Float64
		rec.Protein = protein.Float64
		rec.TotalFat = fat.Float64
		rec.Carbohydrates = carbs.Float64
		rec.ImageURL = s.opts.imageURL()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading food rows: %w", err)
	}

	return &Page[FoodRecord]{
		TotalRows:      total,
		Page:           params.Page,
		ResultsPerPage: params.ResultsPerPage,
		Rows:           records,
	}, nil
}
