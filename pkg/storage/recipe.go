package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quantumgrove/calosync/pkg/log"
	"github.com/quantumgrove/calosync/pkg/query"
)

// RecipeStore provides keyword search, structured filtering, record lookup
// and diet grouping over the recipe dataset.
type RecipeStore struct {
	db   *sql.DB
	opts Options
	log  *log.Logger
}

// NewRecipeStore opens the recipe database read-only.
func NewRecipeStore(path string, opts Options) (*RecipeStore, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipe database: %w", err)
	}
	return &RecipeStore{
		db:   db,
		opts: opts,
		log:  log.ForService("recipes"),
	}, nil
}

func (s *RecipeStore) Close() error {
	return s.db.Close()
}

// RecipeSummary is the compact row shape returned by paginated recipe search.
type RecipeSummary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Time     int    `json:"time"`
	Calories int    `json:"calories"`
	ImageURL string `json:"image_url"`
}

// Recipe is the full record shape returned by ID lookup.
type Recipe struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	Time               int      `json:"time"`
	Procedures         []string `json:"procedures"`
	Notes              []string `json:"notes"`
	DietTypes          []string `json:"dietType"`
	ServingSize        string   `json:"serving_size"`
	ServingsPerRecipe  int      `json:"servings_per_recipe"`
	Calories           int      `json:"calories"`
	CaloriesFromFat    int      `json:"calories_from_fat"`
	TotalFat           float64  `json:"total_fat"`
	SaturatedFat       float64  `json:"saturated_fat"`
	Cholesterol        float64  `json:"cholesterol"`
	Sodium             float64  `json:"sodium"`
	TotalCarbohydrates float64  `json:"total_carbohydrates"`
	DietaryFiber       float64  `json:"dietary_fiber"`
	Sugars             float64  `json:"sugars"`
	Protein            float64  `json:"protein"`
	VitaminA           float64  `json:"vitamin_a"`
	VitaminC           float64  `json:"vitamin_c"`
	Calcium            float64  `json:"calcium"`
	Iron               float64  `json:"iron"`
	Countries          []string `json:"countries"`
	Difficulty         string   `json:"difficulty"`
	Ingredients        []string `json:"ingredients"`
	ImageURL           string   `json:"image_url"`
}

// Search combines the keyword candidate set with the structured filter
// predicates and returns the requested page of recipe summaries, ordered by
// title. An empty query with filters (or no filters at all) searches the
// whole dataset; a non-empty query that normalizes to zero tokens yields
// ErrNoResults. Recipes associated with several countries match if any of
// them satisfies the country filter; the GROUP BY de-duplicates the fan-out.
func (s *RecipeStore) Search(ctx context.Context, params query.SearchParams) (*Page[RecipeSummary], error) {
	matched := "SELECT id FROM recipes"
	var keyArgs []any
	if strings.TrimSpace(params.Query) != "" {
		tokens := query.Tokenize(params.Query)
		if len(tokens) == 0 {
			return nil, ErrNoResults
		}
		s.log.Debugf("searching with tokens %v", tokens)
		matched, keyArgs = matchedIDs("recipes", "titleTags", tokens)
	}

	conds, filterArgs := params.Filters.Conditions()

	base := `
		WITH matched AS (` + matched + `)
		SELECT r.id, r.title, r.time, r.calories
		FROM matched
		JOIN recipes r ON r.id = matched.id
		LEFT JOIN countries_recipes cr ON r.id = cr.recipe_id
		LEFT JOIN countries c ON cr.country_id = c.id`
	if len(conds) > 0 {
		base += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	base += "\n\t\tGROUP BY r.id\n\t\tORDER BY r.title ASC"

	args := append(append([]any{}, keyArgs...), filterArgs...)

	ctx, cancel := withQueryTimeout(ctx, s.opts.timeout())
	defer cancel()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+base+")", args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting recipe matches: %w", err)
	}
	if total == 0 {
		return nil, ErrNoResults
	}

	dataArgs := append(append([]any{}, args...), params.ResultsPerPage, params.Offset())
	rows, err := s.db.QueryContext(ctx, base+"\n\t\tLIMIT ? OFFSET ?", dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warnf("closing rows: %v", err)
		}
	}()

	summaries := make([]RecipeSummary, 0, params.ResultsPerPage)
	for rows.Next() {
		var sum RecipeSummary
		var cookTime, calories sql.NullInt64
		if err := rows.Scan(&sum.ID, &sum.Title, &cookTime, &calories); err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}
		sum.Time = int(cookTime.Int64)
		sum.Calories = int(calories.Int64)
		sum.ImageURL = s.opts.imageURL()
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading recipe rows: %w", err)
	}

	return &Page[RecipeSummary]{
		TotalRows:      total,
		Page:           params.Page,
		ResultsPerPage: params.ResultsPerPage,
		Rows:           summaries,
	}, nil
}

// ByID returns the full record for one recipe, with the JSON-encoded list
// columns decoded and the associated countries collected. Returns
// ErrNoResults when the ID is unknown.
func (s *RecipeStore) ByID(ctx context.Context, id int) (*Recipe, error) {
	ctx, cancel := withQueryTimeout(ctx, s.opts.timeout())
	defer cancel()

	const q = `
		SELECT r.id, r.title, r.category, r.time, r.procedures, r.notes,
		       r.dietType, r.serving_size, r.servings_per_recipe,
		       r.calories, r.calories_from_fat, r.total_fat, r.saturated_fat,
		       r.cholesterol, r.sodium, r.total_carbohydrates, r.dietary_fiber,
		       r.sugars, r.protein, r.vitamin_a, r.vitamin_c, r.calcium, r.iron,
		       r.ingredients, GROUP_CONCAT(DISTINCT c.countries) AS countries,
		       r.difficulty
		FROM recipes r
		LEFT JOIN countries_recipes cr ON r.id = cr.recipe_id
		LEFT JOIN countries c ON cr.country_id = c.id
		WHERE r.id = ?
		GROUP BY r.id`

	var (
		rec                                     Recipe
		category, servingSize, difficulty       sql.NullString
		procedures, notes, dietTypes, countries sql.NullString
		ingredients                             sql.NullString
		cookTime, servings, calories, calFat    sql.NullInt64
		numeric                                 [12]sql.NullFloat64
	)

	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.Title, &category, &cookTime, &procedures, &notes,
		&dietTypes, &servingSize, &servings,
		&calories, &calFat, &numeric[0], &numeric[1],
		&numeric[2], &numeric[3], &numeric[4], &numeric[5],
		&numeric[6], &numeric[7], &numeric[8], &numeric[9], &numeric[10], &numeric[11],
		&ingredients, &countries,
		&difficulty,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, fmt.Errorf("querying recipe %d: %w", id, err)
	}

	rec.Category = category.String
	rec.Time = int(cookTime.Int64)
	rec.Procedures = decodeJSONList(procedures)
	rec.Notes = decodeJSONList(notes)
	rec.DietTypes = decodeJSONList(dietTypes)
	rec.ServingSize = servingSize.String
	rec.ServingsPerRecipe = int(servings.Int64)
	rec.Calories = int(calories.Int64)
	rec.CaloriesFromFat = int(calFat.Int64)
	rec.TotalFat = numeric[0].Float64
	rec.SaturatedFat = numeric[1].Float64
	rec.Cholesterol = numeric[2].Float64
	rec.Sodium = numeric[3].Float64
	rec.TotalCarbohydrates = numeric[4].Float64
	rec.DietaryFiber = numeric[5].Float64
	rec.Sugars = numeric[6].Float64
	rec.Protein = numeric[7].Float64
	rec.VitaminA = numeric[8].Float64
	rec.VitaminC = numeric[9].Float64
	rec.Calcium = numeric[10].Float64
	rec.Iron = numeric[11].Float64
	rec.Ingredients = decodeJSONList(ingredients)
	rec.Countries = splitList(countries)
	rec.Difficulty = difficulty.String
	rec.ImageURL = s.opts.imageURL()

	return &rec, nil
}

// FilterInventory describes the filter values available in the dataset, used
// by clients to populate filter pickers. Countries maps names to ISO codes;
// the code is null for countries missing from the lookup table.
type FilterInventory struct {
	Categories    []string           `json:"categories"`
	DietTypes     []string           `json:"dietTypes"`
	Countries     map[string]*string `json:"countries"`
	TimeRange     []int              `json:"timeRange"`
	CaloriesRange []int              `json:"caloriesRange"`
}

// FilterInventory collects the distinct categorical values and the numeric
// ranges of the dataset.
func (s *RecipeStore) FilterInventory(ctx context.Context) (*FilterInventory, error) {
	ctx, cancel := withQueryTimeout(ctx, s.opts.timeout())
	defer cancel()

	inv := &FilterInventory{Countries: make(map[string]*string)}

	var err error
	if inv.Categories, err = s.distinctValues(ctx, "SELECT DISTINCT category FROM recipes WHERE category IS NOT NULL ORDER BY category"); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	// The diet-type lookup table is named "categories" in the dataset schema.
	if inv.DietTypes, err = s.distinctValues(ctx, "SELECT DISTINCT name FROM categories WHERE name IS NOT NULL ORDER BY name"); err != nil {
		return nil, fmt.Errorf("listing diet types: %w", err)
	}

	countries, err := s.distinctValues(ctx, "SELECT DISTINCT countries FROM countries WHERE countries IS NOT NULL ORDER BY countries")
	if err != nil {
		return nil, fmt.Errorf("listing countries: %w", err)
	}
	for _, name := range countries {
		if code, ok := s.opts.CountryCodes[name]; ok {
			c := code
			inv.Countries[name] = &c
		} else {
			inv.Countries[name] = nil
		}
	}

	if inv.TimeRange, err = s.valueRange(ctx, "SELECT MIN(time), MAX(time) FROM recipes WHERE time IS NOT NULL AND time != ''"); err != nil {
		return nil, fmt.Errorf("reading time range: %w", err)
	}
	if inv.CaloriesRange, err = s.valueRange(ctx, "SELECT MIN(calories), MAX(calories) FROM recipes WHERE calories IS NOT NULL"); err != nil {
		return nil, fmt.Errorf("reading calories range: %w", err)
	}

	return inv, nil
}

func (s *RecipeStore) distinctValues(ctx context.Context, q string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warnf("closing rows: %v", err)
		}
	}()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *RecipeStore) valueRange(ctx context.Context, q string) ([]int, error) {
	var lo, hi sql.NullInt64
	if err := s.db.QueryRowContext(ctx, q).Scan(&lo, &hi); err != nil {
		return nil, err
	}
	if !lo.Valid || !hi.Valid {
		return nil, nil
	}
	return []int{int(lo.Int64), int(hi.Int64)}, nil
}

// DietRecipe is one clipped entry in a diet group.
type DietRecipe struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Time       int    `json:"time"`
	Calories   int    `json:"calories"`
	Difficulty string `json:"difficulty"`
	ImageURL   string `json:"image_url"`
}

// DietGroup buckets the recipes carrying one diet tag. RecipeCount is the
// total before clipping; Recipes holds at most the caller's limit, selected
// by ascending per-recipe diet-tag count (recipes with few other tags first).
type DietGroup struct {
	DietType    string       `json:"diet_type"`
	RecipeCount int          `json:"recipe_count"`
	Recipes     []DietRecipe `json:"recipes"`
}

// GroupByDiet buckets every recipe under each diet tag it carries. Sorting
// within a bucket is by the recipe's own diet-tag count ascending with stable
// ties; groups come back in alphabetical tag order.
func (s *RecipeStore) GroupByDiet(ctx context.Context, limit int) ([]DietGroup, error) {
	ctx, cancel := withQueryTimeout(ctx, s.opts.timeout())
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, time, calories, dietType, difficulty FROM recipes")
	if err != nil {
		return nil, fmt.Errorf("querying recipes for diet grouping: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warnf("closing rows: %v", err)
		}
	}()

	type taggedRecipe struct {
		rec      DietRecipe
		tagCount int
	}
	buckets := make(map[string][]taggedRecipe)

	for rows.Next() {
		var (
			id                 int
			title              string
			cookTime, calories sql.NullInt64
			dietType, diff     sql.NullString
		)
		if err := rows.Scan(&id, &title, &cookTime, &calories, &dietType, &diff); err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}

		tags := decodeJSONList(dietType)
		if len(tags) == 0 {
			continue
		}

		entry := taggedRecipe{
			rec: DietRecipe{
				ID:         id,
				Title:      title,
				Time:       int(cookTime.Int64),
				Calories:   int(calories.Int64),
				Difficulty: diff.String,
				ImageURL:   s.opts.imageURL(),
			},
			tagCount: len(tags),
		}

		seen := make(map[string]struct{}, len(tags))
		for _, tag := range tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			buckets[tag] = append(buckets[tag], entry)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading recipe rows: %w", err)
	}

	tags := make([]string, 0, len(buckets))
	for tag := range buckets {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	groups := make([]DietGroup, 0, len(tags))
	for _, tag := range tags {
		entries := buckets[tag]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].tagCount < entries[j].tagCount
		})

		clipped := entries
		if limit > 0 && len(clipped) > limit {
			clipped = clipped[:limit]
		}
		recipes := make([]DietRecipe, len(clipped))
		for i, e := range clipped {
			recipes[i] = e.rec
		}

		groups = append(groups, DietGroup{
			DietType:    tag,
			RecipeCount: len(entries),
			Recipes:     recipes,
		})
	}

	return groups, nil
}
