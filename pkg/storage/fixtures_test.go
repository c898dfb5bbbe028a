package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// Test fixtures are built with a plain read-write connection and then opened
// through the stores' read-only path, mirroring how the service consumes the
// pre-built datasets.

const foodSchema = `
CREATE TABLE foodNutrient (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	country TEXT NOT NULL,
	serving TEXT,
	calories REAL,
	protein REAL,
	total_fat REAL,
	carbohydrates REAL,
	nameKeys TEXT NOT NULL
);
CREATE TABLE foodNutrient_fts (
	id INTEGER PRIMARY KEY,
	nameKeys TEXT NOT NULL
);`

const recipeSchema = `
CREATE TABLE recipes (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	category TEXT,
	time INTEGER,
	procedures TEXT,
	notes TEXT,
	dietType TEXT,
	serving_size TEXT,
	servings_per_recipe INTEGER,
	calories INTEGER,
	calories_from_fat INTEGER,
	total_fat REAL,
	saturated_fat REAL,
	cholesterol REAL,
	sodium REAL,
	total_carbohydrates REAL,
	dietary_fiber REAL,
	sugars REAL,
	protein REAL,
	vitamin_a REAL,
	vitamin_c REAL,
	calcium REAL,
	iron REAL,
	ingredients TEXT,
	titleTags TEXT NOT NULL,
	difficulty TEXT
);
CREATE TABLE countries (
	id INTEGER PRIMARY KEY,
	countries TEXT NOT NULL
);
CREATE TABLE countries_recipes (
	recipe_id INTEGER NOT NULL,
	country_id INTEGER NOT NULL
);
CREATE TABLE categories (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);`

func createFixtureDB(t *testing.T, name, schema string, inserts []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening fixture database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Fatalf("closing fixture database: %v", err)
		}
	}()

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("creating fixture schema: %v", err)
		}
	}
	for _, stmt := range inserts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("inserting fixture row: %v\n%s", err, stmt)
		}
	}

	return path
}

// createFoodDB builds the food fixture: 25 bean records for pagination plus
// a handful of named records for intersection and ordering checks.
func createFoodDB(t *testing.T) string {
	t.Helper()

	var inserts []string
	for i := 1; i <= 25; i++ {
		name := "Bean " + strings.Repeat("a", i)
		inserts = append(inserts,
			fmt.Sprintf(`INSERT INTO foodNutrient (id, name, country, serving, calories, protein, total_fat, carbohydrates, nameKeys)
				VALUES (%d, '%s', 'USA', NULL, %d, 10, 2, 30, 'bean')`, i, name, 100+i),
			fmt.Sprintf(`INSERT INTO foodNutrient_fts (id, nameKeys) VALUES (%d, 'bean')`, i),
		)
	}

	named := []struct {
		id       int
		name     string
		country  string
		serving  string
		nameKeys string
	}{
		{100, "Chicken Rice Soup", "India", "NULL", "chicken rice soup"},
		{101, "Chicken Curry", "India", "NULL", "chicken curry"},
		{102, "Fried Rice", "China", "'not-json'", "fried rice"},
		{103, "Rice Pudding", "USA", `'["1 cup","100 g"]'`, "rice pudding"},
	}
	for _, n := range named {
		inserts = append(inserts,
			fmt.Sprintf(`INSERT INTO foodNutrient (id, name, country, serving, calories, protein, total_fat, carbohydrates, nameKeys)
				VALUES (%d, '%s', '%s', %s, 250, 12, 5, 40, '%s')`, n.id, n.name, n.country, n.serving, n.nameKeys),
			fmt.Sprintf(`INSERT INTO foodNutrient_fts (id, nameKeys) VALUES (%d, '%s')`, n.id, n.nameKeys),
		)
	}

	return createFixtureDB(t, "food_nutrition.db", foodSchema, inserts)
}

// createRecipeDB builds the recipe fixture used across the recipe store
// tests: a small set of named recipes with categories, countries, diet tags
// and nutrition facts, plus extra vegan recipes for the grouping tests.
func createRecipeDB(t *testing.T) string {
	t.Helper()

	inserts := []string{
		`INSERT INTO recipes (id, title, category, time, procedures, notes, dietType, serving_size, servings_per_recipe,
			calories, calories_from_fat, total_fat, saturated_fat, cholesterol, sodium, total_carbohydrates,
			dietary_fiber, sugars, protein, vitamin_a, vitamin_c, calcium, iron, ingredients, titleTags, difficulty)
			VALUES (1, 'Apple Pie', 'dessert', 60, '["peel","bake"]', NULL, '["vegetarian"]', '1 slice', 8,
			350, 120, 14, 6, 20, 300, 52, 2, 30, 3, 1, 2, 1, 0.5, '["apples","flour"]', 'apple pie', 'medium')`,
		`INSERT INTO recipes (id, title, category, time, procedures, notes, dietType, serving_size, servings_per_recipe,
			calories, calories_from_fat, total_fat, saturated_fat, cholesterol, sodium, total_carbohydrates,
			dietary_fiber, sugars, protein, vitamin_a, vitamin_c, calcium, iron, ingredients, titleTags, difficulty)
			VALUES (2, 'Bean Soup', 'soup', 45, '["boil","simmer"]', NULL, '["vegan","gluten-free"]', '1 bowl', 4,
			200, 20, 2, 0.5, 0, 450, 35, 9, 4, 12, 10, 8, 6, 3, '["beans","water"]', 'bean soup', 'easy')`,
		`INSERT INTO recipes (id, title, category, time, dietType, calories, ingredients, titleTags, difficulty)
			VALUES (3, 'Chicken Rice', 'main', 30, '[]', 500, '["chicken","rice"]', 'chicken rice', 'easy')`,
		`INSERT INTO recipes (id, title, category, time, dietType, calories, titleTags, difficulty)
			VALUES (4, 'Dal Curry', 'main', 40, '["vegan"]', 320, 'dal curry', 'medium')`,
		`INSERT INTO recipes (id, title, category, time, dietType, calories, titleTags, difficulty)
			VALUES (5, 'Egg Salad', 'salad', 10, '["keto","vegetarian"]', 180, 'egg salad', 'easy')`,
		`INSERT INTO recipes (id, title, titleTags) VALUES (6, 'Plain Toast', 'plain toast')`,

		`INSERT INTO recipes (id, title, dietType, titleTags) VALUES (10, 'Vegan Bowl One', '["vegan"]', 'vegan bowl one')`,
		`INSERT INTO recipes (id, title, dietType, titleTags) VALUES (11, 'Vegan Bowl Two', '["vegan","gluten-free"]', 'vegan bowl two')`,
		`INSERT INTO recipes (id, title, dietType, titleTags) VALUES (12, 'Vegan Bowl Three', '["vegan","gluten-free","dairy-free"]', 'vegan bowl three')`,
		`INSERT INTO recipes (id, title, dietType, titleTags) VALUES (13, 'Vegan Bowl Four', '["vegan","raw"]', 'vegan bowl four')`,
		`INSERT INTO recipes (id, title, dietType, titleTags) VALUES (14, 'Vegan Bowl Five', '["vegan","raw","nut-free","soy-free"]', 'vegan bowl five')`,

		`INSERT INTO countries (id, countries) VALUES (1, 'USA')`,
		`INSERT INTO countries (id, countries) VALUES (2, 'India')`,
		`INSERT INTO countries (id, countries) VALUES (3, 'China')`,
		`INSERT INTO countries_recipes (recipe_id, country_id) VALUES (1, 1)`,
		`INSERT INTO countries_recipes (recipe_id, country_id) VALUES (2, 2)`,
		`INSERT INTO countries_recipes (recipe_id, country_id) VALUES (3, 1)`,
		`INSERT INTO countries_recipes (recipe_id, country_id) VALUES (3, 3)`,

		`INSERT INTO categories (id, name) VALUES (1, 'vegan')`,
		`INSERT INTO categories (id, name) VALUES (2, 'vegetarian')`,
		`INSERT INTO categories (id, name) VALUES (3, 'keto')`,
		`INSERT INTO categories (id, name) VALUES (4, 'gluten-free')`,
	}

	return createFixtureDB(t, "recipes.db", recipeSchema, inserts)
}
