package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/quantumgrove/calosync/pkg/query"
)

func newFoodStore(t *testing.T) *FoodStore {
	t.Helper()
	store, err := NewFoodStore(createFoodDB(t), Options{})
	if err != nil {
		t.Fatalf("opening food store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing food store: %v", err)
		}
	})
	return store
}

func foodParams(q string, page, perPage int) query.SearchParams {
	return query.SearchParams{Query: q, Page: page, ResultsPerPage: perPage}
}

func TestFoodSearchIntersection(t *testing.T) {
	store := newFoodStore(t)
	ctx := context.Background()

	// Both tokens must appear in the keyword field.
	page, err := store.Search(ctx, foodParams("chicken rice", 1, 10))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalRows != 1 || len(page.Rows) != 1 || page.Rows[0].ID != 100 {
		t.Fatalf("expected only record 100, got total=%d rows=%v", page.TotalRows, page.Rows)
	}

	// A single token fans out to every record containing it.
	page, err = store.Search(ctx, foodParams("chicken", 1, 10))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalRows != 2 {
		t.Fatalf("expected 2 chicken records, got %d", page.TotalRows)
	}

	// One token matching nothing empties the whole intersection.
	if _, err := store.Search(ctx, foodParams("zucchini rice", 1, 10)); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestFoodSearchEmptyQuery(t *testing.T) {
	store := newFoodStore(t)
	ctx := context.Background()

	for _, q := range []string{"", "!!!", "   "} {
		if _, err := store.Search(ctx, foodParams(q, 1, 10)); !errors.Is(err, ErrNoResults) {
			t.Errorf("query %q: expected ErrNoResults, got %v", q, err)
		}
	}
}

func TestFoodSearchOrdering(t *testing.T) {
	store := newFoodStore(t)

	page, err := store.Search(context.Background(), foodParams("rice", 1, 10))
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	// USA records first, then remaining countries alphabetically.
	wantOrder := []int{103, 102, 100}
	if len(page.Rows) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(page.Rows))
	}
	for i, want := range wantOrder {
		if page.Rows[i].ID != want {
			t.Errorf("row %d: id = %d, want %d", i, page.Rows[i].ID, want)
		}
	}
}

func TestFoodSearchPagination(t *testing.T) {
	store := newFoodStore(t)
	ctx := context.Background()

	tests := []struct {
		page      int
		wantRows  int
		wantFirst int
	}{
		{page: 1, wantRows: 10, wantFirst: 1},
		{page: 2, wantRows: 10, wantFirst: 11},
		{page: 3, wantRows: 5, wantFirst: 21},
		{page: 4, wantRows: 0},
	}

	for _, tt := range tests {
		page, err := store.Search(ctx, foodParams("bean", tt.page, 10))
		if err != nil {
			t.Fatalf("page %d: %v", tt.page, err)
		}
		if page.TotalRows != 25 {
			t.Errorf("page %d: total_rows = %d, want 25", tt.page, page.TotalRows)
		}
		if len(page.Rows) != tt.wantRows {
			t.Errorf("page %d: rows = %d, want %d", tt.page, len(page.Rows), tt.wantRows)
		}
		if tt.wantRows > 0 && page.Rows[0].ID != tt.wantFirst {
			t.Errorf("page %d: first id = %d, want %d", tt.page, page.Rows[0].ID, tt.wantFirst)
		}
	}
}

func TestFoodServingAssembly(t *testing.T) {
	store := newFoodStore(t)
	ctx := context.Background()

	page, err := store.Search(ctx, foodParams("pudding", 1, 10))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	got := page.Rows[0].Serving
	if len(got) != 2 || got[0] != "1 cup" || got[1] != "100 g" {
		t.Errorf("serving = %v, want [1 cup, 100 g]", got)
	}

	// NULL and malformed serving columns both assemble to an empty slice.
	page, err = store.Search(ctx, foodParams("soup chicken", 1, 10))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Rows[0].Serving == nil || len(page.Rows[0].Serving) != 0 {
		t.Errorf("NULL serving = %v, want []", page.Rows[0].Serving)
	}

	page, err = store.Search(ctx, foodParams("fried", 1, 10))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Rows[0].Serving) != 0 {
		t.Errorf("malformed serving = %v, want []", page.Rows[0].Serving)
	}
}

func TestFoodImageURLOverride(t *testing.T) {
	store, err := NewFoodStore(createFoodDB(t), Options{ImageURL: "https://cdn.example.com/food.png"})
	if err != nil {
		t.Fatalf("opening food store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing food store: %v", err)
		}
	}()

	page, err := store.Search(context.Background(), foodParams("pudding", 1, 10))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Rows[0].ImageURL != "https://cdn.example.com/food.png" {
		t.Errorf("image_url = %q", page.Rows[0].ImageURL)
	}
}
