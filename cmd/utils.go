package cmd

import (
	"fmt"
	"os"

	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/quantumgrove/calosync/pkg/storage"
)

// requireDatasets verifies both dataset files exist before a command tries to
// open them, so the user gets a hint instead of a driver error.
func requireDatasets(cfg *config.Config) error {
	for _, path := range []string{cfg.FoodDBPath(), cfg.RecipeDBPath()} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("dataset %s not found; run 'calosync fetch' to download the datasets", path)
		} else if err != nil {
			return fmt.Errorf("checking dataset %s: %w", path, err)
		}
	}
	return nil
}

// openStores opens both dataset stores with the configured options.
func openStores(cfg *config.Config) (*storage.FoodStore, *storage.RecipeStore, error) {
	codes, err := cfg.LoadCountryCodes()
	if err != nil {
		return nil, nil, fmt.Errorf("loading country codes: %w", err)
	}

	opts := storage.Options{
		QueryTimeout: cfg.QueryTimeout.Duration,
		ImageURL:     cfg.ImageURL,
		CountryCodes: codes,
	}

	food, err := storage.NewFoodStore(cfg.FoodDBPath(), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("opening food store: %w", err)
	}
	recipes, err := storage.NewRecipeStore(cfg.RecipeDBPath(), opts)
	if err != nil {
		if cerr := food.Close(); cerr != nil {
			fmt.Printf("Warning: failed to close food store: %v\n", cerr)
		}
		return nil, nil, fmt.Errorf("opening recipe store: %w", err)
	}

	return food, recipes, nil
}

func closeStores(food *storage.FoodStore, recipes *storage.RecipeStore) {
	if err := food.Close(); err != nil {
		fmt.Printf("Warning: failed to close food store: %v\n", err)
	}
	if err := recipes.Close(); err != nil {
		fmt.Printf("Warning: failed to close recipe store: %v\n", err)
	}
}
