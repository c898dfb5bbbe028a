package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/urfave/cli/v3"
)

// RecipeCommand creates the recipe command
func RecipeCommand() *cli.Command {
	return &cli.Command{
		Name:      "recipe",
		Usage:     "Show one recipe in full",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := strconv.Atoi(c.Args().First())
			if err != nil || id < 1 {
				return fmt.Errorf("usage: calosync recipe <id>")
			}
			return showRecipe(ctx, c.String("config"), id)
		},
	}
}

func showRecipe(ctx context.Context, configPath string, id int) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := requireDatasets(cfg); err != nil {
		return err
	}

	food, recipes, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closeStores(food, recipes)

	rec, err := recipes.ByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(rec.Title))
	fmt.Println(metaStyle.Render(fmt.Sprintf("%s | %d min | %s | countries: %s",
		rec.Category, rec.Time, rec.Difficulty, joinOrDash(rec.Countries))))
	fmt.Println()

	if len(rec.DietTypes) > 0 {
		fmt.Printf("%s %s\n\n", headerStyle.Render("Diets:"), joinOrDash(rec.DietTypes))
	}

	if len(rec.Ingredients) > 0 {
		fmt.Println(headerStyle.Render("Ingredients"))
		for _, ing := range rec.Ingredients {
			fmt.Printf("  - %s\n", ing)
		}
		fmt.Println()
	}

	if len(rec.Procedures) > 0 {
		fmt.Println(headerStyle.Render("Procedure"))
		for i, step := range rec.Procedures {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
		fmt.Println()
	}

	if len(rec.Notes) > 0 {
		fmt.Println(headerStyle.Render("Notes"))
		for _, note := range rec.Notes {
			fmt.Printf("  %s\n", note)
		}
		fmt.Println()
	}

	fmt.Println(headerStyle.Render("Nutrition"))
	if rec.ServingSize != "" {
		fmt.Printf("  serving size: %s (%d per recipe)\n", rec.ServingSize, rec.ServingsPerRecipe)
	}
	fmt.Printf("  calories: %d (%d from fat)\n", rec.Calories, rec.CaloriesFromFat)
	for _, line := range []string{
		formatNutrient("total fat", rec.TotalFat, "g"),
		formatNutrient("saturated fat", rec.SaturatedFat, "g"),
		formatNutrient("cholesterol", rec.Cholesterol, "mg"),
		formatNutrient("sodium", rec.Sodium, "mg"),
		formatNutrient("carbohydrates", rec.TotalCarbohydrates, "g"),
		formatNutrient("dietary fiber", rec.DietaryFiber, "g"),
		formatNutrient("sugars", rec.Sugars, "g"),
		formatNutrient("protein", rec.Protein, "g"),
		formatNutrient("vitamin a", rec.VitaminA, "%"),
		formatNutrient("vitamin c", rec.VitaminC, "%"),
		formatNutrient("calcium", rec.Calcium, "%"),
		formatNutrient("iron", rec.Iron, "%"),
	} {
		fmt.Print(line)
	}

	return nil
}
