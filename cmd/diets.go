package cmd

import (
	"context"
	"fmt"

	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DietsCommand creates the diets command
func DietsCommand() *cli.Command {
	return &cli.Command{
		Name:  "diets",
		Usage: "Show recipes grouped by diet type",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum recipes to show per diet",
				Value: 10,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showDiets(ctx, c.String("config"), c.Int("limit"))
		},
	}
}

func showDiets(ctx context.Context, configPath string, limit int) error {
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

	groups, err := recipes.GroupByDiet(ctx, limit)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println(noDataStyle.Render("No diet-tagged recipes in the dataset."))
		return nil
	}

	titleCaser := cases.Title(language.English)
	for _, group := range groups {
		header := fmt.Sprintf("%s (%d recipes)", titleCaser.String(group.DietType), group.RecipeCount)
		fmt.Println(headerStyle.Render(header))
		for _, r := range group.Recipes {
			fmt.Printf("  %s\n", r.Title)
			fmt.Println(metaStyle.Render(fmt.Sprintf("    #%d | %d min | %d kcal | %s", r.ID, r.Time, r.Calories, r.Difficulty)))
		}
		fmt.Println()
	}

	return nil
}
