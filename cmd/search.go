package cmd

import (
	"context"
	"fmt"

	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/quantumgrove/calosync/pkg/query"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the food nutrition or recipe dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query",
			},
			&cli.BoolFlag{
				Name:  "recipes",
				Usage: "Search recipes instead of food items",
			},
			&cli.StringSliceFlag{
				Name:  "category",
				Usage: "Filter recipes by category (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "country",
				Usage: "Filter recipes by country (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "diet",
				Usage: "Filter recipes by diet type (repeatable)",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Result page",
				Value: query.DefaultPage,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Results per page",
				Value: query.DefaultResultsPerPage,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			params := query.SearchParams{
				Query: c.String("query"),
				Filters: query.Filters{
					Categories: c.StringSlice("category"),
					Countries:  c.StringSlice("country"),
					DietTypes:  c.StringSlice("diet"),
				},
				Page:           c.Int("page"),
				ResultsPerPage: c.Int("limit"),
			}
			return searchData(ctx, c.String("config"), params, c.Bool("recipes"))
		},
	}
}

func searchData(ctx context.Context, configPath string, params query.SearchParams, searchRecipes bool) error {
	if params.Page < 1 {
		params.Page = query.DefaultPage
	}
	if params.ResultsPerPage < 1 {
		params.ResultsPerPage = query.DefaultResultsPerPage
	}

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

	if searchRecipes {
		page, err := recipes.Search(ctx, params)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("Recipes (%d matches, page %d)", page.TotalRows, page.Page)))
		for i, r := range page.Rows {
			fmt.Printf("%d. %s\n", i+1, r.Title)
			fmt.Println(metaStyle.Render(fmt.Sprintf("   #%d | %d min | %d kcal", r.ID, r.Time, r.Calories)))
		}
		return nil
	}

	page, err := food.Search(ctx, params)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Food items (%d matches, page %d)", page.TotalRows, page.Page)))
	for i, f := range page.Rows {
		fmt.Printf("%d. %s\n", i+1, f.Name)
		fmt.Println(metaStyle.Render(fmt.Sprintf("   #%d | %s | %.0f kcal | %.1fg protein | serving: %s",
			f.ID, f.Country, f.Calories, f.Protein, joinOrDash(f.Serving))))
	}
	return nil
}
