package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/urfave/cli/v3"
)

// FiltersCommand creates the filters command
func FiltersCommand() *cli.Command {
	return &cli.Command{
		Name:  "filters",
		Usage: "Show the filter values available in the recipe dataset",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showFilters(ctx, c.String("config"))
		},
	}
}

func showFilters(ctx context.Context, configPath string) error {
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

	inv, err := recipes.FilterInventory(ctx)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Categories"))
	fmt.Printf("  %s\n\n", joinOrDash(inv.Categories))

	fmt.Println(headerStyle.Render("Diet types"))
	fmt.Printf("  %s\n\n", joinOrDash(inv.DietTypes))

	fmt.Println(headerStyle.Render("Countries"))
	names := make([]string, 0, len(inv.Countries))
	for name := range inv.Countries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if code := inv.Countries[name]; code != nil {
			fmt.Printf("  %s (%s)\n", name, *code)
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	fmt.Println()

	if len(inv.TimeRange) == 2 {
		fmt.Println(headerStyle.Render("Time range"))
		fmt.Printf("  %d - %d min\n\n", inv.TimeRange[0], inv.TimeRange[1])
	}
	if len(inv.CaloriesRange) == 2 {
		fmt.Println(headerStyle.Render("Calories range"))
		fmt.Printf("  %d - %d kcal\n", inv.CaloriesRange[0], inv.CaloriesRange[1])
	}

	return nil
}
