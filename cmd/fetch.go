package cmd

import (
	"context"
	"fmt"

	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/quantumgrove/calosync/pkg/provision"
	"github.com/urfave/cli/v3"
)

// FetchCommand creates the fetch command
func FetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download the pre-built datasets from object storage",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if err := provision.FetchDatabases(ctx, cfg); err != nil {
				return err
			}

			fmt.Println("Datasets downloaded.")
			return nil
		},
	}
}
