package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/quantumgrove/calosync/pkg/api"
	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (overrides the config file)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"))
		},
	}
}

func serve(ctx context.Context, configPath, listenAddr string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}

	if err := requireDatasets(cfg); err != nil {
		return err
	}

	food, recipes, err := openStores(cfg)
	if err != nil {
		return err
	}
	apiServer := api.NewServer(food, recipes, cfg.MaxResultsPerPage)
	defer apiServer.Close()

	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      apiServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Signal handling - SIGHUP reopens the dataset stores
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	reload := func() error {
		newFood, newRecipes, err := openStores(cfg)
		if err != nil {
			return err
		}
		apiServer.SetStores(newFood, newRecipes)
		return nil
	}

	// Watch the dataset files so a fetch or manual replacement is picked up
	// without restarting.
	datasetPaths := []string{cfg.FoodDBPath(), cfg.RecipeDBPath()}
	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Warning: failed to create dataset watcher: %v", err)
	} else {
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Printf("Warning: failed to close dataset watcher: %v", err)
			}
		}()
		for _, path := range datasetPaths {
			if err := watcher.Add(path); err != nil {
				log.Printf("Warning: failed to watch dataset %s: %v", path, err)
			} else {
				log.Printf("Watching dataset for changes: %s", path)
			}
		}
	}

	fmt.Println("Server started. Press Ctrl+C to stop, send SIGHUP to reopen the datasets.")

	for {
		select {
		case err := <-serverErr:
			return fmt.Errorf("http server: %w", err)

		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reopening datasets...")
				if err := reload(); err != nil {
					log.Printf("Failed to reopen datasets: %v", err)
				} else {
					log.Println("Datasets reopened")
				}
			case syscall.SIGINT, syscall.SIGTERM:
				fmt.Println("\nShutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}

		case event, ok := <-watchEvents:
			if !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			log.Printf("Dataset changed: %s (event: %s), reopening...", event.Name, event.Op.String())

			// Downloads replace the file atomically, so re-add it to the
			// watcher once the new file exists.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(event.Name); os.IsNotExist(err) {
					log.Printf("Dataset was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(event.Name); err != nil {
					log.Printf("Warning: failed to re-watch dataset after replacement: %v", err)
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}

			if err := reload(); err != nil {
				log.Printf("Failed to reopen datasets after change: %v", err)
			} else {
				log.Println("Datasets reopened after change")
			}

		case err, ok := <-watchErrors:
			if !ok {
				continue
			}
			log.Printf("Dataset watcher error: %v", err)
		}
	}
}
