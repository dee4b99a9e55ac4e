package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/container"
	"pokedex/catalog/internal/service"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Browse the creature catalog",
	Long:          `Catalog pages through a PokeAPI-compatible catalog, shows enriched details and searches by name.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(browseCmd)
}

// runSession loads configuration, wires the container and runs session
// against the service until it returns or the process is interrupted.
func runSession(session func(ctx context.Context, cfg *config.Config, svc *service.Service) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ConfigureLogging(cfg.Log); err != nil {
		return err
	}
	log.Debug("Configuration loaded successfully")

	app, err := container.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return app.Run(ctx, func(ctx context.Context, svc *service.Service) error {
		return session(ctx, cfg, svc)
	})
}
