// Command mindweave runs the persistent thinking workspace: an MCP
// server over stdio backed by durable session storage, with maintenance
// subcommands for operating on the stored sessions directly.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindweave-dev/mindweave/pkg/config"
	"github.com/mindweave-dev/mindweave/pkg/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "mindweave",
	Short: "Persistent thinking workspace over MCP",
	Long: `Mindweave stores reasoning as append-only thought logs in durable
sessions, reachable from any conversation through MCP tools. Thoughts can
declare relationships to earlier thoughts, and reasoning chains are
reconstructed on demand.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mindweave version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mindweave %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("MINDWEAVE_CONFIG"), "path to YAML config file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// loadConfig reads and validates the configuration for a subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openBackend builds the configured storage backend.
func openBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return store.NewRedisBackend(store.RedisConfig{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Prefix:   cfg.Storage.RedisPrefix,
		})
	default:
		return store.NewFileBackend(cfg.Storage.Dir)
	}
}

func main() {
	// Stdout carries MCP protocol frames when serving; all diagnostics
	// go to stderr.
	log.SetOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
