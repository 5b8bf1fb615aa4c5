package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"newswire-api/engine"
	"newswire-api/infrastructure/logger/structured"
	"newswire-api/pkg/config"
)

var (
	flagSourcesFile  string
	flagCacheBackend string
	flagCacheDir     string
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "newswire",
	Short:         "Fetch and archive news from configured sources",
	Long:          "newswire fetches the configured news pages, extracts titles, links and articles, and writes daily markdown archives.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSourcesFile, "sources", "", "YAML sources file (default: SOURCES_FILE or built-in sources)")
	rootCmd.PersistentFlags().StringVar(&flagCacheBackend, "cache-backend", "", "persistent cache backend: file, sqlite, redis or none")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "directory for the file cache")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log progress to stderr")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() error {
	// A missing .env is fine; the process environment still applies
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads the environment and applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if flagSourcesFile != "" {
		cfg.SourcesFile = flagSourcesFile
	}
	if flagCacheBackend != "" {
		cfg.Cache.Backend = flagCacheBackend
	}
	if flagCacheDir != "" {
		cfg.Cache.Dir = flagCacheDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds an engine client for one-shot use: no schedules, logs on stderr
func newClient(cfg *config.Config, extra ...engine.Option) (*engine.Client, error) {
	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	logger := structured.New(structured.Options{
		Level:  level,
		Format: "text",
		Output: os.Stderr,
	})

	opts, err := engine.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts = append(opts, engine.WithSchedules("", ""))
	opts = append(opts, extra...)
	return engine.NewClient(opts...)
}

// withClient runs fn with a fresh client and closes it afterwards
func withClient(fn func(*engine.Client) error, extra ...engine.Option) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg, extra...)
	if err != nil {
		return err
	}

	runErr := fn(client)
	if err := client.Close(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
