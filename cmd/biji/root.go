package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
)

var (
	verbose    bool
	dbPath     string
	configPath string

	// fileConfig is the loaded biji.yaml, if any.
	fileConfig biji.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "biji",
	Short: "Offline notes and medical profile in a single local database",
	Long: `Biji keeps your notes and a medical profile in one local SQLite file.
Every change is written in its own transaction and the view is reloaded from
the store afterwards, so what you see is always what is stored.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadFileConfig(); err != nil {
			return err
		}

		level, err := fileConfig.Level()
		if err != nil {
			return err
		}
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (default biji.db, or database from biji.yaml)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: nearest biji.yaml)")
}

// loadFileConfig reads --config, or the nearest biji.yaml when not given.
func loadFileConfig() error {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		found, err := biji.FindConfig(wd)
		if err != nil {
			return nil
		}
		path = found
	}

	cfg, err := biji.LoadConfig(path)
	if err != nil {
		return err
	}
	fileConfig = cfg
	slog.Debug("config loaded", "path", path)
	return nil
}

// openApp opens the database selected by flags and config.
func openApp(ctx context.Context, extra ...biji.Option) (*biji.App, error) {
	path := dbPath
	if path == "" {
		path = fileConfig.Database
	}
	if path == "" {
		path = "biji.db"
	}

	opts := []biji.Option{biji.WithLogger(slog.Default())}
	opts = append(opts, fileConfig.Options()...)
	opts = append(opts, extra...)

	return biji.New(ctx, path, opts...)
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *biji.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	return fn(ctx, a)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}
