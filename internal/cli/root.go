// Package cli implements the signal-memory CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/signal-memory/internal/config"
	"github.com/rcliao/signal-memory/internal/keywords"
	"github.com/rcliao/signal-memory/internal/learning"
	"github.com/rcliao/signal-memory/internal/logging"
	"github.com/rcliao/signal-memory/internal/severity"
	"github.com/rcliao/signal-memory/internal/store"
)

var (
	dbPath     string
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "signal-memory",
	Short: "Issue signal extraction and adaptive suggestions",
	Long:  "Turns advisory text into severity-ranked issues and learns keyword → response patterns from conversations. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SIGNAL_MEMORY_DB, config db, or ~/.signal-memory/signal.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.signal-memory/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("SIGNAL_MEMORY_DB"); env != "" {
		return env
	}
	if cfg != nil && cfg.DB != "" {
		return cfg.DB
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".signal-memory", "signal.db")
}

// app bundles what a command needs. close must be deferred by the caller.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *store.SQLiteStore
	controller *learning.Controller
	dbPath     string
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	path := getDBPath(cfg)
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	opts := []learning.Option{
		learning.WithOptions(cfg.LearningOptions()),
		learning.WithExtractor(keywords.New(cfg.KeywordOptions())),
	}
	if cfg.Learning.Journal {
		opts = append(opts, learning.WithJournal(s))
	}
	c := learning.New(s, logger.Named("learning"), opts...)
	c.Load(ctx)

	return &app{cfg: cfg, logger: logger, store: s, controller: c, dbPath: path}, nil
}

// close waits for an in-flight retrain so its snapshot is written before exit.
func (a *app) close(ctx context.Context) {
	if err := a.controller.Close(ctx); err != nil {
		a.logger.Warn("retrain still running at exit", zap.Error(err))
	}
	a.store.Close()
	a.logger.Sync()
}

func newClassifier() (*severity.Classifier, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return severity.NewClassifier(cfg.PhraseTable()), nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
