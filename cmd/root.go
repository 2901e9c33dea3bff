// Package cmd implements the allot CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/logger"
	"github.com/theirongolddev/allot/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagDataDir  string
	flagStore    string
	flagKey      string
	flagLogLevel string
	flagQuiet    bool
)

// Populated by PersistentPreRunE for every command.
var (
	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "allot",
	Short: "Plan how investable funds split across holdings",
	Long: "Split a pool of investable funds into named line items, each held as an amount\n" +
		"and a share of the total, and keep an eye on what is left to allocate.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Portfolio data directory")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Storage backend: file or sqlite")
	rootCmd.PersistentFlags().StringVarP(&flagKey, "key", "k", "", "Record key to load and save")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

// setup loads config, applies flag overrides and builds the logger.
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.LoadFile(configPath())
	if err != nil {
		return err
	}
	cfg = loaded

	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagStore != "" {
		cfg.General.Store = flagStore
	}
	if flagKey != "" {
		cfg.General.RecordKey = flagKey
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagQuiet {
		cfg.Log.Level = "error"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	return nil
}

// openSession opens the configured store and restores the stored record
// into a new session that saves back to it after every edit. A missing record
// yields an empty session; a corrupt one is logged and replaced on the next
// save.
func openSession() (*alloc.Session, store.Store, error) {
	dataDir := config.DataDir(cfg)
	st, err := store.Open(cfg.General, dataDir)
	if err != nil {
		return nil, nil, err
	}

	sess := alloc.NewSession(
		alloc.WithPersister(st, cfg.General.RecordKey),
		alloc.WithLogger(log),
	)

	rec, err := st.Load(cfg.General.RecordKey)
	switch {
	case errors.Is(err, store.ErrNoRecord):
		log.Debug().Str("key", cfg.General.RecordKey).Msg("no stored portfolio, starting empty")
		return sess, st, nil
	case errors.Is(err, alloc.ErrCorruptRecord):
		log.Warn().Err(err).Msg("stored portfolio is unreadable, starting empty")
		return sess, st, nil
	case err != nil:
		_ = st.Close()
		return nil, nil, fmt.Errorf("loading portfolio: %w", err)
	}

	if _, err := sess.Restore(alloc.Deserialize(rec)); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	log.Debug().
		Str("key", cfg.General.RecordKey).
		Str("store", cfg.General.Store).
		Int("items", len(rec.Projects)).
		Msg("restored portfolio")
	return sess, st, nil
}

// withSession runs fn against a restored session and closes the store after.
func withSession(fn func(sess *alloc.Session) error) error {
	sess, st, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	defer sess.Close()

	if err := fn(sess); err != nil {
		return err
	}
	if perr := sess.LastPersistError(); perr != nil {
		return fmt.Errorf("portfolio not saved: %w", perr)
	}
	return nil
}
