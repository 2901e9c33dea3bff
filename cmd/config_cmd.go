package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	path := configPath()
	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dataDir := config.DataDir(cfg)
	fmt.Println("  [General]")
	fmt.Printf("    Store:      %s\n", cfg.General.Store)
	fmt.Printf("    Data dir:   %s\n", dataDir)
	fmt.Printf("    Record key: %s\n", cfg.General.RecordKey)
	fmt.Println()

	fmt.Println("  [Display]")
	fmt.Printf("    Currency: %s\n", cfg.Display.Currency)
	fmt.Printf("    Theme:    %s\n", cfg.Display.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Pretty: %v\n", cfg.Log.Pretty)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	st, err := store.Open(cfg.General, dataDir)
	if err != nil {
		fmt.Printf("  Stored portfolios: unavailable (%v)\n", err)
		return nil
	}
	defer func() { _ = st.Close() }()

	switch b := st.(type) {
	case *store.FileStore:
		fmt.Printf("  Data file: %s\n", b.Path())
	case *store.SQLiteStore:
		fmt.Printf("  Database: %s\n", b.Path())
		if n, err := b.ItemCount(); err == nil {
			fmt.Printf("  Line items stored: %d\n", n)
		}
	}

	keys, err := st.Keys()
	switch {
	case err != nil:
		fmt.Printf("  Stored portfolios: unavailable (%v)\n", err)
	case len(keys) == 0:
		fmt.Println("  Stored portfolios: none")
	default:
		fmt.Println("  Stored portfolios:")
		for _, k := range keys {
			marker := " "
			if k == cfg.General.RecordKey {
				marker = "*"
			}
			fmt.Printf("   %s %s\n", marker, k)
		}
	}
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := configPath()
	if err := config.SaveFile(path, cfg); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", path)
	return nil
}
