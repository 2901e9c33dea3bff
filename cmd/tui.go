package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/logger"
	"github.com/theirongolddev/allot/internal/tui"
	"github.com/theirongolddev/allot/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive portfolio editor",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	dataDir := config.DataDir(cfg)

	// Stderr belongs to the alternate screen while the program runs.
	fileLog, f, err := logger.OpenFile(dataDir, "allot.log", cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	log = fileLog
	logger.SetGlobalLogger(log)

	theme.SetActive(cfg.Display.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	sess, st, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	_, statErr := os.Stat(configPath())
	app := tui.NewApp(tui.Options{
		Session:    sess,
		Config:     cfg,
		ConfigPath: configPath(),
		DataDir:    dataDir,
		NeedSetup:  statErr != nil && len(sess.Items()) == 0,
		Logger:     log,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	sess.Close()
	if perr := sess.LastPersistError(); perr != nil {
		return fmt.Errorf("portfolio not saved: %w", perr)
	}
	return nil
}
