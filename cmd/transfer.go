package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/allot/internal/alloc"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the portfolio record as JSON",
	Long:  "Write the stored portfolio record to file, or to stdout when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the portfolio with a JSON record",
	Long: "Load a record written by `allot export` (or the browser app's saved data)\n" +
		"and replace the current portfolio with it. Use - to read stdin.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	return withSession(func(sess *alloc.Session) error {
		data, err := alloc.Encode(sess.Record())
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if len(args) == 0 || args[0] == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "  Exported %d items to %s\n", len(sess.Items()), args[0])
		return nil
	})
}

func runImport(_ *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}

	rec, err := alloc.Decode(data)
	if err != nil {
		return err
	}

	return withSession(func(sess *alloc.Session) error {
		n, err := sess.Restore(alloc.Deserialize(rec))
		if err != nil {
			return err
		}
		fmt.Printf("  Imported %d items\n", len(sess.Items()))
		if n > 0 {
			log.Warn().Int("count", n).Msg("reassigned duplicate or missing item ids")
			fmt.Printf("  Reassigned %d duplicate or missing ids\n", n)
		}
		return nil
	})
}
