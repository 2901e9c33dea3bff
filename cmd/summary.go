package cmd

import (
	"fmt"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/cli"

	"github.com/spf13/cobra"
)

const barWidth = 48

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals, line items and the allocation chart",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *alloc.Session) error {
		printPortfolio(sess.Snapshot(), sess.OverAllocated)
		return nil
	})
}

func printPortfolio(snap alloc.Snapshot, over func(id string) bool) {
	cur := cfg.Display.Currency

	fmt.Println()
	fmt.Println(cli.RenderTitle("PORTFOLIO  " + cfg.General.RecordKey))
	fmt.Println()

	if !snap.FundsSet {
		fmt.Println("  Total funds are not set. Run `allot funds <amount>` first.")
		fmt.Println()
	}

	fmt.Print(cli.RenderSummary(snap.Summary, cur))
	fmt.Println()

	if len(snap.Items) == 0 {
		fmt.Println("  No line items. Add one with `allot add` or load the preset with `allot default`.")
		return
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: cli.ItemHeaders,
		Rows:    cli.ItemRows(snap.Items, over, cur),
	}))
	fmt.Println()
	fmt.Println("  " + cli.RenderShareBar(snap.Chart, barWidth))
	fmt.Println()
	fmt.Print(cli.RenderLegend(snap.Chart, cur))
}
