package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/cli"
	"github.com/theirongolddev/allot/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagFundsClear bool

	flagItemName     string
	flagItemCategory string
	flagItemColor    string
	flagItemPercent  float64
	flagItemAmount   float64
)

var fundsCmd = &cobra.Command{
	Use:   "funds [amount]",
	Short: "Show or set total investable funds",
	Long: "With no argument, print total funds. With an amount, set them and\n" +
		"recompute every item amount from its share.",
	Args: cobra.MaximumNArgs(1),
	RunE: runFunds,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a line item",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var setCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Edit a line item",
	Long: "Change the given fields of one item. --amount and --percent are\n" +
		"mutually exclusive; whichever is given drives the other.",
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"remove"},
	Short:   "Remove line items",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Replace all items with the preset portfolio",
	Args:  cobra.NoArgs,
	RunE:  runDefault,
}

func init() {
	fundsCmd.Flags().BoolVar(&flagFundsClear, "clear", false, "Unset total funds")

	addCmd.Flags().StringVar(&flagItemName, "name", "", "Item name")
	addCmd.Flags().StringVar(&flagItemCategory, "category", "", "Category: "+categoryList())
	addCmd.Flags().StringVar(&flagItemColor, "color", "", "Hex color (default: random palette swatch)")
	addCmd.Flags().Float64Var(&flagItemPercent, "percent", 0, "Share of total funds, 0-100")

	setCmd.Flags().StringVar(&flagItemName, "name", "", "New name")
	setCmd.Flags().StringVar(&flagItemCategory, "category", "", "New category: "+categoryList())
	setCmd.Flags().StringVar(&flagItemColor, "color", "", "New hex color")
	setCmd.Flags().Float64Var(&flagItemPercent, "percent", 0, "New share of total funds, 0-100")
	setCmd.Flags().Float64Var(&flagItemAmount, "amount", 0, "New amount")
	setCmd.MarkFlagsMutuallyExclusive("percent", "amount")

	rootCmd.AddCommand(fundsCmd, addCmd, setCmd, rmCmd, defaultCmd)
}

func categoryList() string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func runFunds(_ *cobra.Command, args []string) error {
	return withSession(func(sess *alloc.Session) error {
		switch {
		case flagFundsClear:
			if err := sess.SetTotalFunds(""); err != nil {
				return err
			}
		case len(args) == 1:
			if err := sess.SetTotalFunds(args[0]); err != nil {
				return err
			}
		}

		raw, v, set := sess.TotalFunds()
		if !set {
			fmt.Println("  Total funds: not set")
			return nil
		}
		log.Debug().Str("raw", raw).Msg("total funds")
		fmt.Printf("  Total funds: %s\n", cli.FormatMoney(v, cfg.Display.Currency))
		return nil
	})
}

func runAdd(_ *cobra.Command, _ []string) error {
	f := alloc.NewItem{
		Name:       flagItemName,
		Color:      flagItemColor,
		Percentage: flagItemPercent,
	}
	if flagItemCategory != "" {
		c, err := parseCategory(flagItemCategory)
		if err != nil {
			return err
		}
		f.Category = c
	}

	return withSession(func(sess *alloc.Session) error {
		id, err := sess.AddItem(f)
		if err != nil {
			return err
		}
		item, _ := sess.Item(id)
		fmt.Printf("  Added %s %s (%s, %s)\n", id, item.DisplayName(),
			cli.FormatMoney(item.Amount, cfg.Display.Currency), cli.FormatPercent(item.Percentage))
		return nil
	})
}

func runSet(c *cobra.Command, args []string) error {
	id := args[0]
	flags := c.Flags()

	var p alloc.Patch
	if flags.Changed("name") {
		p.Name = &flagItemName
	}
	if flags.Changed("amount") {
		p.Amount = &flagItemAmount
	}
	if flags.Changed("percent") {
		p.Percentage = &flagItemPercent
	}
	if flags.Changed("color") {
		p.Color = &flagItemColor
	}
	if flags.Changed("category") {
		cat, err := parseCategory(flagItemCategory)
		if err != nil {
			return err
		}
		p.Category = &cat
	}
	if p.IsEmpty() {
		return fmt.Errorf("nothing to change; pass at least one of --name, --amount, --percent, --category, --color")
	}

	return withSession(func(sess *alloc.Session) error {
		if err := sess.UpdateItem(id, p); err != nil {
			return err
		}
		item, _ := sess.Item(id)
		fmt.Printf("  %s %s: %s, %s\n", id, item.DisplayName(),
			cli.FormatMoney(item.Amount, cfg.Display.Currency), cli.FormatPercent(item.Percentage))
		if sess.OverAllocated(id) {
			fmt.Println("  Warning: allocations now exceed total funds.")
		}
		return nil
	})
}

func runRemove(_ *cobra.Command, args []string) error {
	return withSession(func(sess *alloc.Session) error {
		for _, id := range args {
			if err := sess.RemoveItem(id); err != nil {
				return err
			}
			fmt.Printf("  Removed %s\n", id)
		}
		return nil
	})
}

func runDefault(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *alloc.Session) error {
		ids, err := sess.AddDefaultPortfolio()
		if err != nil {
			return err
		}
		fmt.Printf("  Loaded default portfolio (%d items)\n", len(ids))
		printPortfolio(sess.Snapshot(), sess.OverAllocated)
		return nil
	})
}

func parseCategory(s string) (model.Category, error) {
	c, ok := model.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("%w: %q (want one of %s)", alloc.ErrInvalidCategory, s, categoryList())
	}
	return c, nil
}
