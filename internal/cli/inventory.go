package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/poku-e/kitchen/internal/datasync"
	"github.com/poku-e/kitchen/internal/model"
	"github.com/poku-e/kitchen/internal/report"
	"github.com/poku-e/kitchen/internal/tui"
	"github.com/poku-e/kitchen/internal/view"
)

// NewInventoryCommand returns the root of the inventory binary. Without a
// subcommand it opens the stock manager.
func NewInventoryCommand(opts Options) *cobra.Command {
	root, a := newRoot("inventory", opts, "inventory", "Manage kitchen stock",
		`Track stock items, their costs and usage on the burger backend.

Run without arguments to open the interactive stock manager.`)
	root.RunE = a.runInventoryTUI

	root.AddCommand(
		&cobra.Command{
			Use:         "tui",
			Short:       "Open the interactive stock manager",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{interactive: "true"},
			RunE:        a.runInventoryTUI,
		},
		a.inventoryListCmd(),
		a.inventoryAddCmd(),
		a.inventoryEditCmd(),
		a.inventoryDecrementCmd(),
		a.inventoryDeleteCmd(),
		a.inventoryExportCmd(),
		a.inventoryImportCmd(),
	)
	return root
}

func (a *app) inventory() *datasync.Inventory {
	return datasync.NewInventory(a.api, a.logger)
}

func (a *app) runInventoryTUI(cmd *cobra.Command, args []string) error {
	return tui.RunInventory(cmd.Context(), a.inventory(), a.styles(), a.renderer(), a.logger)
}

func (a *app) inventoryListCmd() *cobra.Command {
	var search, order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stock table with its total value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.inventory().List(cmd.Context())
			if err != nil {
				return err
			}
			var sorter view.Sorter
			switch order {
			case "":
			case "asc":
				items = sorter.Next(items)
			case "desc":
				items = sorter.Next(sorter.Next(items))
			default:
				return fmt.Errorf("invalid --sort %q (want asc or desc)", order)
			}
			items = view.Filter(items, search)

			table := a.renderer().Table(items)
			styles := a.styles()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, tui.StockTableView{Headers: view.StockHeaders, Table: table, Cursor: -1, ShowIDs: true}.View(styles))
			fmt.Fprintln(out, styles.Total.Render("Total inventory value: "+table.Total))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only items whose name contains this text")
	cmd.Flags().StringVar(&order, "sort", "", "sort by total cost: asc or desc")
	return cmd
}

// stockFlags are the editable fields of an item, kept as raw text like the form.
type stockFlags struct {
	form view.StockForm
}

func (f *stockFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.form.Name, "name", "", "item name")
	cmd.Flags().StringVar(&f.form.Category, "category", "", "category")
	cmd.Flags().StringVar(&f.form.Unit, "unit", string(model.UnitPieces), "unit of measure")
	cmd.Flags().StringVar(&f.form.Quantity, "quantity", "0", "quantity on hand")
	cmd.Flags().StringVar(&f.form.UnitCost, "unit-cost", "0", "cost of one unit")
}

// over returns base with every flag the user set applied on top.
func (f *stockFlags) over(cmd *cobra.Command, base view.StockForm) view.StockForm {
	set := cmd.Flags().Changed
	if set("name") {
		base.Name = f.form.Name
	}
	if set("category") {
		base.Category = f.form.Category
	}
	if set("unit") {
		base.Unit = f.form.Unit
	}
	if set("quantity") {
		base.Quantity = f.form.Quantity
	}
	if set("unit-cost") {
		base.UnitCost = f.form.UnitCost
	}
	return base
}

func (a *app) inventoryAddCmd() *cobra.Command {
	var flags stockFlags
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a stock item",
		Example: `  inventory add --name Ketchup --category Sauce --unit bottles --quantity 6 --unit-cost 12000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := flags.form.Item()
			if err != nil {
				return err
			}
			if _, err := a.inventory().Save(cmd.Context(), "", item); err != nil {
				return err
			}
			a.logger.Info("Item created", zap.String("name", item.Name), zap.String("total", item.TotalCost.String()))
			fmt.Fprintf(cmd.OutOrStdout(), "Created item %s (total %s)\n", item.Name, a.renderer().Format.Money(item.TotalCost))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) inventoryEditCmd() *cobra.Command {
	var flags stockFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a stock item; the total is recomputed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.inventory()
			if _, err := store.List(cmd.Context()); err != nil {
				return err
			}
			current, ok := store.Find(args[0])
			if !ok {
				return fmt.Errorf("item %q not found", args[0])
			}
			item, err := flags.over(cmd, view.StockFormFrom(current)).Item()
			if err != nil {
				return err
			}
			if _, err := store.Save(cmd.Context(), current.ID, item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated item %s\n", current.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) inventoryDecrementCmd() *cobra.Command {
	var amount string
	cmd := &cobra.Command{
		Use:   "decrement <id>",
		Short: "Record usage of a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := view.ParseAmount(amount)
			items, err := a.inventory().Decrement(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			for _, it := range items {
				if it.ID == args[0] {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s left\n", it.Name, view.Plain(it.Quantity), it.Unit)
					return nil
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Decremented %s by %d\n", args[0], n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "n", "1", "amount to take out; invalid or non-positive means 1")
	return cmd
}

func (a *app) inventoryDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.inventory().Remove(cmd.Context(), args[0], confirmer(cmd, yes))
			return removed(cmd, "item", args[0], err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) inventoryExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stock table to a .csv, .xlsx or .html file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.inventory().List(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.ExportStock(out, a.renderer(), items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d items to %s\n", len(items), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) inventoryImportCmd() *cobra.Command {
	var from, selector string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create stock items from a .csv, .xlsx or .html file or an http(s) page",
		Example: `  inventory import --from stock.xlsx
  inventory import --from https://example.com/stock.html --selector "#inventory"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sheet report.Sheet
			var err error
			if report.IsRemote(from) {
				sheet, err = report.FetchStockPage(cmd.Context(), a.httpClient(), from, selector)
			} else {
				sheet, err = report.ReadStockFile(from, selector)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, skip := range sheet.Skipped {
				fmt.Fprintf(out, "skipped %v\n", skip)
			}
			if dryRun {
				for _, rec := range sheet.Records {
					fmt.Fprintf(out, "row %d: %s, %s %s at %s\n", rec.Line, rec.Item.Name,
						view.Plain(rec.Item.Quantity), rec.Item.Unit, view.Plain(rec.Item.UnitCost))
				}
				fmt.Fprintf(out, "%d rows readable, nothing written\n", len(sheet.Records))
				return nil
			}

			res := report.Import(cmd.Context(), a.inventory(), sheet, a.logger)
			for _, f := range res.Failed {
				fmt.Fprintf(out, "failed %v\n", f)
			}
			fmt.Fprintf(out, "Imported %d items, %d failed, %d skipped\n", res.Created, len(res.Failed), len(sheet.Skipped))
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d of %d rows failed to import", len(res.Failed), len(sheet.Records))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "source file or URL")
	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector of the table in HTML input (default: first table)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only show what would be imported")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
