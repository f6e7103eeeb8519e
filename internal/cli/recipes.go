package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/poku-e/kitchen/internal/cookbook"
	"github.com/poku-e/kitchen/internal/datasync"
	"github.com/poku-e/kitchen/internal/model"
	"github.com/poku-e/kitchen/internal/report"
	"github.com/poku-e/kitchen/internal/tui"
	"github.com/poku-e/kitchen/internal/view"
)

// NewRecipesCommand returns the root of the recipes binary. Without a
// subcommand it opens the recipe manager.
func NewRecipesCommand(opts Options) *cobra.Command {
	root, a := newRoot("recipes", opts, "recipes", "Manage burger recipes",
		`Create, edit and delete recipes stored on the burger backend.

Run without arguments to open the interactive recipe manager.`)
	root.RunE = a.runRecipesTUI

	root.AddCommand(
		&cobra.Command{
			Use:         "tui",
			Short:       "Open the interactive recipe manager",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{interactive: "true"},
			RunE:        a.runRecipesTUI,
		},
		a.recipesListCmd(),
		a.recipesShowCmd(),
		a.recipesAddCmd(),
		a.recipesEditCmd(),
		a.recipesDeleteCmd(),
		a.recipesExportCmd(),
		a.recipesSuggestCmd(),
		a.recipesCookableCmd(),
	)
	return root
}

func (a *app) recipes() *datasync.Recipes {
	return datasync.NewRecipes(a.api, a.logger)
}

func (a *app) runRecipesTUI(cmd *cobra.Command, args []string) error {
	return tui.RunRecipes(cmd.Context(), a.recipes(), a.styles(), a.logger)
}

// findRecipe loads the list and picks id from it.
func (a *app) findRecipe(cmd *cobra.Command, store *datasync.Recipes, id string) (model.Recipe, error) {
	if _, err := store.List(cmd.Context()); err != nil {
		return model.Recipe{}, err
	}
	r, ok := store.Find(id)
	if !ok {
		return model.Recipe{}, fmt.Errorf("recipe %q not found", id)
	}
	return r, nil
}

func (a *app) recipesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := a.recipes().List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recipes) == 0 {
				fmt.Fprintln(out, "No recipes yet.")
				return nil
			}
			for _, c := range view.RecipeCards(recipes) {
				fmt.Fprintf(out, "%s\t%s\n", c.ID, c.Title)
				if c.Summary != "" {
					fmt.Fprintf(out, "\t%s\n", c.Summary)
				}
			}
			return nil
		},
	}
}

func (a *app) recipesShowCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.findRecipe(cmd, a.recipes(), args[0])
			if err != nil {
				return err
			}
			rendered, err := view.RenderMarkdown(view.RecipeMarkdown(r), a.cfg.UI.Theme, width)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "wrap output at this many columns")
	return cmd
}

// parseIngredients turns "name:quantity:unit" flags into form lines. The
// name may itself contain colons.
func parseIngredients(flags []string) ([]view.IngredientLine, error) {
	lines := make([]view.IngredientLine, 0, len(flags))
	for _, s := range flags {
		parts := strings.Split(s, ":")
		if len(parts) < 3 {
			return nil, fmt.Errorf("ingredient %q: want name:quantity:unit", s)
		}
		n := len(parts)
		lines = append(lines, view.IngredientLine{
			Name:     strings.Join(parts[:n-2], ":"),
			Quantity: parts[n-2],
			Unit:     parts[n-1],
		})
	}
	return lines, nil
}

func (a *app) recipesAddCmd() *cobra.Command {
	var name string
	var ingredients []string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a recipe",
		Example: `  recipes add --name Cheeseburger \
    --ingredient "Bun:1:pcs" --ingredient "Beef patty:150:g" --ingredient "Cheddar:2:slices"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := parseIngredients(ingredients)
			if err != nil {
				return err
			}
			recipe, err := view.RecipeForm{ProductName: name, Lines: lines}.Recipe()
			if err != nil {
				return err
			}
			store := a.recipes()
			if _, err := store.Save(cmd.Context(), "", recipe); err != nil {
				return err
			}
			a.logger.Info("Recipe created", zap.String("product", recipe.ProductName), zap.Int("ingredients", len(recipe.Ingredients)))
			fmt.Fprintf(cmd.OutOrStdout(), "Created recipe %s\n", recipe.ProductName)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringArrayVarP(&ingredients, "ingredient", "i", nil, "ingredient as name:quantity:unit (repeatable)")
	return cmd
}

func (a *app) recipesEditCmd() *cobra.Command {
	var name string
	var ingredients []string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a recipe's name or replace its ingredients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.recipes()
			current, err := a.findRecipe(cmd, store, args[0])
			if err != nil {
				return err
			}
			form := view.RecipeFormFrom(current)
			if cmd.Flags().Changed("name") {
				form.ProductName = name
			}
			if cmd.Flags().Changed("ingredient") {
				if form.Lines, err = parseIngredients(ingredients); err != nil {
					return err
				}
			}
			recipe, err := form.Recipe()
			if err != nil {
				return err
			}
			if _, err := store.Save(cmd.Context(), current.ID, recipe); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated recipe %s\n", current.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new product name")
	cmd.Flags().StringArrayVarP(&ingredients, "ingredient", "i", nil, "replacement ingredient as name:quantity:unit (repeatable)")
	return cmd
}

func (a *app) recipesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.recipes().Remove(cmd.Context(), args[0], confirmer(cmd, yes))
			return removed(cmd, "recipe", args[0], err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) recipesExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all recipes to a .csv, .xlsx or .html file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := a.recipes().List(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.ExportRecipes(out, recipes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d recipes to %s\n", len(recipes), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) recipesSuggestCmd() *cobra.Command {
	var have string
	cmd := &cobra.Command{
		Use:     "suggest",
		Short:   "List recipes that use all of the given ingredients",
		Example: `  recipes suggest --have "bun, beef patty; cheddar"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := a.recipes().List(cmd.Context())
			if err != nil {
				return err
			}
			ix := cookbook.New(recipes)
			mapped, unknown := ix.Map(cookbook.SplitList(have))
			out := cmd.OutOrStdout()
			if len(unknown) > 0 {
				fmt.Fprintf(out, "Unknown ingredients: %s\n", strings.Join(unknown, ", "))
			}
			if len(mapped) == 0 {
				return fmt.Errorf("no known ingredients in %q", have)
			}
			fmt.Fprintf(out, "Matched: %s\n", strings.Join(mapped, ", "))
			found := ix.Using(mapped)
			if len(found) == 0 {
				fmt.Fprintln(out, "No recipe uses all of them.")
				return nil
			}
			for _, r := range found {
				fmt.Fprintf(out, "%s\t%s\n", r.ID, r.ProductName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&have, "have", "", "ingredients, separated by commas or semicolons")
	_ = cmd.MarkFlagRequired("have")
	return cmd
}

func (a *app) recipesCookableCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "cookable",
		Short: "Check which recipes can be made from current stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				recipes []model.Recipe
				stock   []model.StockItem
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() (err error) {
				recipes, err = a.recipes().List(ctx)
				return err
			})
			g.Go(func() (err error) {
				stock, err = a.inventory().List(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ready := 0
			for _, p := range cookbook.New(recipes).Plan(stock) {
				if p.Ready() {
					ready++
					fmt.Fprintf(out, "ready\t%s\n", p.Recipe.ProductName)
					continue
				}
				if !all {
					continue
				}
				var why []string
				if len(p.Missing) > 0 {
					why = append(why, "missing "+strings.Join(p.Missing, ", "))
				}
				for _, s := range p.Short {
					why = append(why, fmt.Sprintf("short %s (need %s %s, have %s)", s.Name, view.Plain(s.Need), s.Unit, view.Plain(s.Have)))
				}
				fmt.Fprintf(out, "blocked\t%s: %s\n", p.Recipe.ProductName, strings.Join(why, "; "))
			}
			fmt.Fprintf(out, "%d of %d recipes ready\n", ready, len(recipes))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "also list recipes that cannot be made and why")
	return cmd
}
