package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/poku-e/kitchen/internal/model"
)

// RecipeCard is one rendered recipe.
type RecipeCard struct {
	ID      string
	Title   string
	Summary string // "Bun (1 pcs), Beef (0.15 kg)"
}

// RecipeCards renders one card per recipe, in collection order.
func RecipeCards(recipes []model.Recipe) []RecipeCard {
	cards := make([]RecipeCard, 0, len(recipes))
	for _, r := range recipes {
		cards = append(cards, RecipeCard{
			ID:      r.ID,
			Title:   r.ProductName,
			Summary: IngredientSummary(r.Ingredients),
		})
	}
	return cards
}

func IngredientSummary(ings []model.Ingredient) string {
	parts := make([]string, 0, len(ings))
	for _, i := range ings {
		parts = append(parts, fmt.Sprintf("%s (%s %s)", i.Name, Plain(i.Quantity), i.Unit))
	}
	return strings.Join(parts, ", ")
}

// RecipeMarkdown describes a single recipe as a markdown card.
func RecipeMarkdown(r model.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.ProductName)
	if r.ID != "" {
		fmt.Fprintf(&sb, "`%s`\n\n", r.ID)
	}
	if len(r.Ingredients) == 0 {
		sb.WriteString("_No ingredients._\n")
		return sb.String()
	}
	sb.WriteString("| Ingredient | Quantity | Unit |\n|---|---:|---|\n")
	for _, i := range r.Ingredients {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", escapeCell(i.Name), Plain(i.Quantity), i.Unit)
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders md for a terminal. style is a glamour standard
// style name ("dark", "light", "notty"); "auto" or "" picks one from the terminal.
func RenderMarkdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}
