package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/poku-e/kitchen/internal/datasync"
	"github.com/poku-e/kitchen/internal/model"
	"github.com/poku-e/kitchen/internal/view"
)

const (
	recipesHelp    = "↑/↓ move • a add • e edit • d delete • r reload • q quit"
	recipeFormHelp = "tab next field • ctrl+n add ingredient • ctrl+x remove ingredient • enter save • esc cancel"
)

var unitHint = strings.Join(func() []string {
	out := make([]string, len(model.Units))
	for i, u := range model.Units {
		out[i] = string(u)
	}
	return out
}(), "/")

// RecipesModel is the recipe manager screen.
type RecipesModel struct {
	ctx    context.Context
	store  *datasync.Recipes
	styles Styles
	logger *zap.Logger

	recipes []model.Recipe
	cards   []view.RecipeCard
	cursor  int

	dialog  view.Dialog[model.Recipe]
	form    fields
	formErr string

	confirmID string
	loading   bool
	busy      bool
	spinner   spinner.Model
}

func NewRecipesModel(ctx context.Context, store *datasync.Recipes, styles Styles, logger *zap.Logger) RecipesModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return RecipesModel{
		ctx:     ctx,
		store:   store,
		styles:  styles,
		logger:  logger,
		loading: true,
		spinner: newSpinner(styles),
	}
}

func (m RecipesModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m RecipesModel) load() tea.Cmd {
	return run(m.ctx, opLoad, m.store.List)
}

func (m RecipesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = tick(m.spinner, m.loading || m.busy, msg)
		return m, cmd
	case resultMsg[model.Recipe]:
		return m.handleResult(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m RecipesModel) handleResult(msg resultMsg[model.Recipe]) RecipesModel {
	if msg.err != nil {
		m.logger.Warn("Request failed", zap.Stringer("op", msg.op), zap.Error(msg.err))
	}
	switch msg.op {
	case opLoad:
		m.loading = false
	case opSave:
		m.busy = false
		if msg.err == nil {
			m.dialog = m.dialog.Close()
			m.form = fields{}
			m.formErr = ""
		}
	case opDelete:
		m.busy = false
		m.confirmID = ""
	}
	if msg.err == nil {
		m.setRecipes(msg.items)
	}
	return m
}

func (m *RecipesModel) setRecipes(recipes []model.Recipe) {
	m.recipes = recipes
	m.cards = view.RecipeCards(recipes)
	m.cursor = clampCursor(m.cursor, len(m.cards))
}

func (m RecipesModel) selected() (model.Recipe, bool) {
	if len(m.recipes) == 0 {
		return model.Recipe{}, false
	}
	return m.recipes[m.cursor], true
}

func (m RecipesModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirmID != "" {
		return m.handleConfirm(k)
	}
	if m.dialog.IsOpen() {
		return m.handleForm(msg)
	}

	switch k {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.cards))
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.cards))
	case "a":
		m.dialog = m.dialog.OpenCreate()
		m.openForm(view.RecipeForm{})
	case "e":
		if r, ok := m.selected(); ok {
			m.dialog = m.dialog.OpenEdit(r.ID, r)
			m.openForm(view.RecipeFormFrom(r))
		}
	case "d":
		if r, ok := m.selected(); ok {
			m.confirmID = r.ID
		}
	case "r":
		if !m.loading {
			m.loading = true
			return m, tea.Batch(m.load(), m.spinner.Tick)
		}
	}
	return m, nil
}

func (m RecipesModel) handleConfirm(k string) (tea.Model, tea.Cmd) {
	switch {
	case m.busy:
	case isYes(k):
		m.busy = true
		id := m.confirmID
		return m, tea.Batch(run(m.ctx, opDelete, func(ctx context.Context) ([]model.Recipe, error) {
			return m.store.Remove(ctx, id, datasync.Confirmed)
		}), m.spinner.Tick)
	case isNo(k):
		m.confirmID = ""
	}
	return m, nil
}

func (m *RecipesModel) openForm(f view.RecipeForm) {
	m.form = recipeFields(f)
	m.form.focusOn(0)
	m.formErr = ""
}

func (m RecipesModel) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case k == "esc" && m.busy:
		return m, nil
	case k == "esc":
		m.dialog = m.dialog.Close()
		m.form = fields{}
		m.formErr = ""
		return m, nil
	case k == "enter":
		return m.submit()
	case k == "ctrl+n":
		f := recipeFormOf(m.form)
		f.AddLine()
		m.form = recipeFields(f)
		m.form.focusOn(m.form.len() - 3)
		return m, nil
	case k == "ctrl+x":
		if m.form.focus == 0 {
			return m, nil
		}
		focus := m.form.focus
		f := recipeFormOf(m.form)
		f.RemoveLine((focus - 1) / 3)
		m.form = recipeFields(f)
		m.form.focusOn(min(focus, m.form.len()-1))
		return m, nil
	case isNavKey(k):
		m.form.navigate(k)
		return m, nil
	}
	return m, m.form.update(msg)
}

// submit is a no-op while a save is in flight.
func (m RecipesModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	recipe, err := recipeFormOf(m.form).Recipe()
	if err != nil {
		m.formErr = err.Error()
		m.logger.Warn("Invalid recipe form", zap.Error(err))
		return m, nil
	}
	m.formErr = ""
	m.busy = true
	id := m.dialog.TargetID()
	return m, tea.Batch(run(m.ctx, opSave, func(ctx context.Context) ([]model.Recipe, error) {
		return m.store.Save(ctx, id, recipe)
	}), m.spinner.Tick)
}

// recipeFields lays the form out as the product name followed by three
// inputs (name, quantity, unit) per ingredient.
func recipeFields(f view.RecipeForm) fields {
	var fs fields
	fs.add("Product", "Cheeseburger", f.ProductName)
	for i, l := range f.Lines {
		fs.add("Ingredient "+strconv.Itoa(i+1), "name", l.Name)
		fs.add("  quantity", "0.15", l.Quantity)
		fs.add("  unit", unitHint, l.Unit)
	}
	return fs
}

func recipeFormOf(fs fields) view.RecipeForm {
	f := view.RecipeForm{ProductName: fs.value(0)}
	for i := 1; i+2 < fs.len(); i += 3 {
		f.Lines = append(f.Lines, view.IngredientLine{
			Name:     fs.value(i),
			Quantity: fs.value(i + 1),
			Unit:     fs.value(i + 2),
		})
	}
	return f
}

func (m RecipesModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Recipes") + "\n\n")

	switch {
	case m.dialog.IsOpen():
		sb.WriteString(m.formView())
	case m.loading && len(m.cards) == 0:
		sb.WriteString(m.spinner.View() + " Loading recipes…\n")
	case len(m.cards) == 0:
		sb.WriteString(m.styles.Muted.Render("No recipes yet. Press a to add one.") + "\n")
	default:
		for i, c := range m.cards {
			style := m.styles.Card
			if i == m.cursor {
				style = m.styles.SelectedCard
			}
			summary := c.Summary
			if summary == "" {
				summary = "No ingredients"
			}
			sb.WriteString(style.Render(m.styles.Bold.Render(c.Title)+"\n"+m.styles.Muted.Render(summary)) + "\n")
		}
	}

	if m.confirmID != "" {
		prompt := "Are you sure you want to delete this recipe? (y/n)"
		if m.busy {
			prompt = m.spinner.View() + " Deleting…"
		}
		sb.WriteString("\n" + m.styles.Error.Render(prompt) + "\n")
	}

	help := recipesHelp
	if m.dialog.IsOpen() {
		help = recipeFormHelp
	}
	sb.WriteString("\n" + m.styles.Footer.Render(help))
	return sb.String()
}

func (m RecipesModel) formView() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.dialog.Title("Recipe")) + "\n")
	sb.WriteString(m.form.view(m.styles) + "\n")
	if m.form.len() == 1 {
		sb.WriteString(m.styles.Muted.Render("No ingredients. Press ctrl+n to add one.") + "\n")
	}
	if m.formErr != "" {
		sb.WriteString("\n" + m.styles.Error.Render(m.formErr) + "\n")
	}
	if m.busy {
		sb.WriteString("\n" + m.spinner.View() + " Saving…\n")
	}
	return m.styles.Dialog.Render(strings.TrimRight(sb.String(), "\n"))
}

// RunRecipes runs the recipe manager until the user quits or ctx ends.
func RunRecipes(ctx context.Context, store *datasync.Recipes, styles Styles, logger *zap.Logger) error {
	p := tea.NewProgram(NewRecipesModel(ctx, store, styles, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("recipes ui: %w", err)
	}
	return nil
}
