package tui

import (
	"context"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/poku-e/kitchen/internal/apiclient"
	"github.com/poku-e/kitchen/internal/apitest"
	"github.com/poku-e/kitchen/internal/datasync"
	"github.com/poku-e/kitchen/internal/model"
	"github.com/poku-e/kitchen/internal/view"
)

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// drain feeds store results produced by cmd back into m until nothing is
// left. Spinner ticks are dropped so no timers run.
func drain(m tea.Model, cmd tea.Cmd) tea.Model {
	for _, msg := range collect(cmd) {
		if _, ok := msg.(result); !ok {
			continue
		}
		var next tea.Cmd
		m, next = m.Update(msg)
		m = drain(m, next)
	}
	return m
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends one key and drains whatever it started.
func press(m tea.Model, k string) tea.Model {
	m, cmd := m.Update(key(k))
	return drain(m, cmd)
}

// typeText sends s one rune at a time to the focused input.
func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func newStores(t *testing.T) (*datasync.Recipes, *datasync.Inventory, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	api, err := apiclient.New(apitest.BaseURL, 5*time.Second, apiclient.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return datasync.NewRecipes(api, nil), datasync.NewInventory(api, nil), srv
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testStyles = NewStyles(DarkTheme())

// ---------- Recipes ----------

func startRecipes(t *testing.T) (RecipesModel, *apitest.Server) {
	t.Helper()
	store, _, srv := newStores(t)
	srv.SeedRecipes(model.Recipe{
		ProductName: "Cheeseburger",
		Ingredients: []model.Ingredient{{Name: "Bun", Quantity: d("1"), Unit: model.UnitPieces}},
	})
	m := NewRecipesModel(context.Background(), store, testStyles, nil)
	assert.Contains(t, m.View(), "Loading recipes")
	return drain(m, m.Init()).(RecipesModel), srv
}

func TestRecipesLoad(t *testing.T) {
	m, _ := startRecipes(t)
	assert.False(t, m.loading)
	require.Len(t, m.cards, 1)
	assert.Contains(t, m.View(), "Cheeseburger")
	assert.Contains(t, m.View(), "Bun (1 pcs)")
}

func TestRecipesCreate(t *testing.T) {
	m, srv := startRecipes(t)

	var tm tea.Model = press(m, "a")
	assert.Contains(t, tm.View(), "Add New Recipe")
	assert.Contains(t, tm.View(), "No ingredients")

	tm = typeText(tm, "Double")
	tm = press(tm, "ctrl+n")
	tm = typeText(tm, "Cheese")
	tm = press(tm, "tab")
	tm = typeText(tm, "2")
	tm = press(tm, "tab")

	rm := tm.(RecipesModel)
	assert.Equal(t, "pcs", rm.form.value(3), "new rows preselect the first unit")
	rm.form.setValue(3, "slices")
	rm = press(rm, "enter").(RecipesModel)

	assert.False(t, rm.dialog.IsOpen())
	assert.False(t, rm.busy)
	assert.Len(t, rm.cards, 2)

	stored := srv.Recipes()
	require.Len(t, stored, 2)
	assert.Equal(t, "Double", stored[1].ProductName)
	require.Len(t, stored[1].Ingredients, 1)
	assert.Equal(t, model.UnitSlices, stored[1].Ingredients[0].Unit)
	assert.True(t, stored[1].Ingredients[0].Quantity.Equal(d("2")))
}

func TestRecipesInvalidQuantityStaysOpen(t *testing.T) {
	m, srv := startRecipes(t)

	tm := press(m, "a")
	tm = typeText(tm, "X")
	tm = press(tm, "ctrl+n")
	tm = press(tm, "tab")
	tm = typeText(tm, "lots")
	tm = press(tm, "enter")

	rm := tm.(RecipesModel)
	assert.True(t, rm.dialog.IsOpen())
	assert.Contains(t, rm.formErr, `quantity "lots" is not a number`)
	assert.Zero(t, srv.CountRequests(http.MethodPost))
}

func TestRecipesSaveFailureKeepsDialogOpen(t *testing.T) {
	m, srv := startRecipes(t)
	srv.FailNext(http.MethodPost, http.StatusInternalServerError)

	tm := press(m, "a")
	tm = typeText(tm, "Water")
	tm = press(tm, "enter")

	rm := tm.(RecipesModel)
	assert.True(t, rm.dialog.IsOpen())
	assert.False(t, rm.busy)
	assert.Len(t, rm.cards, 1)
}

func TestRecipesFailedResultIsLoggedWithOp(t *testing.T) {
	store, _, srv := newStores(t)
	core, logs := observer.New(zap.WarnLevel)
	m := NewRecipesModel(context.Background(), store, testStyles, zap.New(core))
	tm := drain(m, m.Init())
	srv.FailNext(http.MethodPost, http.StatusInternalServerError)

	tm = press(tm, "a")
	tm = typeText(tm, "Water")
	press(tm, "enter")

	entries := logs.FilterMessage("Request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "save", entries[0].ContextMap()["op"])
}

func TestRecipesEscIgnoredWhileSaving(t *testing.T) {
	m, srv := startRecipes(t)

	tm := press(m, "a")
	tm = typeText(tm, "Water")
	tm, pending := tm.Update(key("enter"))
	tm = press(tm, "esc")
	assert.True(t, tm.(RecipesModel).dialog.IsOpen())

	tm = drain(tm, pending)
	rm := tm.(RecipesModel)
	assert.False(t, rm.dialog.IsOpen())
	assert.Len(t, rm.cards, 2)
	assert.Len(t, srv.Recipes(), 2)
}

func TestRecipesSubmitDisabledWhileInFlight(t *testing.T) {
	m, srv := startRecipes(t)

	tm := press(m, "a")
	tm = typeText(tm, "Water")
	tm, first := tm.Update(key("enter"))
	assert.True(t, tm.(RecipesModel).busy)
	assert.Contains(t, tm.View(), "Saving")

	tm, second := tm.Update(key("enter"))
	assert.Nil(t, second)

	tm = drain(tm, first)
	assert.Equal(t, 1, srv.CountRequests(http.MethodPost))
	assert.False(t, tm.(RecipesModel).dialog.IsOpen())
}

func TestRecipesEdit(t *testing.T) {
	m, srv := startRecipes(t)

	rm := press(m, "e").(RecipesModel)
	require.True(t, rm.dialog.IsOpen())
	assert.Equal(t, "Cheeseburger", rm.form.value(0))
	assert.Equal(t, "1", rm.form.value(2))
	assert.Equal(t, "pcs", rm.form.value(3))

	rm.form.setValue(0, "Veggie")
	rm = press(rm, "enter").(RecipesModel)

	assert.False(t, rm.dialog.IsOpen())
	assert.Equal(t, "Veggie", srv.Recipes()[0].ProductName)
	assert.Equal(t, 1, srv.CountRequests(http.MethodPatch))
}

func TestRecipesIngredientRows(t *testing.T) {
	m, _ := startRecipes(t)

	rm := press(m, "e").(RecipesModel)
	rm = press(rm, "ctrl+n").(RecipesModel)
	assert.Equal(t, 7, rm.form.len())
	assert.Equal(t, 4, rm.form.focus)

	// Remove the first ingredient row while focus is on its quantity.
	rm.form.focusOn(2)
	rm = press(rm, "ctrl+x").(RecipesModel)
	assert.Equal(t, 4, rm.form.len())
	assert.Empty(t, rm.form.value(1), "the blank row moved up")

	rm.form.focusOn(0)
	rm = press(rm, "ctrl+x").(RecipesModel)
	assert.Equal(t, 4, rm.form.len(), "product name row cannot be removed")
}

func TestRecipesDelete(t *testing.T) {
	m, srv := startRecipes(t)

	tm := press(m, "d")
	assert.Contains(t, tm.View(), "Are you sure you want to delete this recipe?")
	tm = press(tm, "n")
	assert.Empty(t, tm.(RecipesModel).confirmID)
	assert.Zero(t, srv.CountRequests(http.MethodDelete))

	tm = press(tm, "d")
	tm = press(tm, "y")
	rm := tm.(RecipesModel)
	assert.Empty(t, rm.confirmID)
	assert.Empty(t, rm.cards)
	assert.Empty(t, srv.Recipes())
	assert.Contains(t, rm.View(), "No recipes yet")
}

func TestRecipesEscClosesDialog(t *testing.T) {
	m, _ := startRecipes(t)
	tm := press(m, "a")
	tm = press(tm, "esc")
	assert.False(t, tm.(RecipesModel).dialog.IsOpen())
}

func TestRecipesQuit(t *testing.T) {
	m, _ := startRecipes(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// ---------- Inventory ----------

func startInventory(t *testing.T) (InventoryModel, *apitest.Server) {
	t.Helper()
	_, store, srv := newStores(t)
	srv.SeedStock(
		model.NewStockItem("Flour", "Dry", model.UnitKilo, d("2"), d("1000")),
		model.NewStockItem("Sugar", "Dry", model.UnitKilo, d("10"), d("500")),
	)
	m := NewInventoryModel(context.Background(), store, testStyles, view.DefaultStockRenderer(), nil)
	return drain(m, m.Init()).(InventoryModel), srv
}

func shownNames(m InventoryModel) []string {
	var out []string
	for _, it := range m.shown {
		out = append(out, it.Name)
	}
	return out
}

func TestInventoryLoad(t *testing.T) {
	m, _ := startInventory(t)
	assert.Equal(t, "7.000 so'm", m.table.Total)
	assert.Contains(t, m.View(), "Total inventory value: 7.000 so'm")
	assert.Contains(t, m.View(), "Sugar")
}

func TestInventoryDecrement(t *testing.T) {
	m, srv := startInventory(t)

	tm := press(m, "down")
	tm = press(tm, "x")
	im := tm.(InventoryModel)
	require.True(t, im.decrement.IsOpen())
	assert.Contains(t, im.View(), "Use stock: Sugar")

	tm = typeText(tm, "3")
	tm = press(tm, "enter")
	im = tm.(InventoryModel)

	assert.False(t, im.decrement.IsOpen())
	assert.Equal(t, "5.500 so'm", im.table.Total)
	assert.True(t, srv.Stock()[1].Quantity.Equal(d("7")))
}

func TestInventoryDecrementDefaultsToOne(t *testing.T) {
	m, srv := startInventory(t)

	tm := press(m, "x")
	tm = typeText(tm, "abc")
	press(tm, "enter")
	assert.True(t, srv.Stock()[0].Quantity.Equal(d("1")))
}

func TestInventoryDecrementFailureKeepsDialogOpen(t *testing.T) {
	m, srv := startInventory(t)
	srv.FailNext(http.MethodPatch, http.StatusBadGateway)

	tm := press(m, "x")
	tm = press(tm, "enter")
	im := tm.(InventoryModel)
	assert.True(t, im.decrement.IsOpen())
	assert.False(t, im.busy)
	assert.Equal(t, "7.000 so'm", im.table.Total)
}

func TestInventoryEscIgnoredWhileDecrementing(t *testing.T) {
	m, srv := startInventory(t)

	tm := press(m, "x")
	tm = typeText(tm, "1")
	tm, pending := tm.Update(key("enter"))
	tm = press(tm, "esc")
	assert.True(t, tm.(InventoryModel).decrement.IsOpen())

	tm = drain(tm, pending)
	im := tm.(InventoryModel)
	assert.False(t, im.decrement.IsOpen())
	assert.True(t, srv.Stock()[0].Quantity.Equal(d("1")))
}

func TestInventorySearch(t *testing.T) {
	m, _ := startInventory(t)

	tm := press(m, "/")
	tm = typeText(tm, "SUG")
	assert.Equal(t, []string{"Sugar"}, shownNames(tm.(InventoryModel)))

	tm = press(tm, "enter")
	im := tm.(InventoryModel)
	assert.False(t, im.searching)
	assert.Equal(t, []string{"Sugar"}, shownNames(im))
	assert.Equal(t, "5.000 so'm", im.table.Total)

	tm = press(tm, "/")
	tm = press(tm, "esc")
	assert.Equal(t, []string{"Flour", "Sugar"}, shownNames(tm.(InventoryModel)))
}

func TestInventorySortToggles(t *testing.T) {
	m, srv := startInventory(t)
	srv.SeedStock(model.NewStockItem("Salt", "Dry", model.UnitKilo, d("1"), d("100")))
	tm := press(m, "r")
	assert.Equal(t, []string{"Flour", "Sugar", "Salt"}, shownNames(tm.(InventoryModel)))

	tm = press(tm, "s")
	asc := shownNames(tm.(InventoryModel))
	assert.Equal(t, []string{"Salt", "Flour", "Sugar"}, asc)

	tm = press(tm, "s")
	desc := shownNames(tm.(InventoryModel))
	assert.Equal(t, []string{"Sugar", "Flour", "Salt"}, desc)

	tm = press(tm, "s")
	tm = press(tm, "s")
	assert.Equal(t, desc, shownNames(tm.(InventoryModel)))
}

func TestInventoryAdd(t *testing.T) {
	m, srv := startInventory(t)

	im := press(m, "a").(InventoryModel)
	assert.Equal(t, "pcs", im.form.value(2))
	im.form.setValue(0, "Salt")
	im.form.setValue(1, "Dry")
	im.form.setValue(2, "kg")
	im.form.setValue(3, "3")
	im.form.setValue(4, "200")
	im = press(im, "enter").(InventoryModel)

	assert.False(t, im.dialog.IsOpen())
	stored := srv.Stock()
	require.Len(t, stored, 3)
	assert.True(t, stored[2].TotalCost.Equal(d("600")))
	assert.Equal(t, "7.600 so'm", im.table.Total)
}

func TestInventoryAddUnknownUnit(t *testing.T) {
	m, srv := startInventory(t)

	im := press(m, "a").(InventoryModel)
	im.form.setValue(0, "Salt")
	im.form.setValue(2, "crate")
	im = press(im, "enter").(InventoryModel)

	assert.True(t, im.dialog.IsOpen())
	assert.Contains(t, im.formErr, "unknown unit")
	assert.Zero(t, srv.CountRequests(http.MethodPost))
}

func TestInventoryEditRecomputesTotal(t *testing.T) {
	m, srv := startInventory(t)

	im := press(m, "e").(InventoryModel)
	assert.Equal(t, "Edit Item", im.dialog.Title("Item"))
	assert.Equal(t, "2", im.form.value(3))
	im.form.setValue(3, "4")
	im = press(im, "enter").(InventoryModel)

	assert.True(t, srv.Stock()[0].TotalCost.Equal(d("4000")))
	assert.Equal(t, "9.000 so'm", im.table.Total)
}

func TestInventoryDeleteFromDecrementDialog(t *testing.T) {
	m, srv := startInventory(t)

	tm := press(m, "x")
	tm = press(tm, "ctrl+d")
	assert.Contains(t, tm.View(), "Are you sure you want to delete this item?")
	tm = press(tm, "y")

	im := tm.(InventoryModel)
	assert.False(t, im.decrement.IsOpen())
	assert.Equal(t, []string{"Sugar"}, shownNames(im))
	assert.Len(t, srv.Stock(), 1)
}

func TestInventoryDeclineDeleteSendsNothing(t *testing.T) {
	m, srv := startInventory(t)

	tm := press(m, "d")
	tm = press(tm, "esc")
	assert.Empty(t, tm.(InventoryModel).confirmID)
	assert.Zero(t, srv.CountRequests(http.MethodDelete))
	assert.Len(t, srv.Stock(), 2)
}

// ---------- Styles and table ----------

func TestThemeFor(t *testing.T) {
	assert.False(t, ThemeFor("light").IsDark)
	assert.True(t, ThemeFor("dark").IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, ThemeFor("auto").IsDark)
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, ThemeFor("auto").IsDark)
}

func TestStockTableView(t *testing.T) {
	table := view.DefaultStockRenderer().Table([]model.StockItem{
		model.NewStockItem("Flour", "Dry", model.UnitKilo, d("2"), d("1000")),
	})
	out := StockTableView{Headers: view.StockHeaders, Table: table}.View(testStyles)
	assert.Contains(t, out, "Unit cost")
	assert.Contains(t, out, "2.000 so'm")
	assert.Contains(t, out, "> ")

	empty := StockTableView{Headers: view.StockHeaders}.View(testStyles)
	assert.Contains(t, empty, "No items.")
}
