package view

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/poku-e/kitchen/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func stockFixture() []model.StockItem {
	flour := model.NewStockItem("Flour", "Dry", model.UnitKilo, d("2"), d("1000"))
	flour.ID = "a1"
	sugar := model.NewStockItem("Sugar", "Dry", model.UnitKilo, d("10"), d("500"))
	sugar.ID = "b2"
	ketchup := model.NewStockItem("Ketchup", "Sauce", model.UnitBottles, d("6"), d("12000"))
	ketchup.ID = "c3"
	return []model.StockItem{flour, sugar, ketchup}
}

func TestFormatter(t *testing.T) {
	f := DefaultFormatter()
	assert.Equal(t, "7.000 so'm", f.Money(d("7000")))
	assert.Equal(t, "500 so'm", f.Money(d("500")))
	assert.Equal(t, "1.000.000", f.Number(d("1000000")))
	assert.Equal(t, "0", f.Number(decimal.Zero))

	var zero Formatter
	assert.Equal(t, "1.000", zero.Number(d("1000")))
}

func TestRecipeCards(t *testing.T) {
	recipes := []model.Recipe{
		{
			ID:          "r1",
			ProductName: "Cheeseburger",
			Ingredients: []model.Ingredient{
				{Name: "Bun", Quantity: d("1"), Unit: model.UnitPieces},
				{Name: "Beef", Quantity: d("0.15"), Unit: model.UnitKilo},
			},
		},
		{ID: "r2", ProductName: "Water", Ingredients: []model.Ingredient{}},
	}

	want := []RecipeCard{
		{ID: "r1", Title: "Cheeseburger", Summary: "Bun (1 pcs), Beef (0.15 kg)"},
		{ID: "r2", Title: "Water", Summary: ""},
	}
	got := RecipeCards(recipes)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RecipeCards mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, got, RecipeCards(recipes), "rendering is a pure function")
	assert.Empty(t, RecipeCards(nil))
}

func TestRecipeMarkdown(t *testing.T) {
	md := RecipeMarkdown(model.Recipe{
		ID:          "r1",
		ProductName: "Cheeseburger",
		Ingredients: []model.Ingredient{{Name: "Sauce | special", Quantity: d("2"), Unit: model.UnitSpoons}},
	})
	assert.True(t, strings.HasPrefix(md, "# Cheeseburger\n"))
	assert.Contains(t, md, `| Sauce \| special | 2 | spoons |`)

	empty := RecipeMarkdown(model.Recipe{ProductName: "Water"})
	assert.Contains(t, empty, "_No ingredients._")
	assert.NotContains(t, empty, "`")
}

func TestRenderMarkdownNoTTY(t *testing.T) {
	out, err := RenderMarkdown(RecipeMarkdown(model.Recipe{ProductName: "Cheeseburger"}), "notty", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Cheeseburger")
}

func TestStockTable(t *testing.T) {
	table := DefaultStockRenderer().Table(stockFixture()[:2])

	want := []StockRow{
		{ID: "a1", Name: "Flour", Category: "Dry", Unit: "kg", Quantity: "2", UnitCost: "1.000 so'm", TotalCost: "2.000 so'm", LowStock: true},
		{ID: "b2", Name: "Sugar", Category: "Dry", Unit: "kg", Quantity: "10", UnitCost: "500 so'm", TotalCost: "5.000 so'm", LowStock: false},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "7.000 so'm", table.Total)
	assert.True(t, table.TotalValue.Equal(d("7000")))
	assert.Equal(t, []string{"Flour", "Dry", "kg", "2", "1.000 so'm", "2.000 so'm"}, table.Rows[0].Cells())
	assert.Len(t, StockHeaders, len(table.Rows[0].Cells()))
}

func TestStockTableAfterDecrement(t *testing.T) {
	items := stockFixture()[:2]
	items[1].Quantity = d("7")
	items[1] = items[1].WithTotal()

	table := DefaultStockRenderer().Table(items)
	assert.Equal(t, "5.500 so'm", table.Total)
}

func TestStockTableLowStockBoundary(t *testing.T) {
	items := []model.StockItem{
		{Name: "five", Quantity: d("5")},
		{Name: "five and a bit", Quantity: d("5.01")},
	}
	table := NewStockRenderer(NewFormatter(""), DefaultLowStock).Table(items)
	assert.True(t, table.Rows[0].LowStock)
	assert.False(t, table.Rows[1].LowStock)
	assert.Equal(t, "0", table.Total)
}

func names(items []model.StockItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	all := stockFixture()

	assert.Equal(t, []string{"Sugar"}, names(Filter(all, "SUG")))
	assert.Equal(t, []string{"Flour", "Sugar", "Ketchup"}, names(Filter(all, "")))
	assert.Empty(t, Filter(all, "salt"))

	// Filtering is never cumulative: a broader query after a narrow one
	// still sees the whole collection.
	narrow := Filter(all, "ketch")
	require.Len(t, narrow, 1)
	assert.Equal(t, []string{"Flour", "Sugar"}, names(Filter(all, "r")))
	assert.Len(t, all, 3, "input untouched")
}

func TestSorterToggles(t *testing.T) {
	all := stockFixture() // totals: 2000, 5000, 72000
	var s Sorter

	assert.True(t, s.Ascending())
	first := s.Next(all)
	assert.Equal(t, []string{"Flour", "Sugar", "Ketchup"}, names(first))
	assert.False(t, s.Ascending())

	second := s.Next(all)
	assert.Equal(t, []string{"Ketchup", "Sugar", "Flour"}, names(second))

	third := s.Next(all)
	fourth := s.Next(all)
	assert.Equal(t, names(first), names(third), "two toggles restore the earlier order")
	assert.Equal(t, names(second), names(fourth))
	assert.Equal(t, []string{"Flour", "Sugar", "Ketchup"}, names(all), "input untouched")
}

func TestSorterIsStableForEqualTotals(t *testing.T) {
	a := model.StockItem{Name: "a", TotalCost: d("1")}
	b := model.StockItem{Name: "b", TotalCost: d("1")}
	var s Sorter
	assert.Equal(t, []string{"a", "b"}, names(s.Next([]model.StockItem{a, b})))
	assert.Equal(t, []string{"a", "b"}, names(s.Next([]model.StockItem{a, b})))
}

func TestDialog(t *testing.T) {
	var dlg Dialog[model.StockItem]
	assert.Equal(t, Closed, dlg.Mode())
	assert.False(t, dlg.IsOpen())

	dlg = dlg.OpenCreate()
	assert.Equal(t, Creating, dlg.Mode())
	assert.Equal(t, "Add New Item", dlg.Title("Item"))
	_, editing := dlg.Target()
	assert.False(t, editing)

	items := stockFixture()
	dlg = dlg.OpenEdit(items[0].ID, items[0])
	assert.Equal(t, "Edit Item", dlg.Title("Item"))
	assert.Equal(t, "a1", dlg.TargetID())

	// A second edit silently replaces the target.
	dlg = dlg.OpenEdit(items[1].ID, items[1])
	target, editing := dlg.Target()
	assert.True(t, editing)
	assert.Equal(t, "Sugar", target.Name)

	dlg = dlg.Close()
	assert.False(t, dlg.IsOpen())
	assert.Empty(t, dlg.TargetID())
	assert.Equal(t, "closed", dlg.Mode().String())
}

func TestDecrementDialog(t *testing.T) {
	dlg := OpenDecrement("b2", "Sugar")
	assert.True(t, dlg.IsOpen())
	assert.Equal(t, "b2", dlg.ItemID)
	dlg = dlg.Close()
	assert.False(t, dlg.IsOpen())
	assert.Empty(t, dlg.ItemID)
}

func TestRecipeFormRoundTrip(t *testing.T) {
	r := model.Recipe{
		ID:          "r1",
		ProductName: "Cheeseburger",
		Ingredients: []model.Ingredient{{Name: "Beef", Quantity: d("0.15"), Unit: model.UnitKilo}},
	}
	form := RecipeFormFrom(r)
	assert.Equal(t, []IngredientLine{{Name: "Beef", Quantity: "0.15", Unit: "kg"}}, form.Lines)

	form.ProductName = "  Double  "
	form.AddLine()
	form.Lines[1].Name = " Cheese "
	form.Lines[1].Quantity = "2 slices"
	form.Lines[1].Unit = "slices"

	got, err := form.Recipe()
	require.NoError(t, err)
	assert.Equal(t, "Double", got.ProductName)
	assert.Empty(t, got.ID)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "Cheese", got.Ingredients[1].Name)
	assert.True(t, got.Ingredients[1].Quantity.Equal(d("2")))

	form.RemoveLine(0)
	form.RemoveLine(7)
	assert.Len(t, form.Lines, 1)
}

func TestRecipeFormErrors(t *testing.T) {
	_, err := RecipeForm{ProductName: "x", Lines: []IngredientLine{{Name: "a", Quantity: "lots", Unit: "g"}}}.Recipe()
	assert.ErrorContains(t, err, "ingredient 1: quantity")

	_, err = RecipeForm{ProductName: "x", Lines: []IngredientLine{{Name: "a", Quantity: "1", Unit: "cup"}}}.Recipe()
	assert.ErrorIs(t, err, model.ErrUnknownUnit)

	empty, err := RecipeForm{ProductName: "Water"}.Recipe()
	require.NoError(t, err)
	assert.NotNil(t, empty.Ingredients)
}

func TestStockForm(t *testing.T) {
	item := stockFixture()[0]
	form := StockFormFrom(item)
	assert.Equal(t, StockForm{Name: "Flour", Category: "Dry", Unit: "kg", Quantity: "2", UnitCost: "1000"}, form)

	form.Quantity = "oops"
	form.UnitCost = "1500.5"
	got, err := form.Item()
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.True(t, got.TotalCost.IsZero())

	form.Quantity = "3"
	got, err = form.Item()
	require.NoError(t, err)
	assert.True(t, got.TotalCost.Equal(d("4501.5")))

	form.Unit = "crate"
	_, err = form.Item()
	assert.ErrorIs(t, err, model.ErrUnknownUnit)
}

func TestParseNumberOrZero(t *testing.T) {
	tests := map[string]string{
		"12":      "12",
		" 12.5kg": "12.5",
		".5":      "0.5",
		"-2":      "-2",
		"+3":      "3",
		"1e3":     "1000",
		"12.":     "12",
		"abc":     "0",
		"":        "0",
	}
	for in, want := range tests {
		assert.True(t, ParseNumberOrZero(in).Equal(d(want)), "%q -> %s", in, ParseNumberOrZero(in))
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]int64{
		"3":   3,
		"3.7": 3,
		" 12": 12,
		"":    1,
		"abc": 1,
		"0":   1,
		"-4":  1,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAmount(in), in)
	}
}
