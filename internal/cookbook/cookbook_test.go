package cookbook

import (
	"testing"

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

func ing(name, qty string, unit model.Unit) model.Ingredient {
	return model.Ingredient{Name: name, Quantity: d(qty), Unit: unit}
}

func menu() []model.Recipe {
	return []model.Recipe{
		{ID: "1", ProductName: "Cheeseburger", Ingredients: []model.Ingredient{
			ing("Bun", "1", model.UnitPieces),
			ing("Beef patty", "150", model.UnitGram),
			ing("Cheddar", "2", model.UnitSlices),
		}},
		{ID: "2", ProductName: "Hamburger", Ingredients: []model.Ingredient{
			ing("Bun", "1", model.UnitPieces),
			ing("Beef patty", "150", model.UnitGram),
			ing("Lettuce", "2", model.UnitLeaves),
		}},
		{ID: "3", ProductName: "Lemonade", Ingredients: []model.Ingredient{
			ing("Lemon", "1", model.UnitPieces),
			ing("Sugar", "20", model.UnitGram),
		}},
	}
}

func ids(rs []model.Recipe) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"bun", "beef patty", "cheddar"}, SplitList(" bun, beef patty;;cheddar ,\n"))
	assert.Empty(t, SplitList(" , ;"))
}

func TestIngredients(t *testing.T) {
	assert.Equal(t, []string{"Beef patty", "Bun", "Cheddar", "Lemon", "Lettuce", "Sugar"}, New(menu()).Ingredients())
}

func TestMap(t *testing.T) {
	ix := New(menu())

	mapped, unknown := ix.Map([]string{"BUN", "buns", "beef  PATTY", "chedar", "pickles", " "})
	assert.Equal(t, []string{"Bun", "Beef patty", "Cheddar"}, mapped)
	assert.Equal(t, []string{"pickles"}, unknown)
}

func TestUsing(t *testing.T) {
	ix := New(menu())

	assert.Equal(t, []string{"1", "2"}, ids(ix.Using([]string{"Bun"})))
	assert.Equal(t, []string{"2"}, ids(ix.Using([]string{"bun", "Lettuce"})))
	assert.Empty(t, ix.Using([]string{"Cheddar", "Lettuce"}))
	assert.Empty(t, ix.Using(nil))
	assert.Empty(t, ix.Using([]string{"Pickles"}))
}

func TestPlan(t *testing.T) {
	stock := []model.StockItem{
		model.NewStockItem("Buns", "Bakery", model.UnitPieces, d("10"), d("300")),
		model.NewStockItem("beef patty", "Meat", model.UnitKilo, d("0.1"), d("90000")),
		model.NewStockItem("Cheddar", "Dairy", model.UnitSlices, d("1"), d("800")),
		model.NewStockItem("Lettuce", "Veg", model.UnitLeaves, d("30"), d("50")),
	}

	plans := New(menu()).Plan(stock)
	require.Len(t, plans, 3)

	cheese := plans[0]
	assert.False(t, cheese.Ready())
	assert.Empty(t, cheese.Missing)
	require.Len(t, cheese.Short, 1)
	assert.Equal(t, "Cheddar", cheese.Short[0].Name)
	assert.True(t, cheese.Short[0].Need.Equal(d("2")))
	assert.True(t, cheese.Short[0].Have.Equal(d("1")))

	// Beef is stocked in kg, the recipe asks for grams: not compared.
	assert.True(t, plans[1].Ready())

	assert.Equal(t, []string{"Lemon", "Sugar"}, plans[2].Missing)
	assert.False(t, plans[2].Ready())
}

func TestPlanEmptyStock(t *testing.T) {
	plans := New(menu()).Plan(nil)
	for _, p := range plans {
		assert.Len(t, p.Missing, len(p.Recipe.Ingredients))
	}
}
