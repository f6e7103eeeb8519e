package datasync

import (
	"context"

	"go.uber.org/zap"

	"github.com/poku-e/kitchen/internal/model"
)

// Fixed resource paths on the backend.
const (
	RecipesPath   = "/api/recipes"
	InventoryPath = "/api/inventory"
)

// Recipes is the recipe collection.
type Recipes struct {
	*Collection[model.Recipe]
}

func NewRecipes(api Transport, logger *zap.Logger) *Recipes {
	return &Recipes{NewCollection[model.Recipe](api, RecipesPath, "recipe", logger)}
}

// Save creates the recipe when id is empty and replaces it otherwise.
func (r *Recipes) Save(ctx context.Context, id string, recipe model.Recipe) ([]model.Recipe, error) {
	recipe.ID = ""
	if recipe.Ingredients == nil {
		recipe.Ingredients = []model.Ingredient{}
	}
	if id == "" {
		return r.Create(ctx, recipe)
	}
	return r.Update(ctx, id, recipe)
}

// Inventory is the stock item collection.
type Inventory struct {
	*Collection[model.StockItem]
}

func NewInventory(api Transport, logger *zap.Logger) *Inventory {
	return &Inventory{NewCollection[model.StockItem](api, InventoryPath, "item", logger)}
}

// Save writes the item with its total cost derived from quantity and unit cost,
// creating it when id is empty.
func (inv *Inventory) Save(ctx context.Context, id string, item model.StockItem) ([]model.StockItem, error) {
	item.ID = ""
	item = item.WithTotal()
	if id == "" {
		return inv.Create(ctx, item)
	}
	return inv.Update(ctx, id, item)
}

// Decrement asks the backend to reduce the item's quantity by amount.
func (inv *Inventory) Decrement(ctx context.Context, id string, amount int64) ([]model.StockItem, error) {
	return inv.Update(ctx, id, model.Decrement(amount))
}
