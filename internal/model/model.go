// Package model holds the resources served by the burger backend: recipes and
// stock items, plus the narrow decrement action accepted by the inventory endpoint.
package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// number writes d as a bare JSON number; the backend rejects quoted decimals.
// Decoding needs nothing extra since decimal accepts both forms.
func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

// Entity is a resource whose identifier is assigned by the remote store.
type Entity interface {
	EntityID() string
}

// ---------- Recipes ----------

type Ingredient struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     Unit            `json:"unit"`
}

type Recipe struct {
	ID          string       `json:"_id,omitempty"`
	ProductName string       `json:"productName"`
	Ingredients []Ingredient `json:"ingredients"`
}

func (i Ingredient) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string      `json:"name"`
		Quantity json.Number `json:"quantity"`
		Unit     Unit        `json:"unit"`
	}{i.Name, number(i.Quantity), i.Unit})
}

func (r Recipe) EntityID() string { return r.ID }

// ---------- Inventory ----------

// StockItem is one line of the stock sheet. TotalCost is written by the client
// (see WithTotal) and is trusted as-is when read back.
type StockItem struct {
	ID        string          `json:"_id,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      Unit            `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

func (s StockItem) EntityID() string { return s.ID }

func (s StockItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string      `json:"_id,omitempty"`
		Name      string      `json:"name"`
		Category  string      `json:"category"`
		Unit      Unit        `json:"unit"`
		Quantity  json.Number `json:"quantity"`
		UnitCost  json.Number `json:"unitCost"`
		TotalCost json.Number `json:"totalCost"`
	}{s.ID, s.Name, s.Category, s.Unit, number(s.Quantity), number(s.UnitCost), number(s.TotalCost)})
}

// NewStockItem builds an item with its total cost already derived.
func NewStockItem(name, category string, unit Unit, quantity, unitCost decimal.Decimal) StockItem {
	return StockItem{
		Name:     name,
		Category: category,
		Unit:     unit,
		Quantity: quantity,
		UnitCost: unitCost,
	}.WithTotal()
}

// WithTotal returns a copy with TotalCost = Quantity * UnitCost.
func (s StockItem) WithTotal() StockItem {
	s.TotalCost = s.Quantity.Mul(s.UnitCost)
	return s
}

const ActionDecrement = "decrement"

// StockAction is the PATCH body for semantic updates such as {"action":"decrement","amount":3}.
type StockAction struct {
	Action string `json:"action"`
	Amount int64  `json:"amount"`
}

func Decrement(amount int64) StockAction {
	return StockAction{Action: ActionDecrement, Amount: amount}
}
