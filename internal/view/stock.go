package view

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/poku-e/kitchen/internal/model"
)

// DefaultLowStock is the quantity at or below which a row is flagged.
var DefaultLowStock = decimal.NewFromInt(5)

type StockRow struct {
	ID        string
	Name      string
	Category  string
	Unit      string
	Quantity  string
	UnitCost  string
	TotalCost string
	LowStock  bool
}

// Cells returns the visible columns in table order.
func (r StockRow) Cells() []string {
	return []string{r.Name, r.Category, r.Unit, r.Quantity, r.UnitCost, r.TotalCost}
}

// StockHeaders matches StockRow.Cells.
var StockHeaders = []string{"Name", "Category", "Unit", "Quantity", "Unit cost", "Total cost"}

type StockTable struct {
	Rows       []StockRow
	TotalValue decimal.Decimal
	Total      string
}

// StockRenderer turns stock items into table rows. The zero value is not
// ready; use NewStockRenderer.
type StockRenderer struct {
	Format   Formatter
	LowStock decimal.Decimal
}

func NewStockRenderer(f Formatter, lowStock decimal.Decimal) StockRenderer {
	return StockRenderer{Format: f, LowStock: lowStock}
}

func DefaultStockRenderer() StockRenderer {
	return NewStockRenderer(DefaultFormatter(), DefaultLowStock)
}

// Table renders items in the given order. The total is the sum of each
// item's stored total cost.
func (r StockRenderer) Table(items []model.StockItem) StockTable {
	t := StockTable{Rows: make([]StockRow, 0, len(items)), TotalValue: decimal.Zero}
	for _, it := range items {
		t.Rows = append(t.Rows, StockRow{
			ID:        it.ID,
			Name:      it.Name,
			Category:  it.Category,
			Unit:      string(it.Unit),
			Quantity:  Plain(it.Quantity),
			UnitCost:  r.Format.Money(it.UnitCost),
			TotalCost: r.Format.Money(it.TotalCost),
			LowStock:  it.Quantity.LessThanOrEqual(r.LowStock),
		})
		t.TotalValue = t.TotalValue.Add(it.TotalCost)
	}
	t.Total = r.Format.Money(t.TotalValue)
	return t
}

// ---------- Local transforms ----------

// Filter keeps the items whose name contains query, ignoring case. It always
// works from the full list it is given, so filters never stack.
func Filter(all []model.StockItem, query string) []model.StockItem {
	q := strings.ToLower(query)
	out := make([]model.StockItem, 0, len(all))
	for _, it := range all {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

// Sorter orders items by total cost, flipping direction on every call.
// The first call sorts ascending.
type Sorter struct {
	desc bool
}

// Next returns a sorted copy of all and flips the direction for the next call.
func (s *Sorter) Next(all []model.StockItem) []model.StockItem {
	out := slices.Clone(all)
	desc := s.desc
	slices.SortStableFunc(out, func(a, b model.StockItem) int {
		if desc {
			return b.TotalCost.Cmp(a.TotalCost)
		}
		return a.TotalCost.Cmp(b.TotalCost)
	})
	s.desc = !s.desc
	return out
}

// Ascending reports the direction the next call will use.
func (s *Sorter) Ascending() bool { return !s.desc }
