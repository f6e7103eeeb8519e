package view

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/poku-e/kitchen/internal/model"
)

// ---------- Recipe form ----------

// IngredientLine is one editable ingredient row, kept as raw text.
type IngredientLine struct {
	Name     string
	Quantity string
	Unit     string
}

// RecipeForm is the raw text of the recipe dialog.
type RecipeForm struct {
	ProductName string
	Lines       []IngredientLine
}

// RecipeFormFrom pre-populates the form for editing r.
func RecipeFormFrom(r model.Recipe) RecipeForm {
	f := RecipeForm{ProductName: r.ProductName}
	for _, i := range r.Ingredients {
		f.Lines = append(f.Lines, IngredientLine{Name: i.Name, Quantity: Plain(i.Quantity), Unit: string(i.Unit)})
	}
	return f
}

// AddLine appends an empty ingredient row with the first unit preselected.
func (f *RecipeForm) AddLine() {
	f.Lines = append(f.Lines, IngredientLine{Unit: string(model.Units[0])})
}

// RemoveLine drops row i; out-of-range indexes are ignored.
func (f *RecipeForm) RemoveLine(i int) {
	if i < 0 || i >= len(f.Lines) {
		return
	}
	f.Lines = append(f.Lines[:i], f.Lines[i+1:]...)
}

// Recipe converts the form into a recipe. Quantities must start with a number
// and units must be known; nothing else is checked.
func (f RecipeForm) Recipe() (model.Recipe, error) {
	r := model.Recipe{
		ProductName: strings.TrimSpace(f.ProductName),
		Ingredients: make([]model.Ingredient, 0, len(f.Lines)),
	}
	for n, line := range f.Lines {
		q, ok := parseLeadingNumber(line.Quantity)
		if !ok {
			return model.Recipe{}, fmt.Errorf("ingredient %d: quantity %q is not a number", n+1, line.Quantity)
		}
		u, err := model.ParseUnit(line.Unit)
		if err != nil {
			return model.Recipe{}, fmt.Errorf("ingredient %d: %w", n+1, err)
		}
		r.Ingredients = append(r.Ingredients, model.Ingredient{
			Name:     strings.TrimSpace(line.Name),
			Quantity: q,
			Unit:     u,
		})
	}
	return r, nil
}

// ---------- Stock form ----------

// StockForm is the raw text of the stock item dialog.
type StockForm struct {
	Name     string
	Category string
	Unit     string
	Quantity string
	UnitCost string
}

// StockFormFrom pre-populates the form for editing it.
func StockFormFrom(it model.StockItem) StockForm {
	return StockForm{
		Name:     it.Name,
		Category: it.Category,
		Unit:     string(it.Unit),
		Quantity: Plain(it.Quantity),
		UnitCost: Plain(it.UnitCost),
	}
}

// Item converts the form into a stock item with its total derived.
// Unparseable quantity or unit cost counts as zero.
func (f StockForm) Item() (model.StockItem, error) {
	u, err := model.ParseUnit(f.Unit)
	if err != nil {
		return model.StockItem{}, err
	}
	return model.NewStockItem(
		strings.TrimSpace(f.Name),
		strings.TrimSpace(f.Category),
		u,
		ParseNumberOrZero(f.Quantity),
		ParseNumberOrZero(f.UnitCost),
	), nil
}

var leadingNumber = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumberOrZero reads the leading number of s ("12.5kg" -> 12.5) and
// returns zero when there is none.
func ParseNumberOrZero(s string) decimal.Decimal {
	d, ok := parseLeadingNumber(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

func parseLeadingNumber(s string) (decimal.Decimal, bool) {
	m := leadingNumber.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Zero, false
	}
	sign, digits, exp := m[1], m[2], m[3]
	if sign == "+" {
		sign = ""
	}
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	d, err := decimal.NewFromString(sign + digits + exp)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// DefaultDecrement is used when the amount field is empty or not a positive integer.
const DefaultDecrement int64 = 1

// ParseAmount reads the leading integer of s ("3.7" -> 3). Empty, invalid,
// zero and negative amounts all become DefaultDecrement.
func ParseAmount(s string) int64 {
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return DefaultDecrement
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil || n <= 0 {
		return DefaultDecrement
	}
	return n
}
