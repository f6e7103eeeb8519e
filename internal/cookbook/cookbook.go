// Package cookbook answers "what can I make" questions over a set of recipes:
// which recipes use a given set of ingredients, and which can be cooked from
// the current stock.
package cookbook

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/poku-e/kitchen/internal/model"
)

// maxScore is the loosest fuzzy match still accepted.
const maxScore = 2.5

var listSplitter = regexp.MustCompile(`[,;\n]+`)

// SplitList splits user input like "bun, beef patty; cheddar" into trimmed,
// non-empty names.
func SplitList(s string) []string {
	raw := listSplitter.Split(s, -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// nameKey folds case, drops combining marks and collapses whitespace.
func nameKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// matcher resolves free text to one of a fixed set of names.
type matcher struct {
	byKey map[string]string
	keys  []string
	names []string
}

func newMatcher(names []string) matcher {
	m := matcher{byKey: map[string]string{}}
	for _, n := range names {
		k := nameKey(n)
		if k == "" {
			continue
		}
		if _, dup := m.byKey[k]; dup {
			continue
		}
		m.byKey[k] = n
		m.keys = append(m.keys, k)
		m.names = append(m.names, n)
	}
	return m
}

// match prefers an exact key, then the closest name by edit distance, where
// one containing the other counts double.
func (m matcher) match(raw string) (string, bool) {
	q := nameKey(raw)
	if q == "" {
		return "", false
	}
	if n, ok := m.byKey[q]; ok {
		return n, true
	}
	best, bestScore := "", math.MaxFloat64
	for i, k := range m.keys {
		d := float64(model.EditDistance(q, k))
		if strings.Contains(k, q) || strings.Contains(q, k) {
			d *= 0.5
		}
		if d < bestScore {
			best, bestScore = m.names[i], d
		}
	}
	if best == "" || bestScore > maxScore {
		return "", false
	}
	return best, true
}

// Index maps ingredient names to the recipes that use them.
type Index struct {
	recipes []model.Recipe
	uses    map[string][]int
	names   matcher
}

func New(recipes []model.Recipe) *Index {
	ix := &Index{recipes: recipes, uses: map[string][]int{}}
	var names []string
	for i, r := range recipes {
		for _, ing := range r.Ingredients {
			k := nameKey(ing.Name)
			if k == "" {
				continue
			}
			if _, ok := ix.uses[k]; !ok {
				names = append(names, ing.Name)
			}
			if list := ix.uses[k]; len(list) == 0 || list[len(list)-1] != i {
				ix.uses[k] = append(list, i)
			}
		}
	}
	slices.SortFunc(names, func(a, b string) int { return strings.Compare(nameKey(a), nameKey(b)) })
	ix.names = newMatcher(names)
	return ix
}

// Ingredients lists every distinct ingredient name, sorted.
func (ix *Index) Ingredients() []string {
	return slices.Clone(ix.names.names)
}

// Map resolves user input to known ingredient names. Inputs that match
// nothing closely enough come back in unknown. mapped has no duplicates.
func (ix *Index) Map(inputs []string) (mapped, unknown []string) {
	seen := map[string]bool{}
	for _, raw := range inputs {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		name, ok := ix.names.match(raw)
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		if !seen[name] {
			seen[name] = true
			mapped = append(mapped, name)
		}
	}
	return mapped, unknown
}

// Using returns the recipes that contain every one of names, in collection
// order. No names means no recipes.
func (ix *Index) Using(names []string) []model.Recipe {
	if len(names) == 0 {
		return nil
	}
	var idxs []int
	for i, n := range names {
		list := ix.uses[nameKey(n)]
		if i == 0 {
			idxs = slices.Clone(list)
		} else {
			idxs = slices.DeleteFunc(idxs, func(x int) bool { return !slices.Contains(list, x) })
		}
		if len(idxs) == 0 {
			return nil
		}
	}
	out := make([]model.Recipe, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, ix.recipes[i])
	}
	return out
}

// Shortage is an ingredient that is stocked in the right unit but not in
// the amount one portion needs.
type Shortage struct {
	Name string
	Unit model.Unit
	Need decimal.Decimal
	Have decimal.Decimal
}

// Plan is one recipe checked against stock.
type Plan struct {
	Recipe  model.Recipe
	Missing []string
	Short   []Shortage
}

// Ready reports whether one portion can be made from stock.
func (p Plan) Ready() bool { return len(p.Missing) == 0 && len(p.Short) == 0 }

// Plan checks every recipe against stock. Ingredients are matched to stock
// items by name the same way Map matches input. Quantities are compared only
// when the units agree; a unit mismatch counts as available.
func (ix *Index) Plan(stock []model.StockItem) []Plan {
	byName := map[string]model.StockItem{}
	names := make([]string, 0, len(stock))
	for _, it := range stock {
		if _, dup := byName[it.Name]; dup {
			continue
		}
		byName[it.Name] = it
		names = append(names, it.Name)
	}
	shelf := newMatcher(names)

	plans := make([]Plan, 0, len(ix.recipes))
	for _, r := range ix.recipes {
		p := Plan{Recipe: r}
		for _, ing := range r.Ingredients {
			name, ok := shelf.match(ing.Name)
			if !ok {
				p.Missing = append(p.Missing, ing.Name)
				continue
			}
			it := byName[name]
			if it.Unit == ing.Unit && it.Quantity.LessThan(ing.Quantity) {
				p.Short = append(p.Short, Shortage{Name: ing.Name, Unit: ing.Unit, Need: ing.Quantity, Have: it.Quantity})
			}
		}
		plans = append(plans, p)
	}
	return plans
}
