package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unit is a measuring unit offered by the recipe and stock forms.
type Unit string

const (
	UnitPieces  Unit = "pcs"
	UnitGram    Unit = "g"
	UnitKilo    Unit = "kg"
	UnitMilli   Unit = "mg"
	UnitMl      Unit = "ml"
	UnitLitre   Unit = "L"
	UnitSlices  Unit = "slices"
	UnitLeaves  Unit = "leaves"
	UnitPacks   Unit = "packs"
	UnitBottles Unit = "bottles"
	UnitCans    Unit = "cans"
	UnitBoxes   Unit = "boxes"
	UnitSpoons  Unit = "spoons"
)

// Units lists the allowed units in the order the forms offer them.
var Units = []Unit{
	UnitPieces, UnitGram, UnitKilo, UnitMilli, UnitMl, UnitLitre, UnitSlices,
	UnitLeaves, UnitPacks, UnitBottles, UnitCans, UnitBoxes, UnitSpoons,
}

var ErrUnknownUnit = errors.New("unknown unit")

// Valid reports whether u is one of Units.
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

func (u Unit) String() string { return string(u) }

// ParseUnit accepts a unit exactly or case-insensitively ("l" -> "L").
// Anything else is rejected, with the closest unit suggested when one is near.
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownUnit)
	}
	if u := Unit(s); u.Valid() {
		return u, nil
	}
	for _, u := range Units {
		if strings.EqualFold(string(u), s) {
			return u, nil
		}
	}

	q := normKey(s)
	best, bestDist := Unit(""), 3
	for _, u := range Units {
		if d := EditDistance(q, normKey(string(u))); d < bestDist {
			best, bestDist = u, d
		}
	}
	if best != "" {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownUnit, s, best)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownUnit, s)
}

// ---------- Fuzzy matching helpers ----------

func normKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EditDistance is the Levenshtein distance between a and b, counted in runes.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	ar := []rune(a)
	br := []rune(b)

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
