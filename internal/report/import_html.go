package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/poku-e/kitchen/internal/model"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	numCharRe = regexp.MustCompile(`[^0-9.,-]`)
	groupedRe = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
)

func textCondense(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func first(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return textCondense(sel.First().Text())
}

// parseLocalized reads a de-DE formatted amount such as "7.000 so'm" or
// "1.234,5".
func parseLocalized(s string) (decimal.Decimal, error) {
	clean := numCharRe.ReplaceAllString(s, "")
	switch {
	case clean == "":
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case groupedRe.MatchString(clean):
		clean = strings.ReplaceAll(clean, ".", "")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	return d, nil
}

// rawOr prefers the exported data-* attribute and falls back to the visible cell.
func rawOr(tr *goquery.Selection, attr string, cell *goquery.Selection, parse func(string) (decimal.Decimal, error)) (decimal.Decimal, error) {
	if v, ok := tr.Attr(attr); ok {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d, nil
		}
	}
	return parse(first(cell))
}

// ReadStockHTML reads the inventory table from an exported page or a saved
// copy of the browser inventory page. Columns are positional: name, category,
// unit, quantity, unit cost; anything after that is ignored.
func ReadStockHTML(r io.Reader, selector string) (Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Sheet{}, err
	}
	if selector == "" {
		selector = "table"
	}
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return Sheet{}, fmt.Errorf("table not found with selector %q", selector)
	}

	var sheet Sheet
	table.Find("tbody > tr").Each(func(i int, tr *goquery.Selection) {
		line := i + 1
		tds := tr.Find("td")
		if tds.Length() < 5 {
			sheet.skip(line, fmt.Errorf("want at least 5 cells, got %d", tds.Length()))
			return
		}
		name := first(tds.Eq(0))
		if name == "" {
			sheet.skip(line, fmt.Errorf("empty name"))
			return
		}
		unit, err := model.ParseUnit(first(tds.Eq(2)))
		if err != nil {
			sheet.skip(line, err)
			return
		}
		qty, err := rawOr(tr, "data-quantity", tds.Eq(3), parseCellNumber)
		if err != nil {
			sheet.skip(line, fmt.Errorf("quantity: %w", err))
			return
		}
		cost, err := rawOr(tr, "data-unit-cost", tds.Eq(4), parseLocalized)
		if err != nil {
			sheet.skip(line, fmt.Errorf("unit cost: %w", err))
			return
		}
		sheet.Records = append(sheet.Records, Record{
			Line: line,
			Item: model.NewStockItem(name, first(tds.Eq(1)), unit, qty, cost),
		})
	})
	return sheet, nil
}
