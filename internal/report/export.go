// Package report moves collections in and out of files: CSV and XLSX sheets,
// a static HTML page that mirrors the browser views, and stock imports from
// any of those.
package report

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/poku-e/kitchen/internal/model"
	"github.com/poku-e/kitchen/internal/view"
)

// Format is a file format picked from the output path's extension.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	HTML Format = "html"
)

var ErrUnknownFormat = errors.New("unknown file format")

// FormatFromPath maps .csv, .xlsx, .html and .htm to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	case ".html", ".htm":
		return HTML, nil
	}
	return "", fmt.Errorf("%w: %q (want .csv, .xlsx or .html)", ErrUnknownFormat, path)
}

//go:embed templates/*.html
var tmplFS embed.FS

var (
	stockTmpl   = template.Must(template.ParseFS(tmplFS, "templates/stock.html"))
	recipesTmpl = template.Must(template.ParseFS(tmplFS, "templates/recipes.html"))
)

// Column headers shared by the writers and the importers.
var (
	StockColumns  = []string{"name", "category", "unit", "quantity", "unit_cost", "total_cost"}
	RecipeColumns = []string{"id", "product_name", "ingredient", "quantity", "unit"}
)

// ---------- Stock ----------

func stockRecords(items []model.StockItem) [][]string {
	out := make([][]string, 0, len(items))
	for _, it := range items {
		out = append(out, []string{
			it.Name, it.Category, string(it.Unit),
			view.Plain(it.Quantity), view.Plain(it.UnitCost), view.Plain(it.TotalCost),
		})
	}
	return out
}

// WriteStockCSV writes one row per item with plain (ungrouped) numbers.
func WriteStockCSV(w io.Writer, items []model.StockItem) error {
	return writeCSV(w, StockColumns, stockRecords(items))
}

func WriteStockXLSX(w io.Writer, items []model.StockItem) error {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.Name, it.Category, string(it.Unit),
			it.Quantity.InexactFloat64(), it.UnitCost.InexactFloat64(), it.TotalCost.InexactFloat64(),
		})
	}
	return writeXLSX(w, "Inventory", StockColumns, rows)
}

type stockPage struct {
	Title string
	Table view.StockTable
	Items []model.StockItem
}

// WriteStockHTML renders the stock table the way the inventory page shows it.
// Raw numbers are kept in data-* attributes so the page can be imported back.
func WriteStockHTML(w io.Writer, r view.StockRenderer, items []model.StockItem) error {
	return stockTmpl.Execute(w, stockPage{Title: "Inventory", Table: r.Table(items), Items: items})
}

// ExportStock writes items to path in the format named by its extension.
func ExportStock(path string, r view.StockRenderer, items []model.StockItem) error {
	return export(path, func(f Format, w io.Writer) error {
		switch f {
		case CSV:
			return WriteStockCSV(w, items)
		case XLSX:
			return WriteStockXLSX(w, items)
		default:
			return WriteStockHTML(w, r, items)
		}
	})
}

// ---------- Recipes ----------

// recipeRecords flattens recipes to one row per ingredient. A recipe without
// ingredients still gets one row so it is not lost.
func recipeRecords(recipes []model.Recipe) [][]string {
	var out [][]string
	for _, r := range recipes {
		if len(r.Ingredients) == 0 {
			out = append(out, []string{r.ID, r.ProductName, "", "", ""})
			continue
		}
		for _, i := range r.Ingredients {
			out = append(out, []string{r.ID, r.ProductName, i.Name, view.Plain(i.Quantity), string(i.Unit)})
		}
	}
	return out
}

func WriteRecipesCSV(w io.Writer, recipes []model.Recipe) error {
	return writeCSV(w, RecipeColumns, recipeRecords(recipes))
}

func WriteRecipesXLSX(w io.Writer, recipes []model.Recipe) error {
	recs := recipeRecords(recipes)
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		rows = append(rows, row)
	}
	return writeXLSX(w, "Recipes", RecipeColumns, rows)
}

type recipesPage struct {
	Title string
	Cards []view.RecipeCard
}

func WriteRecipesHTML(w io.Writer, recipes []model.Recipe) error {
	return recipesTmpl.Execute(w, recipesPage{Title: "Recipes", Cards: view.RecipeCards(recipes)})
}

func ExportRecipes(path string, recipes []model.Recipe) error {
	return export(path, func(f Format, w io.Writer) error {
		switch f {
		case CSV:
			return WriteRecipesCSV(w, recipes)
		case XLSX:
			return WriteRecipesXLSX(w, recipes)
		default:
			return WriteRecipesHTML(w, recipes)
		}
	})
}

// ---------- Output writers ----------

func export(path string, write func(Format, io.Writer) error) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, out); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func writeXLSX(w io.Writer, sheet string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	// StreamWriter for efficiency on large tables
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}
	for i, row := range rows {
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(cellAddr, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
