package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/poku-e/kitchen/internal/model"
)

// Record is one importable stock item and where it came from.
type Record struct {
	Line int
	Item model.StockItem
}

// RowError explains why a source row was not imported.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Line, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

// Sheet is the result of reading an import file. Bad rows are collected in
// Skipped instead of failing the whole read.
type Sheet struct {
	Records []Record
	Skipped []RowError
}

func (s *Sheet) skip(line int, err error) {
	s.Skipped = append(s.Skipped, RowError{Line: line, Err: err})
}

// ReadStockFile reads stock items from an .html, .csv or .xlsx file. selector
// picks the table in HTML input; empty means the first table.
func ReadStockFile(path, selector string) (Sheet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Sheet{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case CSV:
		return ReadStockCSV(f)
	case XLSX:
		return ReadStockXLSX(f)
	default:
		return ReadStockHTML(f, selector)
	}
}

// ---------- CSV / XLSX ----------

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no rows")
	}
	return records, nil
}

func ReadStockCSV(r io.Reader) (Sheet, error) {
	records, err := readCSV(r)
	if err != nil {
		return Sheet{}, err
	}
	return stockFromRecords(records)
}

func ReadStockXLSX(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Sheet{}, fmt.Errorf("read xlsx: %w", err)
	}
	if len(rows) == 0 {
		return Sheet{}, fmt.Errorf("xlsx has no rows")
	}
	return stockFromRecords(rows)
}

// headerKey folds "Unit cost", "unit_cost" and "unitCost" to the same key.
func headerKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stockFromRecords(records [][]string) (Sheet, error) {
	headers := map[string]int{}
	for i, h := range records[0] {
		headers[headerKey(h)] = i
	}
	col := func(name string) (int, bool) {
		i, ok := headers[headerKey(name)]
		return i, ok
	}

	req := []string{"name", "unit", "quantity", "unit_cost"}
	for _, r := range req {
		if _, ok := col(r); !ok {
			return Sheet{}, fmt.Errorf("missing required column: %s", r)
		}
	}

	cell := func(row []string, name string) string {
		if idx, ok := col(name); ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var sheet Sheet
	for r := 1; r < len(records); r++ {
		row, line := records[r], r+1
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		name := cell(row, "name")
		if name == "" {
			sheet.skip(line, fmt.Errorf("empty name"))
			continue
		}
		unit, err := model.ParseUnit(cell(row, "unit"))
		if err != nil {
			sheet.skip(line, err)
			continue
		}
		qty, err := parseCellNumber(cell(row, "quantity"))
		if err != nil {
			sheet.skip(line, fmt.Errorf("quantity: %w", err))
			continue
		}
		cost, err := parseCellNumber(cell(row, "unit_cost"))
		if err != nil {
			sheet.skip(line, fmt.Errorf("unit cost: %w", err))
			continue
		}
		sheet.Records = append(sheet.Records, Record{
			Line: line,
			Item: model.NewStockItem(name, cell(row, "category"), unit, qty, cost),
		})
	}
	return sheet, nil
}

// parseCellNumber accepts plain numbers ("1500.5") and the grouped form the
// pages display ("1.500,5 so'm"). An empty cell is zero.
func parseCellNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}
	return parseLocalized(s)
}

// ---------- Import ----------

// StockSaver is the part of datasync.Inventory an import needs.
type StockSaver interface {
	Save(ctx context.Context, id string, item model.StockItem) ([]model.StockItem, error)
}

type ImportResult struct {
	Created int
	Failed  []RowError
}

// Import creates every record, one request at a time, and keeps going past
// failures. It stops early only when ctx is done.
func Import(ctx context.Context, dst StockSaver, sheet Sheet, logger *zap.Logger) ImportResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res ImportResult
	for _, rec := range sheet.Records {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, RowError{Line: rec.Line, Err: err})
			continue
		}
		if _, err := dst.Save(ctx, "", rec.Item); err != nil {
			logger.Warn("Import row failed", zap.Int("row", rec.Line), zap.String("name", rec.Item.Name), zap.Error(err))
			res.Failed = append(res.Failed, RowError{Line: rec.Line, Err: err})
			continue
		}
		res.Created++
	}
	logger.Info("Import finished", zap.Int("created", res.Created), zap.Int("failed", len(res.Failed)), zap.Int("skipped", len(sheet.Skipped)))
	return res
}
