package ledger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"smartcents/internal/core"
	"smartcents/internal/log"
)

var exportHeader = []string{"Date", "Type", "Amount", "Category", "Description"}

const xlsxSheet = "Transactions"

// ExportCSV writes the filtered transactions as CSV, in query order.
func (s *Service) ExportCSV(ctx context.Context, userID string, f Filter, w io.Writer) error {
	txs, cats, err := s.Snapshot(ctx, userID, f)
	if err != nil {
		return err
	}
	if err := WriteCSV(w, txs, cats); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	s.logger.InfoContext(ctx, "Transactions exported", log.FieldOperation, log.OpExport, "format", "csv", log.FieldCount, len(txs))
	return nil
}

// WriteCSV is the pure projection behind ExportCSV. The Category column holds
// the category name, empty when uncategorized or unresolvable. Description is
// always quoted with embedded quotes doubled; other fields are quoted only
// when they contain a separator, quote or line break.
func WriteCSV(w io.Writer, txs []core.Transaction, categories []core.Category) error {
	names := categoryNames(categories)
	bw := bufio.NewWriter(w)

	bw.WriteString(strings.Join(exportHeader, ","))
	bw.WriteByte('\n')
	for _, t := range txs {
		fields := []string{
			t.Date.String(),
			string(t.Type),
			core.FormatAmount(t.Amount),
			quoteIfNeeded(categoryName(t, names)),
			quote(t.Description),
		}
		bw.WriteString(strings.Join(fields, ","))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ExportXLSX writes the same projection as ExportCSV as an Excel workbook.
func (s *Service) ExportXLSX(ctx context.Context, userID string, f Filter, w io.Writer) error {
	txs, cats, err := s.Snapshot(ctx, userID, f)
	if err != nil {
		return err
	}
	if err := WriteXLSX(w, txs, cats); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	s.logger.InfoContext(ctx, "Transactions exported", log.FieldOperation, log.OpExport, "format", "xlsx", log.FieldCount, len(txs))
	return nil
}

func WriteXLSX(w io.Writer, txs []core.Transaction, categories []core.Category) error {
	names := categoryNames(categories)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for i, t := range txs {
		if err := setRow(f, i+2, []any{
			t.Date.String(),
			string(t.Type),
			t.Amount.InexactFloat64(),
			categoryName(t, names),
			t.Description,
		}); err != nil {
			return err
		}
	}

	for _, cw := range xlsxColumnWidths {
		if err := f.SetColWidth(xlsxSheet, cw.col, cw.col, cw.width); err != nil {
			return fmt.Errorf("column %s width: %w", cw.col, err)
		}
	}

	return f.Write(w)
}

var xlsxColumnWidths = []struct {
	col   string
	width float64
}{
	{"A", 12}, {"B", 10}, {"C", 12}, {"D", 18}, {"E", 40},
}

// setRow writes values into row (1-based) starting at column A.
func setRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell %d,%d: %w", col+1, row, err)
		}
		if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func categoryNames(categories []core.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func categoryName(t core.Transaction, names map[string]string) string {
	if t.IsUncategorized() {
		return ""
	}
	return names[*t.CategoryID]
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
