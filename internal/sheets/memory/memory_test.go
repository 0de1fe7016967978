package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"smartcents/internal/sheets"
)

func row(id, categoryID string) sheets.Row {
	return sheets.Row{
		Date:          "2024-03-01",
		Type:          "expense",
		Amount:        decimal.RequireFromString("9.99"),
		Category:      "Food",
		Description:   "t",
		TransactionID: id,
		CategoryID:    categoryID,
	}
}

func TestAppendIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, row("t1", "food"))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, err = s.Append(ctx, row("t1", "food"))
	if err != nil || ref != "mem:1" {
		t.Fatalf("repeated append: ref=%q err=%v", ref, err)
	}
	if len(s.Rows()) != 1 {
		t.Fatalf("expected one row, got %d", len(s.Rows()))
	}

	if _, err := s.Append(ctx, row("", "food")); err == nil {
		t.Fatal("expected error for row without transaction id")
	}
}

func TestDeleteAndClearCategory(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, r := range []sheets.Row{row("t1", "food"), row("t2", "rent"), row("t3", "food")} {
		if _, err := s.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	n, err := s.ClearCategory(ctx, "food")
	if err != nil || n != 2 {
		t.Fatalf("ClearCategory = %d, %v", n, err)
	}

	removed, err := s.DeleteTransaction(ctx, "t2")
	if err != nil || !removed {
		t.Fatalf("DeleteTransaction = %v, %v", removed, err)
	}
	removed, _ = s.DeleteTransaction(ctx, "t2")
	if removed {
		t.Fatal("second delete should report nothing removed")
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[0].TransactionID != "t1" || rows[1].TransactionID != "t3" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	for _, r := range rows {
		if r.Category != "" || r.CategoryID != "" {
			t.Errorf("category not cleared on %s", r.TransactionID)
		}
	}
}
