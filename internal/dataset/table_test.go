package dataset

import (
	"errors"
	"testing"
)

func fixtureTable(t *testing.T) *Table {
	t.Helper()
	rows := [][]float64{
		{45, 48, 93},
		{42, 40, 82},
		{30, 35, 65},
		{20, 22, 42},
		{10, 12, 25}, // total off by 3
	}
	tbl, err := NewTable("fixture", DefaultSchema().Columns(), rows)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestNewTableRejectsBadShapes(t *testing.T) {
	if _, err := NewTable("x", []string{"a", "b"}, nil); err == nil {
		t.Fatalf("expected error for two columns")
	}
	if _, err := NewTable("x", DefaultSchema().Columns(), [][]float64{{1, 2}}); err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestTableCopiesInput(t *testing.T) {
	rows := [][]float64{{1, 2, 3}}
	tbl, err := NewTable("x", DefaultSchema().Columns(), rows)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	rows[0][0] = 99
	if tbl.Row(0)[0] != 1 {
		t.Fatalf("table aliases caller rows")
	}
	r := tbl.Row(0)
	r[0] = 77
	if tbl.Row(0)[0] != 1 {
		t.Fatalf("Row exposes internal storage")
	}
}

func TestHeadTailPreserveOrder(t *testing.T) {
	tbl := fixtureTable(t)

	head := tbl.Head(2)
	if head.Len() != 2 || head.Index(0) != 0 || head.Index(1) != 1 {
		t.Fatalf("head indices = %v", head.Indices())
	}
	tail := tbl.Tail(2)
	if tail.Len() != 2 || tail.Index(0) != 3 || tail.Index(1) != 4 {
		t.Fatalf("tail indices = %v", tail.Indices())
	}
	essay, err := tail.Column("Redação")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if essay[0] != 20 || essay[1] != 10 {
		t.Fatalf("tail essay = %v", essay)
	}
	if got := tbl.Tail(50).Len(); got != tbl.Len() {
		t.Fatalf("oversized tail len = %d", got)
	}
	if got := tbl.Slice(1, 3).Indices(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("slice indices = %v", got)
	}
}

func TestSelect(t *testing.T) {
	tbl := fixtureTable(t)
	s, err := tbl.Select([]int{4, 0})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if s.Row(0)[TotalCol] != 25 || s.Row(1)[TotalCol] != 93 {
		t.Fatalf("select rows out of order")
	}
	if _, err := tbl.Select([]int{5}); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestColumnUnknown(t *testing.T) {
	tbl := fixtureTable(t)
	if _, err := tbl.Column("Nome"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
	if _, err := tbl.Column("  entrevista "); err != nil {
		t.Fatalf("column lookup should fold case and space: %v", err)
	}
}

func TestTotalMismatches(t *testing.T) {
	tbl := fixtureTable(t)
	got := tbl.TotalMismatches(0.01)
	if len(got) != 1 || got[0] != 4 {
		t.Fatalf("mismatches = %v, want [4]", got)
	}

	// A well-formed synthetic fixture satisfies the relation everywhere.
	rows := make([][]float64, 0, 20)
	for i := 0; i < 20; i++ {
		e := float64(i) * 2.5
		v := 50 - float64(i)*1.25
		rows = append(rows, []float64{e, v, e + v})
	}
	ok, err := NewTable("ok", DefaultSchema().Columns(), rows)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if got := ok.TotalMismatches(1e-9); len(got) != 0 {
		t.Fatalf("unexpected mismatches %v", got)
	}
}

func TestPoints(t *testing.T) {
	tbl := fixtureTable(t)
	pts, cols, err := Points(tbl.Tail(2), []string{"total", "Redação"})
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(pts) != 2 || len(pts[0]) != 2 {
		t.Fatalf("shape = %d rows, %v", len(pts), pts)
	}
	if cols[0] != "Total" || cols[1] != "Redação" {
		t.Fatalf("cols = %v, want table spelling", cols)
	}
	last := tbl.Row(tbl.Len() - 1)
	if pts[1][0] != last[TotalCol] || pts[1][1] != last[EssayCol] {
		t.Fatalf("row = %v, want [%v %v]", pts[1], last[TotalCol], last[EssayCol])
	}
	// Rows are copies.
	pts[1][0] = -1
	if tbl.Row(tbl.Len() - 1)[TotalCol] == -1 {
		t.Fatalf("Points aliased table storage")
	}
	all, cols, err := Points(tbl, nil)
	if err != nil || len(all) != tbl.Len() || len(cols) != 3 {
		t.Fatalf("all columns: %d rows, cols %v, err %v", len(all), cols, err)
	}
	if _, _, err := Points(tbl, []string{"Nome"}); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v", err)
	}
}
