package board

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/wfunc/blockduel/piece"
)

func fillRow(b *Board, row int, marker uint8) {
	for j := 0; j < Width; j++ {
		b.cells[row][j] = marker
	}
}

func mustPiece(t *testing.T, id, rotation int) *piece.Instance {
	t.Helper()
	p, err := piece.New(piece.Descriptor{ID: id, Rotation: rotation})
	if err != nil {
		t.Fatalf("piece.New failed: %v", err)
	}
	return p
}

func TestBoard_IsEmpty(t *testing.T) {
	b := New()
	b.cells[Height-1][3] = 2

	cases := []struct {
		name     string
		row, col int
		want     bool
	}{
		{"above board", -3, 0, true},
		{"empty cell", 5, 5, true},
		{"occupied cell", Height - 1, 3, false},
		{"left of board", 0, -1, false},
		{"right of board", 0, Width, false},
		{"above board but out of columns", -1, Width, false},
		{"below board", Height, 0, false},
	}
	for _, c := range cases {
		if got := b.IsEmpty(c.row, c.col); got != c.want {
			t.Errorf("%s: IsEmpty(%d,%d) = %v, want %v", c.name, c.row, c.col, got, c.want)
		}
	}
}

func TestBoard_CanPlaceAndPlace(t *testing.T) {
	b := New()
	bar := mustPiece(t, 0, 0)

	if !b.CanPlace(bar, Height-1, 0) {
		t.Fatal("Expected the bar to fit on the bottom row")
	}
	if b.CanPlace(bar, Height-1, Width-3) {
		t.Error("Expected the bar to overflow the right edge")
	}
	if b.CanPlace(bar, Height, 0) {
		t.Error("Expected the bar to overflow the bottom edge")
	}

	bar.SetPosition(Height-1, 2)
	b.Place(bar)
	for j := 2; j < 6; j++ {
		if b.Cell(Height-1, j) != 1 {
			t.Errorf("Expected marker 1 at column %d, got %d", j, b.Cell(Height-1, j))
		}
	}
	if b.CanPlace(bar, Height-1, 0) {
		t.Error("Expected placement over occupied cells to fail")
	}
}

func TestBoard_PlaceDropsCellsAboveBoard(t *testing.T) {
	b := New()
	vertical := mustPiece(t, 0, 1)
	vertical.SetPosition(-2, 0)
	b.Place(vertical)
	if b.Cell(0, 0) != 1 || b.Cell(1, 0) != 1 {
		t.Error("Expected the visible part of the piece to be written")
	}
	if b.Cell(2, 0) != 0 {
		t.Error("Expected nothing below the piece")
	}
}

func TestBoard_ClearFullRows_NoneFull(t *testing.T) {
	b := New()
	b.cells[Height-1][0] = 3
	b.cells[10][4] = 1
	before := *b

	if n := b.ClearFullRows(); n != 0 {
		t.Errorf("Expected 0 rows cleared, got %d", n)
	}
	if *b != before {
		t.Error("Expected the grid to be unchanged")
	}
}

func TestBoard_ClearFullRows_Adjacent(t *testing.T) {
	b := New()
	fillRow(b, Height-1, 1)
	fillRow(b, Height-2, 2)
	b.cells[Height-3][0] = 5
	fillRow(b, Height-4, 3)
	b.cells[Height-5][7] = 6

	if n := b.ClearFullRows(); n != 3 {
		t.Fatalf("Expected 3 rows cleared, got %d", n)
	}
	if b.Cell(Height-1, 0) != 5 {
		t.Errorf("Expected the partial row to land on the bottom, got %q", b.Row(Height-1))
	}
	if b.Cell(Height-2, 7) != 6 {
		t.Errorf("Expected the top partial row above it, got %q", b.Row(Height-2))
	}
	for i := 0; i < Height-2; i++ {
		if b.Row(i) != strings.Repeat("0", Width) {
			t.Errorf("Expected row %d to be empty, got %q", i, b.Row(i))
		}
	}
}

func TestBoard_InjectGarbage(t *testing.T) {
	b := New()
	b.cells[Height-1][2] = 4
	b.cells[0][0] = 1

	rows := []string{"10000000000", "01000000000"}
	if err := b.InjectGarbage(rows); err != nil {
		t.Fatalf("InjectGarbage failed: %v", err)
	}
	if b.Row(Height-2) != rows[0] || b.Row(Height-1) != rows[1] {
		t.Errorf("Garbage not written at the bottom: %q %q", b.Row(Height-2), b.Row(Height-1))
	}
	if b.Cell(Height-3, 2) != 4 {
		t.Error("Expected the old bottom row to rise by two")
	}
	if b.Row(0) != strings.Repeat("0", Width) {
		t.Error("Expected the old top row to be discarded")
	}
}

func TestBoard_InjectGarbage_RoundTrip(t *testing.T) {
	b := New()
	b.cells[Height-1][1] = 2
	b.cells[Height-2][5] = 7
	b.cells[12][9] = 3
	before := *b

	full := strings.Repeat("5", Width)
	if err := b.InjectGarbage([]string{full, full, full}); err != nil {
		t.Fatalf("InjectGarbage failed: %v", err)
	}
	if n := b.ClearFullRows(); n != 3 {
		t.Fatalf("Expected 3 rows cleared, got %d", n)
	}
	if *b != before {
		t.Errorf("Expected the board to return to its prior occupancy, got\n%s", b)
	}
}

func TestBoard_InjectGarbage_Invalid(t *testing.T) {
	b := New()
	b.cells[Height-1][0] = 1
	before := *b

	for _, rows := range [][]string{
		{"123"},
		{"00000000008", "00000000000"},
		{"0000000000x"},
	} {
		err := b.InjectGarbage(rows)
		if !errors.Is(err, ErrInvalidRow) {
			t.Errorf("InjectGarbage(%v): expected ErrInvalidRow, got %v", rows, err)
		}
	}
	if *b != before {
		t.Error("Expected a rejected injection to leave the board unchanged")
	}
}

func TestBoard_InjectGarbage_TallerThanBoard(t *testing.T) {
	b := New()
	rows := make([]string, Height+2)
	for i := range rows {
		rows[i] = strings.Repeat("0", Width)
	}
	rows[2] = strings.Repeat("1", Width)
	rows[len(rows)-1] = strings.Repeat("2", Width)

	if err := b.InjectGarbage(rows); err != nil {
		t.Fatalf("InjectGarbage failed: %v", err)
	}
	if b.Row(0) != rows[2] {
		t.Errorf("Expected only the last %d rows to be kept, top row is %q", Height, b.Row(0))
	}
	if b.Row(Height-1) != rows[len(rows)-1] {
		t.Errorf("Unexpected bottom row %q", b.Row(Height-1))
	}
}

func TestSpawnPosition(t *testing.T) {
	bar := mustPiece(t, 0, 0)
	row, col := SpawnPosition(bar)
	if row != 0 || col != Width/2-1 {
		t.Errorf("Expected (0,%d), got (%d,%d)", Width/2-1, row, col)
	}
	vertical := mustPiece(t, 0, 1)
	if row, _ := SpawnPosition(vertical); row != -3 {
		t.Errorf("Expected a vertical bar to spawn at row -3, got %d", row)
	}
}

func TestRandomGarbage(t *testing.T) {
	rows := RandomGarbage(rand.New(rand.NewSource(42)), 5)
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if _, err := ParseRow(row); err != nil {
			t.Errorf("Generated row %q does not parse: %v", row, err)
		}
	}

	again := RandomGarbage(rand.New(rand.NewSource(42)), 5)
	for i := range rows {
		if rows[i] != again[i] {
			t.Errorf("Row %d differs between identically seeded sources", i)
		}
	}
}
