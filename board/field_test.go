package board

import (
	"testing"

	"github.com/wfunc/blockduel/piece"
)

func TestField_NewPieceSpawns(t *testing.T) {
	f := NewField()
	queue := []piece.Descriptor{{ID: 3}, {ID: 1, Rotation: 2}, {ID: 6, Rotation: 1}}

	ok, err := f.NewPiece(queue)
	if err != nil || !ok {
		t.Fatalf("Expected spawn to succeed, got ok=%v err=%v", ok, err)
	}
	cur := f.Current()
	if cur == nil || cur.TemplateID != 3 {
		t.Fatalf("Expected the square piece to be current, got %+v", cur)
	}
	if cur.Row != -1 || cur.Col != Width/2-1 {
		t.Errorf("Unexpected spawn position (%d,%d)", cur.Row, cur.Col)
	}
	if len(f.Next()) != 2 || f.Next()[0] != queue[1] {
		t.Errorf("Expected the rest of the queue as lookahead, got %v", f.Next())
	}
}

func TestField_NewPieceOnFullBoard(t *testing.T) {
	f := NewField()
	for j := 0; j < Width; j++ {
		if j != 0 {
			f.cells[0][j] = 1
		}
	}
	ok, err := f.NewPiece([]piece.Descriptor{{ID: 3}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected spawn to fail when the top row is blocked")
	}
	if f.Current() != nil {
		t.Error("Expected no current piece after a failed spawn")
	}
}

func TestField_NewPieceErrors(t *testing.T) {
	f := NewField()
	if _, err := f.NewPiece(nil); err == nil {
		t.Error("Expected an error for an empty queue")
	}
	if _, err := f.NewPiece([]piece.Descriptor{{ID: 12}}); err == nil {
		t.Error("Expected an error for an unknown piece")
	}
}

func TestField_MoveAndRotate(t *testing.T) {
	f := NewField()
	if f.Move(1, 0) || f.Rotate() {
		t.Error("Expected no movement without a current piece")
	}

	f.NewPiece([]piece.Descriptor{{ID: 0}})
	for f.Move(0, -1) {
	}
	if f.Current().Col != 0 {
		t.Errorf("Expected the bar to stop at the left wall, got column %d", f.Current().Col)
	}

	if !f.Rotate() {
		t.Fatal("Expected rotation to succeed")
	}
	if f.Current().Grid.Height() != 4 {
		t.Error("Expected a vertical bar after one rotation")
	}
}

func TestField_RotateBlocked(t *testing.T) {
	f := NewField()
	f.NewPiece([]piece.Descriptor{{ID: 0}})
	for f.Move(1, 0) {
	}
	before := *f.Current()

	// A vertical bar would reach below the bottom row.
	if f.Rotate() {
		t.Fatal("Expected rotation at the bottom to fail")
	}
	if *f.Current() != before {
		t.Error("Expected a failed rotation to leave the piece unchanged")
	}
}

func TestField_HardDropClearsRow(t *testing.T) {
	f := NewField()
	for j := 0; j < Width; j++ {
		if j < Width/2-1 || j >= Width/2+3 {
			f.cells[Height-1][j] = 7
		}
	}
	f.NewPiece([]piece.Descriptor{{ID: 0}})

	if n := f.HardDrop(); n != 1 {
		t.Fatalf("Expected 1 cleared row, got %d", n)
	}
	if f.Current() != nil {
		t.Error("Expected the piece to be consumed")
	}
	for j := 0; j < Width; j++ {
		if f.Cell(Height-1, j) != 0 {
			t.Errorf("Expected the bottom row to be empty, got %q", f.Row(Height-1))
			break
		}
	}
}
