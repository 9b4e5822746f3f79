package board

import (
	"fmt"

	"github.com/wfunc/blockduel/piece"
)

// Field is a board together with the piece currently falling through it.
// Clients keep one for their own shaft and one mirroring the opponent.
type Field struct {
	*Board
	current *piece.Instance
	next    []piece.Descriptor
}

// NewField returns a field with an empty board and no falling piece.
func NewField() *Field {
	return &Field{Board: New()}
}

// Reset empties the board and drops the current piece.
func (f *Field) Reset() {
	f.Board = New()
	f.current = nil
	f.next = nil
}

// Current returns the falling piece, or nil between drops.
func (f *Field) Current() *piece.Instance {
	return f.current
}

// Next returns the upcoming pieces shown next to the field.
func (f *Field) Next() []piece.Descriptor {
	return f.next
}

// NewPiece spawns queue[0] and remembers the rest as lookahead. It returns
// false when the piece cannot be placed at the spawn position, i.e. the board
// is full and the owning player has lost.
func (f *Field) NewPiece(queue []piece.Descriptor) (bool, error) {
	if len(queue) == 0 {
		return false, fmt.Errorf("board: empty piece queue")
	}
	p, err := piece.New(queue[0])
	if err != nil {
		return false, err
	}
	p.SetPosition(SpawnPosition(p))
	f.next = append(f.next[:0], queue[1:]...)
	if !f.CanPlace(p, p.Row, p.Col) {
		f.current = nil
		return false, nil
	}
	f.current = p
	return true, nil
}

// Move shifts the current piece if the target position is free.
func (f *Field) Move(dRow, dCol int) bool {
	if f.current == nil {
		return false
	}
	if !f.CanPlace(f.current, f.current.Row+dRow, f.current.Col+dCol) {
		return false
	}
	f.current.Move(dRow, dCol)
	return true
}

// Rotate turns the current piece once clockwise if the result fits at the
// same position.
func (f *Field) Rotate() bool {
	if f.current == nil {
		return false
	}
	clone := f.current.Clone()
	clone.Rotate(1)
	if !f.CanPlace(clone, clone.Row, clone.Col) {
		return false
	}
	f.current = clone
	return true
}

// Finish lands the current piece and returns the number of rows cleared.
func (f *Field) Finish() int {
	if f.current == nil {
		return 0
	}
	f.Place(f.current)
	f.current = nil
	return f.ClearFullRows()
}

// HardDrop moves the current piece down until it rests and lands it.
func (f *Field) HardDrop() int {
	for f.Move(1, 0) {
	}
	return f.Finish()
}
