// board/board.go
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wfunc/blockduel/piece"
)

const (
	Height = 22
	Width  = 11
)

// ErrInvalidRow is returned for a garbage descriptor of the wrong length or
// with a character outside '0'..'7'.
var ErrInvalidRow = errors.New("invalid garbage row")

// Board is one player's grid. A cell holds 0 when empty, otherwise the id of
// the piece that filled it plus one.
type Board struct {
	cells [Height][Width]uint8
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// Cell returns the raw content of (row, col).
func (b *Board) Cell(row, col int) uint8 {
	return b.cells[row][col]
}

// IsEmpty reports whether a piece cell may occupy (row, col). Rows above the
// visible board are always empty; columns out of range never are.
func (b *Board) IsEmpty(row, col int) bool {
	return col >= 0 && col < Width && (row < 0 || row < Height && b.cells[row][col] == 0)
}

// CanPlace reports whether every occupied cell of p fits on empty cells with
// the grid's top-left corner at (row, col).
func (b *Board) CanPlace(p *piece.Instance, row, col int) bool {
	for i := 0; i < piece.Size; i++ {
		for j := 0; j < piece.Size; j++ {
			if p.Grid[i][j] && !b.IsEmpty(row+i, col+j) {
				return false
			}
		}
	}
	return true
}

// Place writes p into the board at its current position. Cells above the
// visible board are dropped.
func (b *Board) Place(p *piece.Instance) {
	marker := uint8(p.TemplateID + 1)
	for i := 0; i < piece.Size; i++ {
		for j := 0; j < piece.Size; j++ {
			r, c := p.Row+i, p.Col+j
			if !p.Grid[i][j] || r < 0 || r >= Height || c < 0 || c >= Width {
				continue
			}
			b.cells[r][c] = marker
		}
	}
}

// ClearFullRows removes every full row, shifting the rows above it down, and
// returns how many were removed.
func (b *Board) ClearFullRows() int {
	cleared := 0
	for i := Height - 1; i >= 0; i-- {
		if !b.rowFull(i) {
			continue
		}
		for k := i; k > 0; k-- {
			b.cells[k] = b.cells[k-1]
		}
		b.cells[0] = [Width]uint8{}
		cleared++
		// a new row has arrived at i
		i++
	}
	return cleared
}

func (b *Board) rowFull(i int) bool {
	for j := 0; j < Width; j++ {
		if b.cells[i][j] == 0 {
			return false
		}
	}
	return true
}

// InjectGarbage pushes rows in at the bottom, shifting the board up and
// discarding as many rows from the top. When more rows than Height are
// supplied only the last Height take effect. Nothing changes on error.
func (b *Board) InjectGarbage(rows []string) error {
	parsed := make([][Width]uint8, len(rows))
	for i, row := range rows {
		r, err := ParseRow(row)
		if err != nil {
			return fmt.Errorf("garbage row %d: %w", i, err)
		}
		parsed[i] = r
	}
	if len(parsed) > Height {
		parsed = parsed[len(parsed)-Height:]
	}

	count := len(parsed)
	for i := 0; i < Height-count; i++ {
		b.cells[i] = b.cells[i+count]
	}
	for i := Height - count; i < Height; i++ {
		b.cells[i] = parsed[i-(Height-count)]
	}
	return nil
}

// ParseRow decodes a row descriptor such as "01020030405".
func ParseRow(s string) ([Width]uint8, error) {
	var row [Width]uint8
	if len(s) != Width {
		return row, fmt.Errorf("%w: length %d, want %d", ErrInvalidRow, len(s), Width)
	}
	for j := 0; j < Width; j++ {
		ch := s[j]
		if ch < '0' || ch > '0'+piece.Count {
			return row, fmt.Errorf("%w: character %q at %d", ErrInvalidRow, ch, j)
		}
		row[j] = ch - '0'
	}
	return row, nil
}

// Row encodes row i in the descriptor format used for garbage.
func (b *Board) Row(i int) string {
	var sb strings.Builder
	for j := 0; j < Width; j++ {
		sb.WriteByte('0' + b.cells[i][j])
	}
	return sb.String()
}

// String renders the board one descriptor row per line.
func (b *Board) String() string {
	var sb strings.Builder
	for i := 0; i < Height; i++ {
		sb.WriteString(b.Row(i))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SpawnPosition returns where a freshly drawn piece enters the board: its
// bottom row on the top visible row, columns roughly centered.
func SpawnPosition(p *piece.Instance) (row, col int) {
	return -p.Grid.Height() + 1, Width/2 - 1
}
