package piece

// Rotate turns g clockwise count times and moves the occupied cells flush to
// the top-left corner. Negative counts are treated modulo Rotations.
func Rotate(g Grid, count int) Grid {
	count %= Rotations
	if count < 0 {
		count += Rotations
	}
	for c := 0; c < count; c++ {
		var next Grid
		for i := 0; i < Size; i++ {
			for j := 0; j < Size; j++ {
				next[i][j] = g[j][Size-1-i]
			}
		}
		g = next
	}
	return Normalize(g)
}

// Normalize trims leading empty rows and columns. An empty grid is returned
// unchanged.
func Normalize(g Grid) Grid {
	top, left := -1, -1
	for i := 0; i < Size && top < 0; i++ {
		for j := 0; j < Size; j++ {
			if g[i][j] {
				top = i
				break
			}
		}
	}
	if top < 0 {
		return g
	}
	for j := 0; j < Size && left < 0; j++ {
		for i := 0; i < Size; i++ {
			if g[i][j] {
				left = j
				break
			}
		}
	}

	var out Grid
	for i := top; i < Size; i++ {
		for j := left; j < Size; j++ {
			out[i-top][j-left] = g[i][j]
		}
	}
	return out
}

// Height returns the number of rows holding at least one occupied cell.
func (g Grid) Height() int {
	h := 0
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if g[i][j] {
				h++
				break
			}
		}
	}
	return h
}

// Cells returns the number of occupied cells.
func (g Grid) Cells() int {
	n := 0
	for i := range g {
		for j := range g[i] {
			if g[i][j] {
				n++
			}
		}
	}
	return n
}

// Instance is a materialized piece: template, rotated grid and position of
// the grid's top-left cell on a board.
type Instance struct {
	TemplateID int
	Grid       Grid
	Row        int
	Col        int
}

// New materializes d from the catalog. The position is left at the origin.
func New(d Descriptor) (*Instance, error) {
	t, err := Lookup(d.ID)
	if err != nil {
		return nil, err
	}
	return &Instance{
		TemplateID: t.ID,
		Grid:       Rotate(t.grid, d.Rotation),
	}, nil
}

// SetPosition places the top-left cell of the grid at (row, col).
func (p *Instance) SetPosition(row, col int) {
	p.Row = row
	p.Col = col
}

// Move shifts the instance by the given offsets.
func (p *Instance) Move(dRow, dCol int) {
	p.Row += dRow
	p.Col += dCol
}

// Rotate applies count further clockwise quarter turns in place.
func (p *Instance) Rotate(count int) {
	p.Grid = Rotate(p.Grid, count)
}

// Clone returns an independent copy.
func (p *Instance) Clone() *Instance {
	c := *p
	return &c
}
