// piece/piece.go
package piece

import "fmt"

// Size is the edge length of every piece grid.
const Size = 4

// Count is the number of templates in the catalog.
const Count = 7

// Rotations is the number of distinct quarter turns.
const Rotations = 4

// Grid is the occupancy of a single piece, row-major.
type Grid [Size][Size]bool

// Template is one of the seven canonical shapes.
type Template struct {
	ID   int
	grid Grid
}

// Grid returns a copy of the template occupancy.
func (t *Template) Grid() Grid {
	return t.grid
}

// Descriptor is the complete wire form of a piece: catalog id plus the number
// of clockwise quarter turns applied to it.
type Descriptor struct {
	ID       int `json:"id"`
	Rotation int `json:"rotation"`
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%d/%d", d.ID, d.Rotation)
}

// Valid reports whether d names a catalog template and a rotation in range.
func (d Descriptor) Valid() bool {
	return d.ID >= 0 && d.ID < Count && d.Rotation >= 0 && d.Rotation < Rotations
}

// encoded holds one bit row per grid row, bit j set means column j occupied.
var encoded = [Count][]uint8{
	{15},
	{7, 4},
	{7, 1},
	{3, 3},
	{6, 3},
	{7, 2},
	{3, 6},
}

var catalog = func() [Count]*Template {
	var out [Count]*Template
	for id, rows := range encoded {
		out[id] = &Template{ID: id, grid: expand(rows)}
	}
	return out
}()

func expand(rows []uint8) Grid {
	var g Grid
	for i := 0; i < Size; i++ {
		var c uint8
		if i < len(rows) {
			c = rows[i]
		}
		for j := 0; j < Size; j++ {
			g[i][j] = c&1 == 1
			c >>= 1
		}
	}
	return g
}

// Lookup returns the template with the given id.
func Lookup(id int) (*Template, error) {
	if id < 0 || id >= Count {
		return nil, fmt.Errorf("piece: unknown template %d", id)
	}
	return catalog[id], nil
}

// Templates returns the full catalog in id order.
func Templates() []*Template {
	out := make([]*Template, Count)
	copy(out, catalog[:])
	return out
}
