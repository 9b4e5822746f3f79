package piece

import "testing"

func TestCatalog_Shapes(t *testing.T) {
	templates := Templates()
	if len(templates) != Count {
		t.Fatalf("Expected %d templates, got %d", Count, len(templates))
	}
	for i, tpl := range templates {
		if tpl.ID != i {
			t.Errorf("Expected template at index %d to have id %d, got %d", i, i, tpl.ID)
		}
		if cells := tpl.Grid().Cells(); cells != 4 {
			t.Errorf("Template %d: expected 4 occupied cells, got %d", i, cells)
		}
		if g := tpl.Grid(); Normalize(g) != g {
			t.Errorf("Template %d is not flush to the top-left corner", i)
		}
	}
}

func TestCatalog_IPieceIsHorizontalBar(t *testing.T) {
	tpl, err := Lookup(0)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	g := tpl.Grid()
	for j := 0; j < Size; j++ {
		if !g[0][j] {
			t.Errorf("Expected cell (0,%d) to be occupied", j)
		}
	}
	if g.Height() != 1 {
		t.Errorf("Expected height 1, got %d", g.Height())
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := Lookup(Count); err == nil {
		t.Error("Expected an error for an out-of-range template id")
	}
	if _, err := Lookup(-1); err == nil {
		t.Error("Expected an error for a negative template id")
	}
}

func TestRotate_FourTurnsIsIdentity(t *testing.T) {
	for _, tpl := range Templates() {
		for start := 0; start < Rotations; start++ {
			g := Rotate(tpl.Grid(), start)
			if got := Rotate(g, 4); got != g {
				t.Errorf("Template %d rotation %d: four turns changed the grid", tpl.ID, start)
			}
		}
	}
}

func TestRotate_ComposesSingleTurns(t *testing.T) {
	for _, tpl := range Templates() {
		stepwise := tpl.Grid()
		for n := 0; n <= 7; n++ {
			if direct := Rotate(tpl.Grid(), n); direct != stepwise {
				t.Errorf("Template %d: Rotate(g, %d) differs from %d single turns", tpl.ID, n, n)
			}
			stepwise = Rotate(stepwise, 1)
		}
	}
}

func TestRotate_VerticalBar(t *testing.T) {
	tpl, _ := Lookup(0)
	g := Rotate(tpl.Grid(), 1)
	if g.Height() != 4 {
		t.Fatalf("Expected rotated bar height 4, got %d", g.Height())
	}
	for i := 0; i < Size; i++ {
		if !g[i][0] {
			t.Errorf("Expected cell (%d,0) to be occupied after normalization", i)
		}
	}
}

func TestRotate_NegativeCount(t *testing.T) {
	tpl, _ := Lookup(1)
	if Rotate(tpl.Grid(), -1) != Rotate(tpl.Grid(), 3) {
		t.Error("Expected -1 turns to equal 3 turns")
	}
}

func TestNormalize_EmptyGrid(t *testing.T) {
	var g Grid
	if Normalize(g) != g {
		t.Error("Expected an empty grid to stay empty")
	}
}

func TestNew_Instance(t *testing.T) {
	inst, err := New(Descriptor{ID: 5, Rotation: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	tpl, _ := Lookup(5)
	if inst.Grid != Rotate(tpl.Grid(), 2) {
		t.Error("Instance grid does not match the rotated template")
	}

	clone := inst.Clone()
	clone.Move(1, 2)
	clone.Rotate(1)
	if inst.Row != 0 || inst.Col != 0 || inst.Grid != Rotate(tpl.Grid(), 2) {
		t.Error("Mutating a clone changed the original instance")
	}

	if _, err := New(Descriptor{ID: 9}); err == nil {
		t.Error("Expected an error for an unknown template")
	}
}

func TestDescriptor_Valid(t *testing.T) {
	cases := []struct {
		d    Descriptor
		want bool
	}{
		{Descriptor{0, 0}, true},
		{Descriptor{6, 3}, true},
		{Descriptor{7, 0}, false},
		{Descriptor{0, 4}, false},
		{Descriptor{-1, 0}, false},
	}
	for _, c := range cases {
		if got := c.d.Valid(); got != c.want {
			t.Errorf("Valid(%v) = %v, want %v", c.d, got, c.want)
		}
	}
}
