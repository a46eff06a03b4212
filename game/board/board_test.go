package board

import (
	"testing"
)

func TestCanonicalEdgeSymmetry(t *testing.T) {
	// Every adjacent pair must canonicalize identically in both orders.
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			a := Position{r, c}
			for _, d := range Directions {
				b := Position{r + d.DR, c + d.DC}
				if !InBounds(b.Row, b.Col) {
					continue
				}
				if CanonicalEdge(a, b) != CanonicalEdge(b, a) {
					t.Errorf("CanonicalEdge(%v,%v) != CanonicalEdge(%v,%v)", a, b, b, a)
				}
			}
		}
	}
}

func TestCanonicalEdgeOrdersEndpoints(t *testing.T) {
	e := CanonicalEdge(Position{5, 5}, Position{4, 5})
	if e.A != (Position{4, 5}) || e.B != (Position{5, 5}) {
		t.Errorf("expected smaller endpoint first, got A=%v B=%v", e.A, e.B)
	}
}

func TestIsInterior(t *testing.T) {
	tests := []struct {
		row, col int
		want     bool
	}{
		{1, 1, true},
		{9, 9, true},
		{5, 5, true},
		{0, 5, false},
		{10, 5, false},
		{5, 0, false},
		{5, 10, false},
		{-1, 5, false},
	}
	for _, tt := range tests {
		if got := IsInterior(tt.row, tt.col); got != tt.want {
			t.Errorf("IsInterior(%d,%d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestIsGoalCell(t *testing.T) {
	tests := []struct {
		row, col int
		side     GoalSide
		want     bool
	}{
		{0, 5, GoalTop, true},
		{10, 5, GoalBottom, true},
		{5, 0, GoalLeft, true},
		{5, 10, GoalRight, true},
		{0, 5, GoalBottom, false},
		{10, 5, GoalTop, false},
		{5, 5, GoalTop, false},
	}
	for _, tt := range tests {
		if got := IsGoalCell(tt.row, tt.col, tt.side); got != tt.want {
			t.Errorf("IsGoalCell(%d,%d,%s) = %v, want %v", tt.row, tt.col, tt.side, got, tt.want)
		}
	}
}

func TestBarrierEdges(t *testing.T) {
	// H at (3,5) blocks (3,5)-(4,5) and (3,6)-(4,6).
	e1, e2 := BarrierEdges(3, 5, Horizontal)
	if e1 != CanonicalEdge(Position{3, 5}, Position{4, 5}) {
		t.Errorf("H first edge = %v", e1)
	}
	if e2 != CanonicalEdge(Position{3, 6}, Position{4, 6}) {
		t.Errorf("H second edge = %v", e2)
	}

	// V at (3,5) blocks (3,5)-(3,6) and (4,5)-(4,6).
	e1, e2 = BarrierEdges(3, 5, Vertical)
	if e1 != CanonicalEdge(Position{3, 5}, Position{3, 6}) {
		t.Errorf("V first edge = %v", e1)
	}
	if e2 != CanonicalEdge(Position{4, 5}, Position{4, 6}) {
		t.Errorf("V second edge = %v", e2)
	}
}

// TestNoAnchorBlocksGoalEdges enumerates every valid anchor and confirms
// none of them produces an edge crossing a goal border: the winning step
// onto any border cell can never be walled off.
func TestNoAnchorBlocksGoalEdges(t *testing.T) {
	isGoalCrossing := func(e Edge) bool {
		// An edge crosses a border when exactly one endpoint is interior
		// and the other sits on a border row/column.
		aIn := IsInterior(e.A.Row, e.A.Col)
		bIn := IsInterior(e.B.Row, e.B.Col)
		return aIn != bIn
	}

	for r := -1; r <= GridSize; r++ {
		for c := -1; c <= GridSize; c++ {
			for _, o := range []Orientation{Horizontal, Vertical} {
				if !ValidAnchor(r, c, o) {
					continue
				}
				e1, e2 := BarrierEdges(r, c, o)
				if isGoalCrossing(e1) || isGoalCrossing(e2) {
					t.Errorf("anchor (%d,%d,%s) produces a goal-crossing edge: %v %v", r, c, o, e1, e2)
				}
			}
		}
	}
}

func TestValidAnchorRanges(t *testing.T) {
	tests := []struct {
		row, col int
		o        Orientation
		want     bool
	}{
		{1, 1, Horizontal, true},
		{8, 8, Horizontal, true},
		{1, 0, Horizontal, true},
		{0, 5, Horizontal, false}, // would block the TOP goal edges
		{9, 5, Horizontal, false}, // would block the BOTTOM goal edges
		{1, 9, Horizontal, false},
		{0, 1, Vertical, true},
		{8, 8, Vertical, true},
		{5, 0, Vertical, false}, // would block the LEFT goal edges
		{5, 9, Vertical, false}, // would block the RIGHT goal edges
		{9, 5, Vertical, false},
		{5, 5, "X", false},
	}
	for _, tt := range tests {
		if got := ValidAnchor(tt.row, tt.col, tt.o); got != tt.want {
			t.Errorf("ValidAnchor(%d,%d,%s) = %v, want %v", tt.row, tt.col, tt.o, got, tt.want)
		}
	}
}

func TestEdgeSetWith(t *testing.T) {
	base := NewEdgeSet()
	e1 := CanonicalEdge(Position{1, 1}, Position{2, 1})
	e2 := CanonicalEdge(Position{1, 2}, Position{2, 2})
	base.Add(e1)

	extended := base.With(e2)
	if !extended.Has(e1) || !extended.Has(e2) {
		t.Error("With should contain both old and new edges")
	}
	if base.Has(e2) {
		t.Error("With must not mutate the receiver")
	}
}

func TestManhattanDistance(t *testing.T) {
	if d := ManhattanDistance(Position{1, 1}, Position{4, 5}); d != 7 {
		t.Errorf("ManhattanDistance = %d, want 7", d)
	}
	if d := ManhattanDistance(Position{4, 5}, Position{1, 1}); d != 7 {
		t.Errorf("ManhattanDistance reversed = %d, want 7", d)
	}
}
