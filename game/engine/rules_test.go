package engine

import (
	"testing"

	"github.com/gbr5/bloqueio-server/game/board"
)

// newPlayingState builds a PLAYING state with the given players seated.
func newPlayingState(mode GameMode, players ...Player) *GameState {
	return &GameState{
		Code:        "TEST01",
		Mode:        mode,
		Status:      StatusPlaying,
		Players:     players,
		CurrentTurn: players[0].ID,
	}
}

func playerAt(id, row, col int, goal board.GoalSide, walls int) Player {
	return Player{
		ID:        id,
		Pos:       board.Position{Row: row, Col: col},
		Goal:      goal,
		WallsLeft: walls,
		Type:      Human,
	}
}

func ruleCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected a rule error, got nil")
	}
	re, ok := err.(*RuleError)
	if !ok {
		t.Fatalf("expected *RuleError, got %T: %v", err, err)
	}
	return re.Code
}

func TestValidateMoveSteps(t *testing.T) {
	s := newPlayingState(FourPlayer,
		playerAt(0, 5, 5, board.GoalBottom, 6),
		playerAt(2, 9, 5, board.GoalTop, 6),
	)

	tests := []struct {
		name     string
		toRow    int
		toCol    int
		wantCode string // empty means legal
	}{
		{"step down", 6, 5, ""},
		{"step up", 4, 5, ""},
		{"step left", 5, 4, ""},
		{"step right", 5, 6, ""},
		{"same cell", 5, 5, CodeOutOfBounds},
		{"off grid", 11, 5, CodeOutOfBounds},
		{"border not goal", 5, 10, CodeOutOfBounds},
		{"occupied far cell", 9, 5, CodeOccupied}, // occupancy is checked before distance
		{"three away", 5, 8, CodeIllegalDistance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMove(s, 0, tt.toRow, tt.toCol)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("expected legal, got %v", err)
				}
				return
			}
			if got := ruleCode(t, err); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestValidateMoveOccupied(t *testing.T) {
	s := newPlayingState(FourPlayer,
		playerAt(0, 5, 5, board.GoalBottom, 6),
		playerAt(1, 5, 6, board.GoalLeft, 6),
	)
	if got := ruleCode(t, ValidateMove(s, 0, 5, 6)); got != CodeOccupied {
		t.Errorf("moving onto a pawn: code = %s, want %s", got, CodeOccupied)
	}
}

func TestValidateMoveBlockedByBarrier(t *testing.T) {
	s := newPlayingState(FourPlayer, playerAt(0, 5, 5, board.GoalBottom, 6))
	s.Barriers = []Barrier{{Row: 5, Col: 5, Orientation: board.Horizontal, PlacedBy: 0}}

	if got := ruleCode(t, ValidateMove(s, 0, 6, 5)); got != CodeBlockedByBarrier {
		t.Errorf("code = %s, want %s", got, CodeBlockedByBarrier)
	}
	// The parallel edge of the same barrier is blocked too.
	s.Players[0].Pos = board.Position{Row: 5, Col: 6}
	if got := ruleCode(t, ValidateMove(s, 0, 6, 6)); got != CodeBlockedByBarrier {
		t.Errorf("parallel edge: code = %s, want %s", got, CodeBlockedByBarrier)
	}
}

// TestStraightJump covers scenario: pawn at (5,5) jumps an adjacent pawn
// at (4,5) straight to (3,5).
func TestStraightJump(t *testing.T) {
	s := newPlayingState(FourPlayer,
		playerAt(0, 5, 5, board.GoalBottom, 6),
		playerAt(1, 4, 5, board.GoalLeft, 6),
	)

	if err := ValidateMove(s, 0, 3, 5); err != nil {
		t.Fatalf("straight jump should be legal: %v", err)
	}

	// Without a pawn in between the same target is a NO_PAWN_TO_JUMP.
	s.Players[1].Pos = board.Position{Row: 7, Col: 7}
	if got := ruleCode(t, ValidateMove(s, 0, 3, 5)); got != CodeNoPawnToJump {
		t.Errorf("code = %s, want %s", got, CodeNoPawnToJump)
	}
}

func TestStraightJumpBlocked(t *testing.T) {
	s := newPlayingState(FourPlayer,
		playerAt(0, 5, 5, board.GoalBottom, 6),
		playerAt(1, 4, 5, board.GoalLeft, 6),
	)
	// Barrier behind the jumped pawn blocks the far half-edge.
	s.Barriers = []Barrier{{Row: 3, Col: 5, Orientation: board.Horizontal, PlacedBy: 1}}

	if got := ruleCode(t, ValidateMove(s, 0, 3, 5)); got != CodeBlockedByBarrier {
		t.Errorf("code = %s, want %s", got, CodeBlockedByBarrier)
	}
	// Landing on another pawn is refused before edges are considered.
	s.Barriers = nil
	s.Players = append(s.Players, playerAt(2, 3, 5, board.GoalTop, 6))
	if got := ruleCode(t, ValidateMove(s, 0, 3, 5)); got != CodeOccupied {
		t.Errorf("occupied landing: code = %s, want %s", got, CodeOccupied)
	}
}

// TestSideStepJump covers scenario: straight jump blocked by a barrier,
// so both diagonal side-steps open up.
func TestSideStepJump(t *testing.T) {
	makeState := func() *GameState {
		s := newPlayingState(FourPlayer,
			playerAt(0, 5, 5, board.GoalBottom, 6),
			playerAt(1, 4, 5, board.GoalLeft, 6),
		)
		s.Barriers = []Barrier{{Row: 3, Col: 5, Orientation: board.Horizontal, PlacedBy: 1}}
		return s
	}

	if err := ValidateMove(makeState(), 0, 4, 4); err != nil {
		t.Errorf("side-step left should be legal: %v", err)
	}
	if err := ValidateMove(makeState(), 0, 4, 6); err != nil {
		t.Errorf("side-step right should be legal: %v", err)
	}
}

func TestSideStepRequiresBlockedStraight(t *testing.T) {
	// No barrier: the straight jump is open, so side-steps are illegal.
	s := newPlayingState(FourPlayer,
		playerAt(0, 5, 5, board.GoalBottom, 6),
		playerAt(1, 4, 5, board.GoalLeft, 6),
	)
	if got := ruleCode(t, ValidateMove(s, 0, 4, 4)); got != CodeBlockedByBarrier {
		t.Errorf("code = %s, want %s", got, CodeBlockedByBarrier)
	}

	// Occupied straight landing also enables the side-step.
	s.Players = append(s.Players, playerAt(2, 3, 5, board.GoalTop, 6))
	if err := ValidateMove(s, 0, 4, 4); err != nil {
		t.Errorf("side-step with occupied straight landing should be legal: %v", err)
	}
}

func TestSideStepPerpendicularBlocked(t *testing.T) {
	s := newPlayingState(FourPlayer,
		playerAt(0, 5, 5, board.GoalBottom, 6),
		playerAt(1, 4, 5, board.GoalLeft, 6),
	)
	// Straight blocked above the jumped pawn, and the perpendicular edge
	// (4,5)-(4,4) blocked by a vertical barrier.
	s.Barriers = []Barrier{
		{Row: 3, Col: 5, Orientation: board.Horizontal, PlacedBy: 1},
		{Row: 4, Col: 4, Orientation: board.Vertical, PlacedBy: 1},
	}
	if got := ruleCode(t, ValidateMove(s, 0, 4, 4)); got != CodeBlockedByBarrier {
		t.Errorf("code = %s, want %s", got, CodeBlockedByBarrier)
	}
	// The other diagonal stays open.
	if err := ValidateMove(s, 0, 4, 6); err != nil {
		t.Errorf("side-step right should remain legal: %v", err)
	}
}

func TestValidateMoveWinningStep(t *testing.T) {
	s := newPlayingState(FourPlayer, playerAt(0, 9, 5, board.GoalBottom, 6))
	if err := ValidateMove(s, 0, 10, 5); err != nil {
		t.Fatalf("winning step onto goal border should be legal: %v", err)
	}
	if !DetectWin(&s.Players[0], 10, 5) {
		t.Error("DetectWin should report the goal border")
	}
	if DetectWin(&s.Players[0], 9, 5) {
		t.Error("DetectWin must not trigger on interior cells")
	}
}

func TestValidateBarrierGeometry(t *testing.T) {
	s := newPlayingState(TwoPlayer,
		playerAt(0, 1, 5, board.GoalBottom, 12),
		playerAt(2, 9, 5, board.GoalTop, 12),
	)
	s.Barriers = []Barrier{{Row: 4, Col: 4, Orientation: board.Horizontal, PlacedBy: 0}}

	tests := []struct {
		name     string
		row, col int
		o        board.Orientation
		wantCode string
	}{
		{"legal", 6, 6, board.Horizontal, ""},
		{"invalid anchor row", 0, 4, board.Horizontal, CodeInvalidAnchor},
		{"invalid anchor col", 4, 9, board.Horizontal, CodeInvalidAnchor},
		{"invalid orientation", 4, 6, "D", CodeInvalidAnchor},
		{"duplicate", 4, 4, board.Horizontal, CodeDuplicate},
		{"crossing", 4, 4, board.Vertical, CodeCrossing},
		{"edge overlap", 4, 5, board.Horizontal, CodeOverlap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBarrier(s, 0, tt.row, tt.col, tt.o)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("expected legal, got %v", err)
				}
				return
			}
			if got := ruleCode(t, err); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestValidateBarrierNoWalls(t *testing.T) {
	s := newPlayingState(TwoPlayer,
		playerAt(0, 1, 5, board.GoalBottom, 0),
		playerAt(2, 9, 5, board.GoalTop, 12),
	)
	if got := ruleCode(t, ValidateBarrier(s, 0, 4, 4, board.Horizontal)); got != CodeNoWalls {
		t.Errorf("code = %s, want %s", got, CodeNoWalls)
	}
}

// TestValidateBarrierRowSeal places the four legal row-1 barriers of a
// sealing sequence and confirms the fifth attempt that would finish the
// seal is rejected before any state change. The only H anchor that can
// close the last column shares an edge with the (1,7) barrier, so the
// overlap check fires first — the reachability sweep never sees a seal
// it would have refused anyway.
func TestValidateBarrierRowSeal(t *testing.T) {
	s := newPlayingState(TwoPlayer,
		playerAt(0, 1, 5, board.GoalBottom, 12),
		playerAt(2, 9, 5, board.GoalTop, 12),
	)
	for _, c := range []int{1, 3, 5, 7} {
		if err := ValidateBarrier(s, 0, 1, c, board.Horizontal); err != nil {
			t.Fatalf("barrier at (1,%d) should be legal: %v", c, err)
		}
		s.Barriers = append(s.Barriers, Barrier{Row: 1, Col: c, Orientation: board.Horizontal, PlacedBy: 0})
		s.Players[0].WallsLeft--
	}

	before := len(s.Barriers)
	err := ValidateBarrier(s, 0, 1, 8, board.Horizontal)
	if got := ruleCode(t, err); got != CodeOverlap {
		t.Errorf("sealing attempt: code = %s, want %s", got, CodeOverlap)
	}
	if len(s.Barriers) != before || s.Players[0].WallsLeft != 8 {
		t.Error("rejected barrier must not change state")
	}
}

// TestValidateBarrierWouldTrap corners a pawn at (1,1): with south
// blocked under columns 1-2, the vertical candidate at (0,2) would wall
// off the last exit east and strand the pawn, so it must be refused
// with the reachability error and no state change.
func TestValidateBarrierWouldTrap(t *testing.T) {
	s := newPlayingState(TwoPlayer,
		playerAt(0, 1, 1, board.GoalBottom, 12),
		playerAt(2, 9, 5, board.GoalTop, 12),
	)
	s.Barriers = []Barrier{{Row: 1, Col: 1, Orientation: board.Horizontal, PlacedBy: 2}}

	before := len(s.Barriers)
	err := ValidateBarrier(s, 2, 0, 2, board.Vertical)
	if got := ruleCode(t, err); got != CodeWouldTrap {
		t.Errorf("code = %s, want %s", got, CodeWouldTrap)
	}
	if len(s.Barriers) != before {
		t.Error("validation must not mutate state")
	}

	// A barrier far from the cornered pawn leaves every seated player a
	// path, so the same actor may still place it.
	if err := ValidateBarrier(s, 2, 5, 5, board.Horizontal); err != nil {
		t.Errorf("harmless barrier should be legal: %v", err)
	}
}

func TestNextSeatRotation(t *testing.T) {
	two := newPlayingState(TwoPlayer,
		playerAt(0, 1, 5, board.GoalBottom, 12),
		playerAt(2, 9, 5, board.GoalTop, 12),
	)
	if got := two.NextSeat(0); got != 2 {
		t.Errorf("two-player NextSeat(0) = %d, want 2", got)
	}
	if got := two.NextSeat(2); got != 0 {
		t.Errorf("two-player NextSeat(2) = %d, want 0", got)
	}
	if got := two.PrevSeat(0); got != 2 {
		t.Errorf("two-player PrevSeat(0) = %d, want 2", got)
	}

	four := newPlayingState(FourPlayer,
		playerAt(0, 1, 5, board.GoalBottom, 6),
		playerAt(1, 5, 9, board.GoalLeft, 6),
		playerAt(2, 9, 5, board.GoalTop, 6),
		playerAt(3, 5, 1, board.GoalRight, 6),
	)
	if got := four.NextSeat(3); got != 0 {
		t.Errorf("four-player NextSeat(3) = %d, want 0", got)
	}
}

func TestLegalMovesOpenBoard(t *testing.T) {
	s := newPlayingState(FourPlayer, playerAt(0, 5, 5, board.GoalBottom, 6))
	moves := engineLegalMoveSet(s, 0)
	want := []board.Position{{Row: 4, Col: 5}, {Row: 6, Col: 5}, {Row: 5, Col: 4}, {Row: 5, Col: 6}}
	if len(moves) != len(want) {
		t.Fatalf("legal moves = %v, want %d simple steps", moves, len(want))
	}
	for _, w := range want {
		if !moves[w] {
			t.Errorf("missing legal move %v", w)
		}
	}
}

func TestLegalMovesIncludeJumps(t *testing.T) {
	s := newPlayingState(FourPlayer,
		playerAt(0, 5, 5, board.GoalBottom, 6),
		playerAt(1, 4, 5, board.GoalLeft, 6),
	)
	moves := engineLegalMoveSet(s, 0)
	if !moves[board.Position{Row: 3, Col: 5}] {
		t.Error("straight jump missing from legal moves")
	}
	if moves[board.Position{Row: 4, Col: 5}] {
		t.Error("occupied cell must not be a legal move")
	}
}

func engineLegalMoveSet(s *GameState, playerID int) map[board.Position]bool {
	out := make(map[board.Position]bool)
	for _, m := range LegalMoves(s, playerID) {
		out[m] = true
	}
	return out
}
