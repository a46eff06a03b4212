package engine

import (
	"testing"

	"github.com/gbr5/bloqueio-server/game/board"
)

func TestGameModeTables(t *testing.T) {
	if got := TwoPlayer.Seats(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("TwoPlayer.Seats() = %v", got)
	}
	if got := FourPlayer.Seats(); len(got) != 4 {
		t.Errorf("FourPlayer.Seats() = %v", got)
	}
	if TwoPlayer.WallsPerPlayer() != 12 || FourPlayer.WallsPerPlayer() != 6 {
		t.Errorf("walls = %d/%d, want 12/6", TwoPlayer.WallsPerPlayer(), FourPlayer.WallsPerPlayer())
	}
	if !TwoPlayer.Valid() || !FourPlayer.Valid() || GameMode("SOLO").Valid() {
		t.Error("mode validity broken")
	}
}

func TestStartingPositions(t *testing.T) {
	tests := []struct {
		seat int
		pos  board.Position
		goal board.GoalSide
	}{
		{0, board.Position{Row: 1, Col: 5}, board.GoalBottom},
		{1, board.Position{Row: 5, Col: 9}, board.GoalLeft},
		{2, board.Position{Row: 9, Col: 5}, board.GoalTop},
		{3, board.Position{Row: 5, Col: 1}, board.GoalRight},
	}
	for _, tt := range tests {
		pos, goal := StartingPosition(tt.seat)
		if pos != tt.pos || goal != tt.goal {
			t.Errorf("seat %d: (%v, %s), want (%v, %s)", tt.seat, pos, goal, tt.pos, tt.goal)
		}
	}
}

func TestPlayerTypeIsBot(t *testing.T) {
	for _, bt := range []PlayerType{BotEasy, BotMedium, BotHard} {
		if !bt.IsBot() || !bt.Valid() {
			t.Errorf("%s should be a valid bot type", bt)
		}
	}
	if Human.IsBot() {
		t.Error("HUMAN is not a bot")
	}
	if PlayerType("ROBOT").Valid() {
		t.Error("unknown type should be invalid")
	}
}

func TestBlockedEdgesExpansion(t *testing.T) {
	s := &GameState{
		Barriers: []Barrier{
			{Row: 3, Col: 5, Orientation: board.Horizontal},
			{Row: 6, Col: 2, Orientation: board.Vertical},
		},
	}
	set := s.BlockedEdges()
	if len(set) != 4 {
		t.Fatalf("blocked edges = %d, want 4", len(set))
	}
	if !set.Blocked(board.Position{Row: 3, Col: 5}, board.Position{Row: 4, Col: 5}) {
		t.Error("missing H edge")
	}
	if !set.Blocked(board.Position{Row: 6, Col: 2}, board.Position{Row: 6, Col: 3}) {
		t.Error("missing V edge")
	}
}

func TestPlayerLookups(t *testing.T) {
	s := &GameState{
		Players: []Player{
			{ID: 0, Pos: board.Position{Row: 1, Col: 5}},
			{ID: 2, Pos: board.Position{Row: 9, Col: 5}},
		},
	}
	if p, ok := s.PlayerByID(2); !ok || p.ID != 2 {
		t.Error("PlayerByID(2) failed")
	}
	if _, ok := s.PlayerByID(1); ok {
		t.Error("PlayerByID(1) should miss")
	}
	if p, ok := s.PlayerAt(board.Position{Row: 1, Col: 5}); !ok || p.ID != 0 {
		t.Error("PlayerAt failed")
	}
	if s.Occupied(board.Position{Row: 5, Col: 5}) {
		t.Error("empty cell reported occupied")
	}
}
