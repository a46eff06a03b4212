package bot

import (
	"fmt"
	"testing"

	"github.com/gbr5/bloqueio-server/game/board"
	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/rng"
)

func twoPlayerState() *engine.GameState {
	return &engine.GameState{
		Code:        "BOTTST",
		Mode:        engine.TwoPlayer,
		Status:      engine.StatusPlaying,
		CurrentTurn: 0,
		Players: []engine.Player{
			{ID: 0, Pos: board.Position{Row: 1, Col: 5}, Goal: board.GoalBottom, WallsLeft: 12, Type: engine.BotMedium},
			{ID: 2, Pos: board.Position{Row: 9, Col: 5}, Goal: board.GoalTop, WallsLeft: 12, Type: engine.Human},
		},
	}
}

func fourPlayerState() *engine.GameState {
	return &engine.GameState{
		Code:        "BOTTS4",
		Mode:        engine.FourPlayer,
		Status:      engine.StatusPlaying,
		CurrentTurn: 0,
		Players: []engine.Player{
			{ID: 0, Pos: board.Position{Row: 1, Col: 5}, Goal: board.GoalBottom, WallsLeft: 6, Type: engine.BotHard},
			{ID: 1, Pos: board.Position{Row: 5, Col: 9}, Goal: board.GoalLeft, WallsLeft: 6, Type: engine.BotEasy},
			{ID: 2, Pos: board.Position{Row: 9, Col: 5}, Goal: board.GoalTop, WallsLeft: 6, Type: engine.Human},
			{ID: 3, Pos: board.Position{Row: 5, Col: 1}, Goal: board.GoalRight, WallsLeft: 6, Type: engine.Human},
		},
	}
}

func TestForTypeDispatch(t *testing.T) {
	tests := []struct {
		pt   engine.PlayerType
		ok   bool
		name string
	}{
		{engine.BotEasy, true, "easy"},
		{engine.BotMedium, true, "medium"},
		{engine.BotHard, true, "hard"},
		{engine.Human, false, ""},
		{engine.PlayerType("NOPE"), false, ""},
	}
	for _, tt := range tests {
		s, ok := ForType(tt.pt)
		if ok != tt.ok {
			t.Errorf("ForType(%s) ok = %v, want %v", tt.pt, ok, tt.ok)
			continue
		}
		if ok && s.Name() != tt.name {
			t.Errorf("ForType(%s).Name() = %s, want %s", tt.pt, s.Name(), tt.name)
		}
	}
}

// TestDecisionsAreLegal drives every strategy across many seeds and
// checks each decision against the validators it is supposed to agree
// with.
func TestDecisionsAreLegal(t *testing.T) {
	for _, strat := range []Strategy{easyStrategy{}, mediumStrategy{}, hardStrategy{}} {
		t.Run(strat.Name(), func(t *testing.T) {
			for seed := 0; seed < 30; seed++ {
				s := fourPlayerState()
				d, err := strat.Decide(s, 0, rng.New(fmt.Sprintf("legal-%d", seed)))
				if err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
				switch d.Kind {
				case KindMove:
					if err := engine.ValidateMove(s, 0, d.Row, d.Col); err != nil {
						t.Errorf("seed %d: illegal move %+v: %v", seed, d, err)
					}
				case KindWall:
					if err := engine.ValidateBarrier(s, 0, d.Row, d.Col, d.Orientation); err != nil {
						t.Errorf("seed %d: illegal barrier %+v: %v", seed, d, err)
					}
				default:
					t.Errorf("seed %d: unknown kind %q", seed, d.Kind)
				}
				if d.CandidatesEvaluated == 0 {
					t.Errorf("seed %d: no candidates recorded", seed)
				}
			}
		})
	}
}

// TestDecisionDeterminism replays every strategy on identical snapshots
// with identical seeds and requires identical decisions.
func TestDecisionDeterminism(t *testing.T) {
	for _, strat := range []Strategy{easyStrategy{}, mediumStrategy{}, hardStrategy{}} {
		t.Run(strat.Name(), func(t *testing.T) {
			for seed := 0; seed < 10; seed++ {
				key := fmt.Sprintf("det-%d", seed)
				a, errA := strat.Decide(twoPlayerState(), 0, rng.New(key))
				b, errB := strat.Decide(twoPlayerState(), 0, rng.New(key))
				if errA != nil || errB != nil {
					t.Fatalf("seed %d: %v / %v", seed, errA, errB)
				}
				if a != b {
					t.Errorf("seed %d: decisions differ: %+v vs %+v", seed, a, b)
				}
			}
		})
	}
}

func TestEasyFollowsPathWhenNotRandom(t *testing.T) {
	// Find a seed whose first draw is >= 0.6 so the easy bot takes the
	// path branch; the first path step from (1,5) toward BOTTOM is (2,5).
	for seed := 0; seed < 100; seed++ {
		key := fmt.Sprintf("path-%d", seed)
		if rng.New(key).Unit() < 0.6 {
			continue
		}
		s := twoPlayerState()
		s.Players[0].Type = engine.BotEasy
		d, err := (easyStrategy{}).Decide(s, 0, rng.New(key))
		if err != nil {
			t.Fatal(err)
		}
		if d.Kind != KindMove || d.Row != 2 || d.Col != 5 {
			t.Errorf("seed %s: decision %+v, want path step to (2,5)", key, d)
		}
		return
	}
	t.Skip("no seed exercised the path branch")
}

func TestClosestOpponentTieBreak(t *testing.T) {
	// Players 1 and 3 are both 4 steps from goal; the lower id wins.
	s := &engine.GameState{
		Status: engine.StatusPlaying,
		Players: []engine.Player{
			{ID: 0, Pos: board.Position{Row: 5, Col: 5}, Goal: board.GoalBottom},
			{ID: 1, Pos: board.Position{Row: 5, Col: 4}, Goal: board.GoalLeft},
			{ID: 3, Pos: board.Position{Row: 5, Col: 6}, Goal: board.GoalRight},
		},
	}
	opp, ok := closestOpponent(s, 0)
	if !ok || opp.ID != 1 {
		t.Errorf("closestOpponent = %+v, want player 1", opp)
	}
}

func TestBorderDistance(t *testing.T) {
	tests := []struct {
		p    engine.Player
		want int
	}{
		{engine.Player{Pos: board.Position{Row: 1, Col: 5}, Goal: board.GoalBottom}, 9},
		{engine.Player{Pos: board.Position{Row: 9, Col: 5}, Goal: board.GoalTop}, 9},
		{engine.Player{Pos: board.Position{Row: 5, Col: 3}, Goal: board.GoalLeft}, 3},
		{engine.Player{Pos: board.Position{Row: 5, Col: 3}, Goal: board.GoalRight}, 7},
	}
	for _, tt := range tests {
		if got := borderDistance(&tt.p); got != tt.want {
			t.Errorf("borderDistance(%v %s) = %d, want %d", tt.p.Pos, tt.p.Goal, got, tt.want)
		}
	}
}

func TestMediumBarrierLengthensOpponentPath(t *testing.T) {
	s := twoPlayerState()
	me, _ := s.PlayerByID(0)
	d, ok := mediumBarrier(s, me)
	if !ok {
		t.Skip("no lengthening barrier found on open board")
	}
	if d.Kind != KindWall {
		t.Fatalf("kind = %s", d.Kind)
	}
	if err := engine.ValidateBarrier(s, 0, d.Row, d.Col, d.Orientation); err != nil {
		t.Fatalf("medium barrier is illegal: %v", err)
	}

	opp, _ := s.PlayerByID(2)
	before, _ := board.PathLength(opp.Pos, opp.Goal, s.BlockedEdges())
	e1, e2 := board.BarrierEdges(d.Row, d.Col, d.Orientation)
	after, ok2 := board.PathLength(opp.Pos, opp.Goal, s.BlockedEdges().With(e1, e2))
	if !ok2 || after <= before {
		t.Errorf("barrier should lengthen opponent path: before=%d after=%d", before, after)
	}
}
