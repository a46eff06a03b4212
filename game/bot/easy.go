package bot

import (
	"fmt"

	"github.com/gbr5/bloqueio-server/game/board"
	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/rng"
)

// easyStrategy plays a random legal move 60% of the time and otherwise
// follows its shortest path. It never places barriers.
type easyStrategy struct{}

func (easyStrategy) Name() string { return "easy" }

func (easyStrategy) Decide(s *engine.GameState, playerID int, r *rng.RNG) (Decision, error) {
	p, ok := s.PlayerByID(playerID)
	if !ok {
		return Decision{}, fmt.Errorf("bot: player %d not in room %s", playerID, s.Code)
	}
	moves := engine.LegalMoves(s, playerID)
	if len(moves) == 0 {
		return Decision{}, ErrNoLegalAction
	}

	if r.Unit() < 0.6 {
		m := rng.Pick(r, moves)
		return Decision{
			Kind: KindMove, Row: m.Row, Col: m.Col,
			Reasoning:           "random legal move",
			CandidatesEvaluated: len(moves),
		}, nil
	}

	path, ok := board.ShortestPath(p.Pos, p.Goal, s.BlockedEdges())
	if ok && len(path) > 1 {
		step := path[1]
		// The first path step can be occupied by a pawn; fall back to
		// random rather than walking into it.
		if engine.ValidateMove(s, playerID, step.Row, step.Col) == nil {
			return Decision{
				Kind: KindMove, Row: step.Row, Col: step.Col,
				Reasoning:           "first step of shortest path",
				CandidatesEvaluated: len(moves),
			}, nil
		}
	}

	m := rng.Pick(r, moves)
	return Decision{
		Kind: KindMove, Row: m.Row, Col: m.Col,
		Reasoning:           "no usable path, random fallback",
		CandidatesEvaluated: len(moves),
	}, nil
}
