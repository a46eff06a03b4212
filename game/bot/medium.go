package bot

import (
	"fmt"

	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/rng"
)

// mediumStrategy mixes defensive barriers with greedy path-shortening
// moves. 30% of turns (walls and opponents permitting) it tries to slow
// the opponent closest to winning; otherwise it scores each legal move by
// how much closer to goal it lands and picks among the best three.
type mediumStrategy struct{}

func (mediumStrategy) Name() string { return "medium" }

func (mediumStrategy) Decide(s *engine.GameState, playerID int, r *rng.RNG) (Decision, error) {
	p, ok := s.PlayerByID(playerID)
	if !ok {
		return Decision{}, fmt.Errorf("bot: player %d not in room %s", playerID, s.Code)
	}

	if r.Unit() < 0.3 && p.WallsLeft > 0 && len(s.Players) > 1 {
		if d, ok := mediumBarrier(s, p); ok {
			return d, nil
		}
	}

	moves := engine.LegalMoves(s, playerID)
	if len(moves) == 0 {
		return Decision{}, ErrNoLegalAction
	}

	blocked := s.BlockedEdges()
	cur := pathLen(p.Pos, p.Goal, blocked)
	cands := make([]scoredMove, 0, len(moves))
	for _, m := range moves {
		after := pathLen(m, p.Goal, blocked)
		cands = append(cands, scoredMove{
			pos:   m,
			score: float64(cur-after) + 0.25*r.Unit(),
		})
	}
	best := pickTop(cands, r)
	return Decision{
		Kind: KindMove, Row: best.Row, Col: best.Col,
		Reasoning:           "greedy path move",
		CandidatesEvaluated: len(cands),
	}, nil
}

// mediumBarrier targets the opponent closest to its goal: barriers are
// tried on cells two to four steps ahead on that opponent's shortest
// path, both orientations, and the placement that lengthens the path the
// most wins. Returns false when no candidate lengthens the path at all.
func mediumBarrier(s *engine.GameState, me *engine.Player) (Decision, bool) {
	opp, ok := closestOpponent(s, me.ID)
	if !ok {
		return Decision{}, false
	}
	cands, evaluated := barrierCandidates(s, me, opp, 2, 4)

	best := -1
	var pick barrierCandidate
	for _, c := range cands {
		if c.oppDelta > 0 && c.oppDelta > best {
			best = c.oppDelta
			pick = c
		}
	}
	if best < 0 {
		return Decision{}, false
	}
	return Decision{
		Kind: KindWall, Row: pick.row, Col: pick.col, Orientation: pick.o,
		Reasoning:           fmt.Sprintf("defensive barrier, opponent %d detour +%d", opp.ID, best),
		CandidatesEvaluated: evaluated,
	}, true
}
