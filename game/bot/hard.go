package bot

import (
	"fmt"

	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/rng"
)

// hardStrategy weighs its own detour against the opponent's when placing
// barriers and factors the race position into move scores. 40% of turns
// (walls permitting) it considers barriers three to five steps ahead on
// the leading opponent's path and places one only when the trade is
// clearly favorable.
type hardStrategy struct{}

func (hardStrategy) Name() string { return "hard" }

// A barrier is worth placing when 2*oppDelta - 1.5*myDelta, plus a bonus
// for placements that cost the bot nothing, clears this threshold.
const hardBarrierThreshold = 0.5

func (hardStrategy) Decide(s *engine.GameState, playerID int, r *rng.RNG) (Decision, error) {
	p, ok := s.PlayerByID(playerID)
	if !ok {
		return Decision{}, fmt.Errorf("bot: player %d not in room %s", playerID, s.Code)
	}

	if r.Unit() < 0.4 && p.WallsLeft > 0 && len(s.Players) > 1 {
		if d, ok := hardBarrier(s, p); ok {
			return d, nil
		}
	}

	moves := engine.LegalMoves(s, playerID)
	if len(moves) == 0 {
		return Decision{}, ErrNoLegalAction
	}

	blocked := s.BlockedEdges()
	cur := pathLen(p.Pos, p.Goal, blocked)

	oppDist := unreachable
	if opp, ok := closestOpponent(s, p.ID); ok {
		oppDist = pathLen(opp.Pos, opp.Goal, blocked)
	}

	cands := make([]scoredMove, 0, len(moves))
	for _, m := range moves {
		after := pathLen(m, p.Goal, blocked)
		advantage := float64(oppDist - after)
		score := float64(cur-after) + 0.3*advantage + 0.25*r.Unit()
		if after >= cur {
			score -= 0.5
		}
		cands = append(cands, scoredMove{pos: m, score: score})
	}
	best := pickTop(cands, r)
	return Decision{
		Kind: KindMove, Row: best.Row, Col: best.Col,
		Reasoning:           "race-weighted path move",
		CandidatesEvaluated: len(cands),
	}, nil
}

// hardBarrier scores barrier candidates three to five steps ahead on the
// closest opponent's path by trading the opponent's detour against the
// bot's own.
func hardBarrier(s *engine.GameState, me *engine.Player) (Decision, bool) {
	opp, ok := closestOpponent(s, me.ID)
	if !ok {
		return Decision{}, false
	}
	cands, evaluated := barrierCandidates(s, me, opp, 3, 5)

	bestScore := hardBarrierThreshold
	var pick *barrierCandidate
	for i := range cands {
		c := cands[i]
		score := 2*float64(c.oppDelta) - 1.5*float64(c.myDelta)
		if c.myDelta == 0 {
			score += 0.5
		}
		if score > bestScore {
			bestScore = score
			pick = &cands[i]
		}
	}
	if pick == nil {
		return Decision{}, false
	}
	return Decision{
		Kind: KindWall, Row: pick.row, Col: pick.col, Orientation: pick.o,
		Reasoning:           fmt.Sprintf("trade barrier vs player %d, score %.1f", opp.ID, bestScore),
		CandidatesEvaluated: evaluated,
	}, true
}
