package bot

import (
	"errors"
	"sort"

	"github.com/gbr5/bloqueio-server/game/board"
	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/rng"
)

// Kind discriminates the two decision variants.
type Kind string

const (
	KindMove Kind = "MOVE"
	KindWall Kind = "WALL"
)

// Decision is a bot's chosen action for one turn.
type Decision struct {
	Kind        Kind              `json:"kind"`
	Row         int               `json:"row"`
	Col         int               `json:"col"`
	Orientation board.Orientation `json:"orientation,omitempty"`

	// Reasoning and CandidatesEvaluated are logged for offline analysis.
	Reasoning           string `json:"reasoning"`
	CandidatesEvaluated int    `json:"candidates_evaluated"`
}

// Strategy decides one action for the given player.
type Strategy interface {
	Name() string
	Decide(s *engine.GameState, playerID int, r *rng.RNG) (Decision, error)
}

// ErrNoLegalAction is returned when a strategy finds nothing playable.
var ErrNoLegalAction = errors.New("bot: no legal action available")

var strategies = map[engine.PlayerType]Strategy{
	engine.BotEasy:   easyStrategy{},
	engine.BotMedium: mediumStrategy{},
	engine.BotHard:   hardStrategy{},
}

// ForType returns the strategy for a bot player type.
func ForType(t engine.PlayerType) (Strategy, bool) {
	s, ok := strategies[t]
	return s, ok
}

// borderDistance is the manhattan distance from a player's pawn to its
// goal border, ignoring barriers. Used only to pick which opponent the
// wall-placing heuristics target.
func borderDistance(p *engine.Player) int {
	switch p.Goal {
	case board.GoalTop:
		return p.Pos.Row
	case board.GoalBottom:
		return board.GridSize - 1 - p.Pos.Row
	case board.GoalLeft:
		return p.Pos.Col
	case board.GoalRight:
		return board.GridSize - 1 - p.Pos.Col
	}
	return board.GridSize
}

// closestOpponent returns the opponent nearest its own goal border. Ties
// break toward the lowest player id: seats are iterated in ascending
// order with a strict comparison.
func closestOpponent(s *engine.GameState, playerID int) (*engine.Player, bool) {
	var best *engine.Player
	bestDist := 0
	for i := range s.Players {
		p := &s.Players[i]
		if p.ID == playerID {
			continue
		}
		d := borderDistance(p)
		if best == nil || d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best, best != nil
}

// pathLen returns the barrier-aware distance from pos to the goal, or a
// large sentinel when trapped. The reachability invariant makes the
// sentinel unreachable in committed states; it keeps scoring total.
const unreachable = board.GridSize * board.GridSize

func pathLen(pos board.Position, goal board.GoalSide, blocked board.EdgeSet) int {
	if n, ok := board.PathLength(pos, goal, blocked); ok {
		return n
	}
	return unreachable
}

// scoredMove pairs a candidate move with its heuristic score.
type scoredMove struct {
	pos   board.Position
	score float64
}

// pickTop sorts candidates by descending score and picks uniformly from
// the top three (fewer if fewer exist).
func pickTop(cands []scoredMove, r *rng.RNG) board.Position {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
	top := 3
	if len(cands) < top {
		top = len(cands)
	}
	return cands[r.IntBetween(0, top)].pos
}

// barrierCandidate evaluates one hypothetical barrier placement.
type barrierCandidate struct {
	row, col int
	o        board.Orientation
	oppDelta int
	myDelta  int
}

// barrierCandidates enumerates legal barriers anchored on cells lo..hi
// steps ahead on the target opponent's shortest path, both orientations,
// and computes the path-length deltas each would cause.
func barrierCandidates(s *engine.GameState, me, opp *engine.Player, lo, hi int) (cands []barrierCandidate, evaluated int) {
	blocked := s.BlockedEdges()
	oppPath, ok := board.ShortestPath(opp.Pos, opp.Goal, blocked)
	if !ok {
		return nil, 0
	}
	oppDist := len(oppPath) - 1
	myDist := pathLen(me.Pos, me.Goal, blocked)

	for step := lo; step <= hi && step < len(oppPath)-1; step++ {
		cell := oppPath[step]
		for _, o := range []board.Orientation{board.Horizontal, board.Vertical} {
			evaluated++
			if engine.ValidateBarrier(s, me.ID, cell.Row, cell.Col, o) != nil {
				continue
			}
			e1, e2 := board.BarrierEdges(cell.Row, cell.Col, o)
			hyp := blocked.With(e1, e2)
			cands = append(cands, barrierCandidate{
				row:      cell.Row,
				col:      cell.Col,
				o:        o,
				oppDelta: pathLen(opp.Pos, opp.Goal, hyp) - oppDist,
				myDelta:  pathLen(me.Pos, me.Goal, hyp) - myDist,
			})
		}
	}
	return cands, evaluated
}
