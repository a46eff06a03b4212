package engine

import (
	"fmt"

	"github.com/gbr5/bloqueio-server/game/board"
)

// Rule violation codes surfaced to clients.
const (
	CodeOutOfBounds      = "OUT_OF_BOUNDS"
	CodeOccupied         = "OCCUPIED"
	CodeBlockedByBarrier = "BLOCKED_BY_BARRIER"
	CodeNoPawnToJump     = "NO_PAWN_TO_JUMP"
	CodeIllegalDistance  = "ILLEGAL_DISTANCE"
	CodeNoWalls          = "NO_WALLS"
	CodeInvalidAnchor    = "INVALID_ANCHOR"
	CodeDuplicate        = "DUPLICATE"
	CodeCrossing         = "CROSSING"
	CodeOverlap          = "OVERLAP"
	CodeWouldTrap        = "WOULD_TRAP"
)

// RuleError is a rule violation with a stable machine-readable code.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func ruleErr(code, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ValidateMove checks whether the player may move their pawn to
// (toRow, toCol) in the given state. Checks run cheapest first; the first
// violated precondition wins. Turn ownership and room status are the turn
// controller's concern, not this function's.
func ValidateMove(s *GameState, playerID, toRow, toCol int) error {
	p, ok := s.PlayerByID(playerID)
	if !ok {
		return ruleErr(CodeOutOfBounds, "player %d is not seated in this room", playerID)
	}
	target := board.Position{Row: toRow, Col: toCol}

	if !board.InBounds(toRow, toCol) || target == p.Pos {
		return ruleErr(CodeOutOfBounds, "cell (%d,%d) is not a reachable target", toRow, toCol)
	}
	if !board.IsInterior(toRow, toCol) && !board.IsGoalCell(toRow, toCol, p.Goal) {
		return ruleErr(CodeOutOfBounds, "cell (%d,%d) is outside the playable area", toRow, toCol)
	}
	if s.Occupied(target) {
		return ruleErr(CodeOccupied, "cell (%d,%d) is occupied", toRow, toCol)
	}

	blocked := s.BlockedEdges()
	dr := toRow - p.Pos.Row
	dc := toCol - p.Pos.Col

	switch board.ManhattanDistance(p.Pos, target) {
	case 1:
		if blocked.Blocked(p.Pos, target) {
			return ruleErr(CodeBlockedByBarrier, "a barrier blocks the move to (%d,%d)", toRow, toCol)
		}
		return nil
	case 2:
		if dr == 0 || dc == 0 {
			return validateStraightJump(s, p, target, blocked)
		}
		return validateSideStep(s, p, target, blocked)
	default:
		return ruleErr(CodeIllegalDistance, "cell (%d,%d) is more than one jump away", toRow, toCol)
	}
}

// validateStraightJump checks a distance-2 collinear jump over an
// adjacent pawn: the intermediate cell must hold another pawn and neither
// half-edge may be blocked. The landing cell is already known to be free.
func validateStraightJump(s *GameState, p *Player, target board.Position, blocked board.EdgeSet) error {
	mid := board.Position{
		Row: (p.Pos.Row + target.Row) / 2,
		Col: (p.Pos.Col + target.Col) / 2,
	}
	if !s.Occupied(mid) {
		return ruleErr(CodeNoPawnToJump, "no pawn at (%d,%d) to jump over", mid.Row, mid.Col)
	}
	if blocked.Blocked(p.Pos, mid) || blocked.Blocked(mid, target) {
		return ruleErr(CodeBlockedByBarrier, "a barrier blocks the jump over (%d,%d)", mid.Row, mid.Col)
	}
	return nil
}

// validateSideStep checks a diagonal distance-2 jump. It is legal when
// some occupied orthogonal neighbour N of the actor satisfies: the edge
// actor-N is open, the straight landing beyond N is blocked, off the
// interior, or occupied, and the perpendicular edge N-target is open.
// The target must be adjacent to N.
func validateSideStep(s *GameState, p *Player, target board.Position, blocked board.EdgeSet) error {
	sawPawn := false
	for _, d := range board.Directions {
		n := board.Position{Row: p.Pos.Row + d.DR, Col: p.Pos.Col + d.DC}
		if board.ManhattanDistance(n, target) != 1 {
			continue
		}
		if !s.Occupied(n) {
			continue
		}
		sawPawn = true
		if blocked.Blocked(p.Pos, n) {
			continue
		}
		straight := board.Position{Row: n.Row + d.DR, Col: n.Col + d.DC}
		straightOpen := board.IsInterior(straight.Row, straight.Col) &&
			!blocked.Blocked(n, straight) &&
			!s.Occupied(straight)
		if straightOpen {
			continue
		}
		if blocked.Blocked(n, target) {
			continue
		}
		return nil
	}
	if !sawPawn {
		return ruleErr(CodeNoPawnToJump, "no adjacent pawn allows a side-step to (%d,%d)", target.Row, target.Col)
	}
	return ruleErr(CodeBlockedByBarrier, "no open side-step path to (%d,%d)", target.Row, target.Col)
}

// ValidateBarrier checks whether the player may place a barrier at the
// given anchor. The reachability sweep over all seated players runs only
// after every cheap geometric check has passed.
func ValidateBarrier(s *GameState, playerID, row, col int, o board.Orientation) error {
	p, ok := s.PlayerByID(playerID)
	if !ok {
		return ruleErr(CodeInvalidAnchor, "player %d is not seated in this room", playerID)
	}
	if p.WallsLeft < 1 {
		return ruleErr(CodeNoWalls, "player %d has no walls left", playerID)
	}
	if !o.Valid() || !board.ValidAnchor(row, col, o) {
		return ruleErr(CodeInvalidAnchor, "(%d,%d,%s) is not a valid barrier anchor", row, col, o)
	}
	for _, b := range s.Barriers {
		if b.Row == row && b.Col == col {
			if b.Orientation == o {
				return ruleErr(CodeDuplicate, "a barrier already sits at (%d,%d,%s)", row, col, o)
			}
			return ruleErr(CodeCrossing, "a barrier at (%d,%d) crosses the new one", row, col)
		}
	}

	blocked := s.BlockedEdges()
	e1, e2 := board.BarrierEdges(row, col, o)
	if blocked.Has(e1) || blocked.Has(e2) {
		return ruleErr(CodeOverlap, "barrier at (%d,%d,%s) overlaps an existing barrier edge", row, col, o)
	}

	hypothetical := blocked.With(e1, e2)
	for i := range s.Players {
		pl := &s.Players[i]
		if s.Winner != nil && *s.Winner == pl.ID {
			continue
		}
		if !board.HasPathToGoal(pl.Pos, pl.Goal, hypothetical) {
			return ruleErr(CodeWouldTrap, "barrier would leave player %d without a path to goal", pl.ID)
		}
	}
	return nil
}

// DetectWin reports whether moving to (toRow, toCol) wins for the player.
func DetectWin(p *Player, toRow, toCol int) bool {
	return board.IsGoalCell(toRow, toCol, p.Goal)
}

// LegalMoves enumerates every cell the player could legally move to. The
// candidate set is the twelve cells within jumping range; each goes
// through ValidateMove so enumeration and arbitration can never disagree.
func LegalMoves(s *GameState, playerID int) []board.Position {
	p, ok := s.PlayerByID(playerID)
	if !ok {
		return nil
	}
	offsets := [12][2]int{
		{-1, 0}, {1, 0}, {0, -1}, {0, 1},
		{-2, 0}, {2, 0}, {0, -2}, {0, 2},
		{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
	}
	var moves []board.Position
	for _, off := range offsets {
		r, c := p.Pos.Row+off[0], p.Pos.Col+off[1]
		if ValidateMove(s, playerID, r, c) == nil {
			moves = append(moves, board.Position{Row: r, Col: c})
		}
	}
	return moves
}
