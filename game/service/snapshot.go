package service

import (
	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/store"
)

// snapshotFor projects a room state into the client-facing snapshot,
// personalized when token matches a seated player. Session bindings are
// never serialized.
func snapshotFor(rs *store.RoomState, token string) *RoomSnapshot {
	snap := &RoomSnapshot{
		Code:        rs.Code,
		Status:      rs.Status,
		Mode:        rs.Mode,
		Players:     rs.Players,
		Barriers:    rs.Barriers,
		CurrentTurn: rs.CurrentTurn,
		TurnNumber:  rs.TurnNumber,
		Winner:      rs.Winner,
		LastMove:    rs.LastMove,
	}
	if token != "" {
		if p, ok := playerByBinding(rs, token); ok {
			id := p.ID
			snap.CallerPlayerID = &id
			snap.IsMyTurn = rs.Status == engine.StatusPlaying && rs.CurrentTurn == id && rs.Winner == nil
		}
	}
	return snap
}
