package service

import (
	"context"

	"github.com/gbr5/bloqueio-server/game/bot"
	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/store"
)

// GameService defines every room operation exposed to transports and to
// the bot worker.
type GameService interface {
	// Room lifecycle
	CreateRoom(ctx context.Context, mode engine.GameMode, token string) (*RoomInfo, error)
	JoinRoom(ctx context.Context, code, token string) (*RoomInfo, error)
	AddBot(ctx context.Context, code, hostToken string, botType engine.PlayerType) (*RoomInfo, error)
	StartRoom(ctx context.Context, code, hostToken string) error

	// Reads
	GetRoomState(ctx context.Context, code, token string) (*RoomSnapshot, error)
	GetMoveHistory(ctx context.Context, code string, opts HistoryOptions) (*HistoryResponse, error)
	GetUserStats(ctx context.Context, token string) (*UserStats, error)

	// Actions
	MakeMove(ctx context.Context, code, token string, toRow, toCol int) (*RoomSnapshot, error)
	PlaceBarrier(ctx context.Context, code, token string, row, col int, orientation string) (*RoomSnapshot, error)
	UndoLast(ctx context.Context, code, token string) (*RoomSnapshot, error)

	// CommitDecision applies a bot decision through the same arbitration
	// path as a human action, guarded by the job's expected turn.
	CommitDecision(ctx context.Context, code string, playerID, expectedTurn int, d bot.Decision) error
}

// Store is the persistence surface the service needs; *store.Store
// implements it.
type Store interface {
	CreateRoom(ctx context.Context, mode engine.GameMode, hostBinding string) (*store.RoomState, error)
	JoinRoom(ctx context.Context, code, binding string) (int, error)
	AddBot(ctx context.Context, code string, botType engine.PlayerType) (int, error)
	StartRoom(ctx context.Context, code string) error
	LoadRoom(ctx context.Context, code string) (*store.RoomState, error)
	CommitAction(ctx context.Context, code string, expectedTurn int, act store.Action) error
	UndoLast(ctx context.Context, code string, playerID int) error
	MoveHistory(ctx context.Context, code string, offset, limit int) ([]engine.Move, int, error)
	UserStats(ctx context.Context, binding string) (played, won int, err error)
}

// BotScheduler is the enqueue-only hook invoked after starts and
// successful commits. It never executes decisions.
type BotScheduler interface {
	ScheduleIfBot(ctx context.Context, code string)
}

// Broadcaster pushes fresh snapshots to room subscribers.
type Broadcaster interface {
	BroadcastRoom(code string, snapshot *RoomSnapshot)
}
