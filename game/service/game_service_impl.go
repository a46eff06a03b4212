package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/gbr5/bloqueio-server/game/board"
	"github.com/gbr5/bloqueio-server/game/bot"
	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/store"
)

// gameServiceImpl implements GameService over a Store, with optional
// scheduler and broadcaster hooks.
type gameServiceImpl struct {
	store     Store
	scheduler BotScheduler
	hub       Broadcaster
}

// NewGameService creates the turn controller. scheduler and hub may be
// nil (tests, offline tools); the service degrades to a pure controller.
func NewGameService(st Store, scheduler BotScheduler, hub Broadcaster) GameService {
	return &gameServiceImpl{store: st, scheduler: scheduler, hub: hub}
}

// CreateRoom creates a WAITING room hosted by the caller. An empty token
// mints a fresh identity, returned for all subsequent requests.
func (s *gameServiceImpl) CreateRoom(ctx context.Context, mode engine.GameMode, token string) (*RoomInfo, error) {
	if !mode.Valid() {
		return nil, svcErr(CodeInvalidMode, "unknown game mode %q", mode)
	}
	if token == "" {
		token = uuid.NewString()
	}
	rs, err := s.store.CreateRoom(ctx, mode, token)
	if err != nil {
		return nil, s.wrap(err)
	}
	log.Printf("[ROOM] created code=%s mode=%s", rs.Code, mode)
	return &RoomInfo{Code: rs.Code, PlayerID: 0, SessionToken: token}, nil
}

// JoinRoom seats the caller in the first free slot. Filling the last
// seat auto-starts the room.
func (s *gameServiceImpl) JoinRoom(ctx context.Context, code, token string) (*RoomInfo, error) {
	if token == "" {
		token = uuid.NewString()
	}
	seat, err := s.store.JoinRoom(ctx, code, token)
	if err != nil {
		return nil, s.wrap(err)
	}
	log.Printf("[ROOM] joined code=%s player=%d", code, seat)
	s.maybeAutoStart(ctx, code)
	s.broadcast(ctx, code)
	return &RoomInfo{Code: code, PlayerID: seat, SessionToken: token}, nil
}

// AddBot seats a bot. Only the host may add bots, and only before start.
func (s *gameServiceImpl) AddBot(ctx context.Context, code, hostToken string, botType engine.PlayerType) (*RoomInfo, error) {
	if !botType.Valid() || !botType.IsBot() {
		return nil, svcErr(CodeInvalidMode, "unknown bot type %q", botType)
	}
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, s.wrap(err)
	}
	if rs.HostBinding != hostToken {
		return nil, svcErr(CodeNotHost, "only the host may add bots")
	}
	if rs.Status != engine.StatusWaiting {
		return nil, svcErr(CodeWrongStatus, "room %s has already started", code)
	}
	seat, err := s.store.AddBot(ctx, code, botType)
	if err != nil {
		return nil, s.wrap(err)
	}
	log.Printf("[ROOM] bot seated code=%s player=%d type=%s", code, seat, botType)
	s.maybeAutoStart(ctx, code)
	s.broadcast(ctx, code)
	return &RoomInfo{Code: code, PlayerID: seat}, nil
}

// StartRoom transitions WAITING -> PLAYING. Only the host may start, and
// only with every seat of the mode filled.
func (s *gameServiceImpl) StartRoom(ctx context.Context, code, hostToken string) error {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return s.wrap(err)
	}
	if rs.HostBinding != hostToken {
		return svcErr(CodeNotHost, "only the host may start the room")
	}
	if rs.Status != engine.StatusWaiting {
		return svcErr(CodeWrongStatus, "room %s is %s", code, rs.Status)
	}
	if len(rs.Players) < rs.Mode.Capacity() {
		return svcErr(CodeBelowMin, "room %s has %d of %d players", code, len(rs.Players), rs.Mode.Capacity())
	}
	if len(rs.Players) > rs.Mode.Capacity() {
		return svcErr(CodeAboveMax, "room %s is over capacity", code)
	}
	if err := s.store.StartRoom(ctx, code); err != nil {
		return s.wrap(err)
	}
	log.Printf("[ROOM] started code=%s players=%d", code, len(rs.Players))
	s.schedule(ctx, code)
	s.broadcast(ctx, code)
	return nil
}

// GetRoomState returns the snapshot, personalized for the caller when
// the token matches a seated player.
func (s *gameServiceImpl) GetRoomState(ctx context.Context, code, token string) (*RoomSnapshot, error) {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, s.wrap(err)
	}
	return snapshotFor(rs, token), nil
}

// GetMoveHistory returns one page of the room's move history.
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, code string, opts HistoryOptions) (*HistoryResponse, error) {
	if _, err := s.store.LoadRoom(ctx, code); err != nil {
		return nil, s.wrap(err)
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	moves, total, err := s.store.MoveHistory(ctx, code, (page-1)*limit, limit)
	if err != nil {
		return nil, s.wrap(err)
	}
	totalPages := (total + limit - 1) / limit
	return &HistoryResponse{
		Moves:      moves,
		TotalMoves: total,
		Page:       page,
		PageSize:   limit,
		TotalPages: totalPages,
	}, nil
}

// GetUserStats returns the caller's aggregate win/loss counters.
func (s *gameServiceImpl) GetUserStats(ctx context.Context, token string) (*UserStats, error) {
	played, won, err := s.store.UserStats(ctx, token)
	if err != nil {
		return nil, s.wrap(err)
	}
	return &UserStats{GamesPlayed: played, GamesWon: won}, nil
}

// MakeMove arbitrates and commits a pawn move for the caller.
func (s *gameServiceImpl) MakeMove(ctx context.Context, code, token string, toRow, toCol int) (*RoomSnapshot, error) {
	rs, p, err := s.loadActor(ctx, code, token)
	if err != nil {
		return nil, err
	}
	if err := s.commitMove(ctx, rs, p, toRow, toCol, rs.TurnNumber); err != nil {
		return nil, err
	}
	return s.afterCommit(ctx, code, token)
}

// PlaceBarrier arbitrates and commits a barrier placement for the caller.
func (s *gameServiceImpl) PlaceBarrier(ctx context.Context, code, token string, row, col int, orientation string) (*RoomSnapshot, error) {
	rs, p, err := s.loadActor(ctx, code, token)
	if err != nil {
		return nil, err
	}
	if err := s.commitBarrier(ctx, rs, p, row, col, board.Orientation(orientation), rs.TurnNumber); err != nil {
		return nil, err
	}
	return s.afterCommit(ctx, code, token)
}

// UndoLast reverses the caller's most recent action, permitted only
// until the next player commits.
func (s *gameServiceImpl) UndoLast(ctx context.Context, code, token string) (*RoomSnapshot, error) {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, s.wrap(err)
	}
	p, ok := playerByBinding(rs, token)
	if !ok {
		return nil, svcErr(CodeNotInRoom, "caller is not seated in room %s", code)
	}
	if rs.Status == engine.StatusFinished || rs.Winner != nil {
		return nil, svcErr(CodeGameFinished, "room %s is finished", code)
	}
	if rs.Status != engine.StatusPlaying {
		return nil, svcErr(CodeNotUndoable, "room %s has no committed actions", code)
	}
	if err := s.store.UndoLast(ctx, code, p.ID); err != nil {
		return nil, s.wrap(err)
	}
	log.Printf("[UNDO] room=%s player=%d turn=%d", code, p.ID, rs.TurnNumber)
	return s.afterCommit(ctx, code, token)
}

// CommitDecision applies a bot decision under the job's expected turn.
// Any turn drift since the job was scheduled surfaces as
// CONCURRENT_MODIFICATION, which the worker records as a stale job.
func (s *gameServiceImpl) CommitDecision(ctx context.Context, code string, playerID, expectedTurn int, d bot.Decision) error {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return s.wrap(err)
	}
	if rs.TurnNumber != expectedTurn || rs.CurrentTurn != playerID {
		return svcErr(CodeConcurrentModification, "room %s moved past turn %d", code, expectedTurn)
	}
	if err := playable(rs); err != nil {
		return err
	}
	p, ok := rs.PlayerByID(playerID)
	if !ok {
		return svcErr(CodeNotInRoom, "player %d is not seated in room %s", playerID, code)
	}
	switch d.Kind {
	case bot.KindMove:
		err = s.commitMove(ctx, rs, p, d.Row, d.Col, expectedTurn)
	case bot.KindWall:
		err = s.commitBarrier(ctx, rs, p, d.Row, d.Col, d.Orientation, expectedTurn)
	default:
		return svcErr(CodeInternal, "unknown decision kind %q", d.Kind)
	}
	if err != nil {
		return err
	}
	// Same post-commit hooks as a human action: this is what chains
	// consecutive bot turns.
	_, err = s.afterCommit(ctx, code, "")
	return err
}

// loadActor loads the room and resolves + arbitrates the acting player:
// seated, game running, their turn.
func (s *gameServiceImpl) loadActor(ctx context.Context, code, token string) (*store.RoomState, *engine.Player, error) {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, nil, s.wrap(err)
	}
	p, ok := playerByBinding(rs, token)
	if !ok {
		return nil, nil, svcErr(CodeNotInRoom, "caller is not seated in room %s", code)
	}
	if err := playable(rs); err != nil {
		return nil, nil, err
	}
	if rs.CurrentTurn != p.ID {
		return nil, nil, svcErr(CodeNotYourTurn, "it is player %d's turn", rs.CurrentTurn)
	}
	return rs, p, nil
}

// commitMove validates and commits one pawn move at expectedTurn.
func (s *gameServiceImpl) commitMove(ctx context.Context, rs *store.RoomState, p *engine.Player, toRow, toCol, expectedTurn int) error {
	if err := engine.ValidateMove(&rs.GameState, p.ID, toRow, toCol); err != nil {
		return err
	}
	win := engine.DetectWin(p, toRow, toCol)
	act := store.Action{
		PlayerID: p.ID,
		Move: &engine.Move{
			PlayerID: p.ID,
			From:     p.Pos,
			To:       board.Position{Row: toRow, Col: toCol},
		},
		Status:   engine.StatusPlaying,
		NextTurn: rs.NextSeat(p.ID),
	}
	if win {
		w := p.ID
		act.Winner = &w
		act.Status = engine.StatusFinished
		// The winning move does not rotate the turn.
		act.NextTurn = rs.CurrentTurn
		act.Stats = winStats(rs, p)
	}
	if err := s.store.CommitAction(ctx, rs.Code, expectedTurn, act); err != nil {
		return s.wrap(err)
	}
	log.Printf("[MOVE] room=%s player=%d (%d,%d)->(%d,%d) turn=%d win=%v",
		rs.Code, p.ID, p.Pos.Row, p.Pos.Col, toRow, toCol, expectedTurn, win)
	return nil
}

// commitBarrier validates and commits one barrier placement.
func (s *gameServiceImpl) commitBarrier(ctx context.Context, rs *store.RoomState, p *engine.Player, row, col int, o board.Orientation, expectedTurn int) error {
	if err := engine.ValidateBarrier(&rs.GameState, p.ID, row, col, o); err != nil {
		return err
	}
	act := store.Action{
		PlayerID: p.ID,
		Barrier: &engine.Barrier{
			Row: row, Col: col, Orientation: o, PlacedBy: p.ID,
		},
		Status:   engine.StatusPlaying,
		NextTurn: rs.NextSeat(p.ID),
	}
	if err := s.store.CommitAction(ctx, rs.Code, expectedTurn, act); err != nil {
		return s.wrap(err)
	}
	log.Printf("[WALL] room=%s player=%d anchor=(%d,%d,%s) turn=%d",
		rs.Code, p.ID, row, col, o, expectedTurn)
	return nil
}

// afterCommit reloads the room, fires the scheduler and broadcaster
// hooks, and returns the caller-personalized snapshot.
func (s *gameServiceImpl) afterCommit(ctx context.Context, code, token string) (*RoomSnapshot, error) {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, s.wrap(err)
	}
	s.schedule(ctx, code)
	if s.hub != nil {
		s.hub.BroadcastRoom(code, snapshotFor(rs, ""))
	}
	return snapshotFor(rs, token), nil
}

// maybeAutoStart starts a WAITING room whose last seat just filled.
func (s *gameServiceImpl) maybeAutoStart(ctx context.Context, code string) {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return
	}
	if rs.Status != engine.StatusWaiting || len(rs.Players) < rs.Mode.Capacity() {
		return
	}
	if err := s.store.StartRoom(ctx, code); err != nil {
		log.Printf("[ROOM] auto-start failed code=%s: %v", code, err)
		return
	}
	log.Printf("[ROOM] auto-started code=%s", code)
	s.schedule(ctx, code)
}

func (s *gameServiceImpl) schedule(ctx context.Context, code string) {
	if s.scheduler != nil {
		s.scheduler.ScheduleIfBot(ctx, code)
	}
}

func (s *gameServiceImpl) broadcast(ctx context.Context, code string) {
	if s.hub == nil {
		return
	}
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		return
	}
	s.hub.BroadcastRoom(code, snapshotFor(rs, ""))
}

// wrap maps store sentinels onto service failure codes.
func (s *gameServiceImpl) wrap(err error) error {
	switch err {
	case nil:
		return nil
	case store.ErrNotFound:
		return svcErr(CodeNotFound, "room not found")
	case store.ErrRoomFull:
		return svcErr(CodeFull, "room is full")
	case store.ErrAlreadyStarted:
		return svcErr(CodeAlreadyStarted, "room has already started")
	case store.ErrAlreadyJoined:
		return svcErr(CodeAlreadyJoined, "identity is already seated in this room")
	case store.ErrWrongStatus:
		return svcErr(CodeWrongStatus, "operation not valid in this room status")
	case store.ErrStale:
		return svcErr(CodeConcurrentModification, "room state changed, refresh and retry")
	case store.ErrNotUndoable:
		return svcErr(CodeNotUndoable, "nothing undoable by this player")
	default:
		return svcErr(CodeInternal, "internal storage error: %v", err)
	}
}

// playable rejects actions on rooms that are not mid-game.
func playable(rs *store.RoomState) error {
	switch {
	case rs.Status == engine.StatusWaiting:
		return svcErr(CodeGameNotStarted, "room %s has not started", rs.Code)
	case rs.Status == engine.StatusFinished || rs.Winner != nil:
		return svcErr(CodeGameFinished, "room %s is finished", rs.Code)
	}
	return nil
}

func playerByBinding(rs *store.RoomState, token string) (*engine.Player, bool) {
	for i := range rs.Players {
		if rs.Players[i].SessionBinding == token {
			return &rs.Players[i], true
		}
	}
	return nil, false
}

// winStats collects the identified (human) bindings whose aggregates the
// winning commit updates.
func winStats(rs *store.RoomState, winner *engine.Player) *store.WinStats {
	stats := &store.WinStats{}
	for i := range rs.Players {
		p := &rs.Players[i]
		if p.Type != engine.Human {
			continue
		}
		stats.PlayedBindings = append(stats.PlayedBindings, p.SessionBinding)
		if p.ID == winner.ID {
			stats.WinnerBinding = p.SessionBinding
		}
	}
	return stats
}
