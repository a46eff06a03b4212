package worker

import (
	"context"
	"log"

	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/store"
)

// Store is the persistence surface the scheduler and worker need;
// *store.Store implements it.
type Store interface {
	LoadRoom(ctx context.Context, code string) (*store.RoomState, error)
	UpsertJob(ctx context.Context, code string, playerID, expectedTurn int) error
	ClaimNextPending(ctx context.Context, limit int) ([]store.Job, error)
	MarkJob(ctx context.Context, id int64, status store.JobStatus, errMsg string) error
}

// Scheduler enqueues a bot job when the player on turn is a bot. It is
// invoked by the service after room starts and successful commits, and
// never executes anything itself.
type Scheduler struct {
	store Store
}

// NewScheduler creates the enqueue hook.
func NewScheduler(st Store) *Scheduler {
	return &Scheduler{store: st}
}

// ScheduleIfBot reads the room and upserts a job for the current turn if
// it belongs to a bot. The job table's uniqueness constraint makes the
// call idempotent, so racing invocations are harmless.
func (s *Scheduler) ScheduleIfBot(ctx context.Context, code string) {
	rs, err := s.store.LoadRoom(ctx, code)
	if err != nil {
		log.Printf("[SCHED] load failed room=%s: %v", code, err)
		return
	}
	if rs.Status != engine.StatusPlaying || rs.Winner != nil {
		return
	}
	p, ok := rs.PlayerByID(rs.CurrentTurn)
	if !ok || !p.Type.IsBot() {
		return
	}
	if err := s.store.UpsertJob(ctx, code, p.ID, rs.TurnNumber); err != nil {
		log.Printf("[SCHED] enqueue failed room=%s player=%d turn=%d: %v", code, p.ID, rs.TurnNumber, err)
		return
	}
	log.Printf("[SCHED] enqueued room=%s player=%d turn=%d type=%s", code, p.ID, rs.TurnNumber, p.Type)
}
