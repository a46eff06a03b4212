package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gbr5/bloqueio-server/game/bot"
	"github.com/gbr5/bloqueio-server/game/rng"
	"github.com/gbr5/bloqueio-server/game/service"
	"github.com/gbr5/bloqueio-server/game/store"
)

// errBudgetExceeded marks decisions that blew the compute budget.
var errBudgetExceeded = errors.New("worker: decision budget exceeded")

// Worker polls the job table and executes claimed bot decisions.
type Worker struct {
	store   Store
	service service.GameService

	budget   time.Duration
	interval time.Duration
	batch    int
}

// New creates a worker with the given compute budget per decision, poll
// cadence, and claim batch size.
func New(st Store, svc service.GameService, budget, interval time.Duration, batch int) *Worker {
	return &Worker{
		store:    st,
		service:  svc,
		budget:   budget,
		interval: interval,
		batch:    batch,
	}
}

// Run polls until the context is canceled. Each tick claims up to the
// batch size of pending jobs and processes them sequentially; per-room
// ordering is enforced by the turn-number commit gate either way.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("[WORKER] started interval=%s budget=%s batch=%d", w.interval, w.budget, w.batch)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[WORKER] stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick claims and processes one batch of pending jobs.
func (w *Worker) Tick(ctx context.Context) {
	jobs, err := w.store.ClaimNextPending(ctx, w.batch)
	if err != nil {
		log.Printf("[WORKER] claim failed: %v", err)
		return
	}
	for _, j := range jobs {
		w.process(ctx, j)
	}
}

// process executes one claimed job end to end. Every exit path marks the
// job; no path mutates the room except the single service commit.
func (w *Worker) process(ctx context.Context, j store.Job) {
	rs, err := w.store.LoadRoom(ctx, j.RoomCode)
	if err != nil {
		w.mark(ctx, j, store.JobFailed, fmt.Sprintf("load room: %v", err))
		return
	}
	// Undos and human interleavings cancel queued jobs here.
	if rs.TurnNumber != j.ExpectedTurn || rs.CurrentTurn != j.PlayerID {
		w.mark(ctx, j, store.JobStale, "")
		return
	}
	p, ok := rs.PlayerByID(j.PlayerID)
	if !ok || !p.Type.IsBot() {
		w.mark(ctx, j, store.JobFailed, fmt.Sprintf("player %d is not a bot", j.PlayerID))
		return
	}
	strategy, ok := bot.ForType(p.Type)
	if !ok {
		w.mark(ctx, j, store.JobFailed, fmt.Sprintf("no strategy for type %s", p.Type))
		return
	}

	gen := rng.ForTurn(rs.BotSeed, rs.TurnNumber, j.PlayerID)
	start := time.Now()
	decision, err := w.decide(ctx, strategy, rs, j.PlayerID, gen)
	elapsed := time.Since(start)

	if err != nil {
		w.mark(ctx, j, store.JobFailed, err.Error())
		log.Printf("[BOT] failed room=%s player=%d turn=%d strategy=%s compute_ms=%d: %v",
			j.RoomCode, j.PlayerID, j.ExpectedTurn, strategy.Name(), elapsed.Milliseconds(), err)
		return
	}

	err = w.service.CommitDecision(ctx, j.RoomCode, j.PlayerID, j.ExpectedTurn, decision)
	if err != nil {
		if service.ErrorCode(err) == service.CodeConcurrentModification {
			w.mark(ctx, j, store.JobStale, "")
			return
		}
		w.mark(ctx, j, store.JobFailed, err.Error())
		log.Printf("[BOT] commit failed room=%s player=%d turn=%d: %v",
			j.RoomCode, j.PlayerID, j.ExpectedTurn, err)
		return
	}

	w.mark(ctx, j, store.JobCompleted, "")
	log.Printf("[BOT] decided room=%s player=%d turn=%d strategy=%s kind=%s target=(%d,%d,%s) candidates=%d compute_ms=%d reasoning=%q",
		j.RoomCode, j.PlayerID, j.ExpectedTurn, strategy.Name(), decision.Kind,
		decision.Row, decision.Col, decision.Orientation,
		decision.CandidatesEvaluated, elapsed.Milliseconds(), decision.Reasoning)
	if elapsed > w.budget*8/10 {
		log.Printf("[BOT] warning: compute time %s near budget %s room=%s turn=%d",
			elapsed, w.budget, j.RoomCode, j.ExpectedTurn)
	}
}

// decide runs the strategy under the hard budget. The strategy runs in
// its own goroutine; on timeout the result is abandoned and nothing is
// committed. A panicking strategy is contained and reported as a failure.
func (w *Worker) decide(ctx context.Context, strategy bot.Strategy, rs *store.RoomState, playerID int, gen *rng.RNG) (bot.Decision, error) {
	type result struct {
		d   bot.Decision
		err error
	}
	ch := make(chan result, 1)

	cctx, cancel := context.WithTimeout(ctx, w.budget)
	defer cancel()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("worker: strategy panic: %v", r)}
			}
		}()
		d, err := strategy.Decide(&rs.GameState, playerID, gen)
		ch <- result{d: d, err: err}
	}()

	select {
	case res := <-ch:
		return res.d, res.err
	case <-cctx.Done():
		return bot.Decision{}, errBudgetExceeded
	}
}

func (w *Worker) mark(ctx context.Context, j store.Job, status store.JobStatus, msg string) {
	if err := w.store.MarkJob(ctx, j.ID, status, msg); err != nil {
		log.Printf("[WORKER] mark job %d %s failed: %v", j.ID, status, err)
	}
}
