package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a bot move job.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobStale     JobStatus = "STALE"
)

// Job is one scheduled bot decision.
type Job struct {
	ID           int64
	RoomCode     string
	PlayerID     int
	ExpectedTurn int
	Status       JobStatus
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	Error        sql.NullString
}

// UpsertJob schedules a bot decision for (room, player, turn). The UNIQUE
// constraint makes re-scheduling the same key a no-op, with one
// exception: a FAILED row is revived to PENDING so a timed-out or crashed
// decision can be retried for the same turn. PENDING, RUNNING, COMPLETED,
// and STALE rows are left untouched.
func (s *Store) UpsertJob(ctx context.Context, code string, playerID, expectedTurn int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bot_move_jobs (room_code, player_id, expected_turn, status, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(room_code, player_id, expected_turn)
		 DO UPDATE SET status = ?, error = NULL, started_at = NULL, completed_at = NULL
		 WHERE bot_move_jobs.status = ?`,
		code, playerID, expectedTurn, JobPending, time.Now().UTC(), JobPending, JobFailed)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return nil
}

// ClaimNextPending atomically transitions up to limit PENDING jobs to
// RUNNING and returns them, oldest first. Concurrent workers can never
// claim the same job: the transition re-checks the status.
func (s *Store) ClaimNextPending(ctx context.Context, limit int) ([]Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, room_code, player_id, expected_turn FROM bot_move_jobs
		 WHERE status = ? ORDER BY id LIMIT ?`, JobPending, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending jobs: %w", err)
	}
	var candidates []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.RoomCode, &j.PlayerID, &j.ExpectedTurn); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan job: %w", err)
		}
		candidates = append(candidates, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select pending jobs: %w", err)
	}

	now := time.Now().UTC()
	claimed := make([]Job, 0, len(candidates))
	for _, j := range candidates {
		res, err := tx.ExecContext(ctx,
			`UPDATE bot_move_jobs SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
			JobRunning, now, j.ID, JobPending)
		if err != nil {
			return nil, fmt.Errorf("claim job %d: %w", j.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			j.Status = JobRunning
			j.StartedAt = sql.NullTime{Time: now, Valid: true}
			claimed = append(claimed, j)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return claimed, nil
}

// MarkJob finalizes a job with its terminal status and optional error.
func (s *Store) MarkJob(ctx context.Context, id int64, status JobStatus, errMsg string) error {
	var msg interface{}
	if errMsg != "" {
		msg = errMsg
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE bot_move_jobs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC(), msg, id)
	if err != nil {
		return fmt.Errorf("mark job %d: %w", id, err)
	}
	return nil
}

// JobsForRoom returns a room's jobs, newest first, for inspection.
func (s *Store) JobsForRoom(ctx context.Context, code string) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_code, player_id, expected_turn, status, started_at, completed_at, error
		 FROM bot_move_jobs WHERE room_code = ? ORDER BY id DESC`, code)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.RoomCode, &j.PlayerID, &j.ExpectedTurn,
			&j.Status, &j.StartedAt, &j.CompletedAt, &j.Error); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
