// Package worker runs bot turns: the Scheduler enqueues at most one job
// per (room, player, turn) after each commit, and the Worker polls the
// job table, claims batches, runs the strategy under a hard compute
// budget, and commits the decision through the service's arbitration
// path.
//
// The split mirrors the contract: the scheduler is a hook, not a
// process — it only ever enqueues. The worker is the only component
// that executes strategies, and a decision it cannot commit (the room
// moved on, the budget elapsed, the strategy failed) marks the job and
// leaves the room untouched. Consecutive bot turns chain because every
// committed decision fires the scheduler hook again.
package worker
