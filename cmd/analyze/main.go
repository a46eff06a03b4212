// Command analyze prints quick, human-readable statistics about a
// Bloqueio store database: room status distribution, per-room activity,
// and bot job outcomes with compute-time aggregates. It is an offline
// consumer of the observability fields the worker records.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

var dbPath = flag.String("db", "data/bloqueio.db", "Path to the store database")

func main() {
	flag.Parse()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := printRoomSummary(db); err != nil {
		log.Fatalf("room summary: %v", err)
	}
	if err := printJobSummary(db); err != nil {
		log.Fatalf("job summary: %v", err)
	}
}

// printRoomSummary lists every room with its mode, status, and activity.
func printRoomSummary(db *sql.DB) error {
	rows, err := db.Query(`
		SELECT r.code, r.game_mode, r.status, r.turn_number,
		       (SELECT COUNT(*) FROM moves m WHERE m.room_code = r.code),
		       (SELECT COUNT(*) FROM barriers b WHERE b.room_code = r.code)
		FROM rooms r ORDER BY r.created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	fmt.Println("Rooms:")
	count := 0
	for rows.Next() {
		var code, mode, status string
		var turns, moves, barriers int
		if err := rows.Scan(&code, &mode, &status, &turns, &moves, &barriers); err != nil {
			return err
		}
		fmt.Printf("  %s  %-11s %-8s turns=%-4d moves=%-4d barriers=%d\n",
			code, mode, status, turns, moves, barriers)
		count++
	}
	if count == 0 {
		fmt.Println("  (none)")
	}
	fmt.Println()
	return rows.Err()
}

// printJobSummary aggregates bot job outcomes and compute times. A
// healthy install shows mostly COMPLETED with occasional STALE from
// human/bot races; FAILED rows deserve a look at their error column.
func printJobSummary(db *sql.DB) error {
	rows, err := db.Query(`
		SELECT status, COUNT(*) FROM bot_move_jobs GROUP BY status ORDER BY status`)
	if err != nil {
		return err
	}
	defer rows.Close()

	fmt.Println("Bot jobs by status:")
	count := 0
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		fmt.Printf("  %-10s %d\n", status, n)
		count++
	}
	if count == 0 {
		fmt.Println("  (none)")
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var completed int
	var minS, avgS, maxS sql.NullFloat64
	err = db.QueryRow(`
		SELECT COUNT(*),
		       MIN((julianday(completed_at) - julianday(started_at)) * 86400.0),
		       AVG((julianday(completed_at) - julianday(started_at)) * 86400.0),
		       MAX((julianday(completed_at) - julianday(started_at)) * 86400.0)
		FROM bot_move_jobs
		WHERE status = 'COMPLETED' AND started_at IS NOT NULL AND completed_at IS NOT NULL`).
		Scan(&completed, &minS, &avgS, &maxS)
	if err != nil {
		return err
	}
	if completed > 0 && avgS.Valid {
		fmt.Printf("\nCompleted decision wall time: min=%s avg=%s max=%s over %d jobs\n",
			seconds(minS.Float64), seconds(avgS.Float64), seconds(maxS.Float64), completed)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}
