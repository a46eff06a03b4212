// Package bot implements the three bot difficulties as pure decision
// functions over a game snapshot.
//
// A strategy never mutates state and never talks to storage: it receives
// the read-only engine.GameState plus a deterministic rng.RNG and returns
// a single Decision (a pawn move or a barrier placement). All randomness
// flows through the provided generator, so identical snapshot + seed
// always yields the identical decision — the property the bot worker
// relies on for replayable games.
//
// Strategies are a small closed set keyed by engine.PlayerType; ForType
// is a plain dispatch table, no registry.
package bot
