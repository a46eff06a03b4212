// Package service is the authoritative turn controller for Bloqueio
// rooms: the business-logic layer between transports (HTTP, WebSocket,
// MCP, the bot worker) and the rules engine + store underneath.
//
// Every action request follows the same arbitration path: load the room
// at some turn number T, reject anything a spectator could predict
// (wrong status, wrong turn, finished game), run the pure validators,
// then hand the store an atomic batch guarded by expectedTurn = T. A
// concurrent commit surfaces as CONCURRENT_MODIFICATION and leaves no
// partial state.
//
// After every successful commit the service invokes the bot scheduler
// hook (so a bot on turn gets exactly one queued decision) and the
// broadcaster hook (so WebSocket subscribers see the fresh snapshot).
// Bot decisions committed by the worker travel through CommitDecision,
// which funnels into the same arbitration path as human actions.
package service
