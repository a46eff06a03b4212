// Package websocket pushes room snapshots to subscribed clients.
//
// Clients connect per room (GET /ws/{code}) and receive the full room
// snapshot after every committed action. The push channel is purely
// additive: the REST read path stays poll-compatible, and turn_number
// gives clients freshness detection either way — a client that misses a
// frame just sees a larger jump on the next one.
//
// The hub is the service's Broadcaster hook. It owns all client
// registration state behind a single event-loop goroutine, so no locks
// are needed around the room maps.
package websocket
