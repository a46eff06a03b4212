// Package api exposes the room service as a REST API.
//
// Endpoints:
//
//	POST /api/rooms                    create a room {game_mode}
//	POST /api/rooms/{code}/join        take the next free seat
//	POST /api/rooms/{code}/bots        seat a bot (host only) {type}
//	POST /api/rooms/{code}/start       start the game (host only)
//	GET  /api/rooms/{code}             full snapshot + is_my_turn
//	GET  /api/rooms/{code}/history     paginated move history
//	POST /api/rooms/{code}/move        move the caller's pawn {to_row,to_col}
//	POST /api/rooms/{code}/barrier     place a barrier {row,col,orientation}
//	POST /api/rooms/{code}/undo        undo the caller's last action
//	GET  /api/me/stats                 caller's aggregate win counters
//	GET  /ws/{code}                    WebSocket room subscription
//	GET  /healthz                      liveness probe
//
// Caller identity travels in the X-Session-Token header; create/join
// mint a token when none is supplied and return it in the body. Errors
// respond {"error": ..., "code": ...} with the service's failure codes,
// so clients can branch without parsing messages.
package api
