// Package mcp exposes the Bloqueio server as MCP tools.
//
// The Client is a thin proxy: every tool call becomes a request against
// the REST API, so the MCP surface can never drift from the HTTP one and
// the server process stays the single authority. Tool results are
// formatted as plain text for LLM consumption, including a rendered
// board.
//
// The caller's session token (returned by create_room / join_room) is a
// tool argument, mirroring the X-Session-Token header of the REST API.
package mcp
