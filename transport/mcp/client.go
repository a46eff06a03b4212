package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gbr5/bloqueio-server/game/board"
	"github.com/gbr5/bloqueio-server/game/service"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools.
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Bloqueio Game Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Bloqueio - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Race your pawn to the opposite border of an 11x11 grid. Each turn you
either move your pawn (one step, or a jump over an adjacent pawn) or
place a barrier that blocks two edges. A barrier may never leave any
player without a path to their goal.

AVAILABLE TOOLS:
- create_room: Create a room (returns your session_token - keep it!)
- join_room: Take a free seat in a room
- add_bot: Seat a bot (host only): BOT_EASY, BOT_MEDIUM, BOT_HARD
- start_room: Start the game (host only, all seats filled)
- room_state: Get the board, players, barriers, and whose turn it is
- make_move: Move your pawn to a target cell
- place_barrier: Place a barrier at an anchor (H or V)
- undo: Undo your last action (only until the next player commits)
- move_history: View committed pawn moves
- my_stats: Your aggregate games played / won

Always pass the session_token returned by create_room or join_room.`),
	)

	c.registerTools()
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func intProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

// registerTools registers all MCP tools.
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new game room and take seat 0 as host",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"TWO_PLAYER", "FOUR_PLAYER"},
					"description": "Seat layout: TWO_PLAYER (12 walls each) or FOUR_PLAYER (6 walls each)",
				},
			},
			Required: []string{"game_mode"},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_room",
		Description: "Join a room in the first free seat",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": stringProp("6-character room code"),
			},
			Required: []string{"code"},
		},
	}, c.handleJoinRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "add_bot",
		Description: "Seat a bot in the room (host only, before start)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code":          stringProp("6-character room code"),
				"session_token": stringProp("Host session token"),
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"BOT_EASY", "BOT_MEDIUM", "BOT_HARD"},
					"description": "Bot difficulty",
				},
			},
			Required: []string{"code", "session_token", "type"},
		},
	}, c.handleAddBot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_room",
		Description: "Start the game (host only, every seat filled)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code":          stringProp("6-character room code"),
				"session_token": stringProp("Host session token"),
			},
			Required: []string{"code", "session_token"},
		},
	}, c.handleStartRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_state",
		Description: "Get the current room state: board, players, barriers, turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code":          stringProp("6-character room code"),
				"session_token": stringProp("Session token (optional, personalizes is_my_turn)"),
			},
			Required: []string{"code"},
		},
	}, c.handleRoomState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Move your pawn to a target cell (step or jump)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code":          stringProp("6-character room code"),
				"session_token": stringProp("Your session token"),
				"to_row":        intProp("Target row (0-10)"),
				"to_col":        intProp("Target column (0-10)"),
				"intent":        stringProp("Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)"),
			},
			Required: []string{"code", "session_token", "to_row", "to_col"},
		},
	}, c.handleMakeMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_barrier",
		Description: "Place a barrier at an anchor intersection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code":          stringProp("6-character room code"),
				"session_token": stringProp("Your session token"),
				"row":           intProp("Anchor row"),
				"col":           intProp("Anchor column"),
				"orientation": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"H", "V"},
					"description": "Barrier orientation",
				},
				"intent": stringProp("Brief explanation of the intent behind this barrier (serves as a rubber duck to help explain your reasoning)"),
			},
			Required: []string{"code", "session_token", "row", "col", "orientation"},
		},
	}, c.handlePlaceBarrier)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Undo your most recent action (only before the next player commits)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code":          stringProp("6-character room code"),
				"session_token": stringProp("Your session token"),
			},
			Required: []string{"code", "session_token"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "List the committed pawn moves of a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code":  stringProp("6-character room code"),
				"page":  intProp("Page number (default 1)"),
				"limit": intProp("Moves per page (default 50)"),
			},
			Required: []string{"code"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "my_stats",
		Description: "Aggregate games played / won for your identity",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_token": stringProp("Your session token"),
			},
			Required: []string{"session_token"},
		},
	}, c.handleMyStats)
}

// GetMCPServer returns the underlying MCP server for mounting.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs one REST request with the caller's token attached.
func (c *Client) apiCall(method, path, token string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			if code, ok := errResp["code"]; ok {
				return fmt.Errorf("[%s] %s", code, msg)
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Tool handlers

func args(request mcp.CallToolRequest) map[string]interface{} {
	if m, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func intArg(a map[string]interface{}, key string) int {
	if f, ok := a[key].(float64); ok {
		return int(f)
	}
	return 0
}

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	mode, _ := a["game_mode"].(string)

	var info service.RoomInfo
	err := c.apiCall("POST", "/api/rooms", "", map[string]string{"game_mode": mode}, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created room %s (%s).\nYou are player %d.\nSession token: %s\nShare the code; start with start_room once every seat is filled.",
		info.Code, mode, info.PlayerID, info.SessionToken)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJoinRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)

	var info service.RoomInfo
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/join", code), "", map[string]string{}, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined room %s as player %d.\nSession token: %s",
		info.Code, info.PlayerID, info.SessionToken)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleAddBot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)
	token, _ := a["session_token"].(string)
	botType, _ := a["type"].(string)

	var info service.RoomInfo
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/bots", code), token,
		map[string]string{"type": botType}, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Bot (%s) seated as player %d in room %s.",
		botType, info.PlayerID, code)), nil
}

func (c *Client) handleStartRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)
	token, _ := a["session_token"].(string)

	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/start", code), token, map[string]string{}, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Room %s started. Player 0 moves first.", code)), nil
}

func (c *Client) handleRoomState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)
	token, _ := a["session_token"].(string)

	var snap service.RoomSnapshot
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", code), token, nil, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)
	token, _ := a["session_token"].(string)
	intent, _ := a["intent"].(string)

	// Intent is rubber-duck reasoning; nothing to process.
	_ = intent

	body := map[string]int{
		"to_row": intArg(a, "to_row"),
		"to_col": intArg(a, "to_col"),
	}
	var snap service.RoomSnapshot
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/move", code), token, body, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Move committed.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handlePlaceBarrier(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)
	token, _ := a["session_token"].(string)
	orientation, _ := a["orientation"].(string)
	intent, _ := a["intent"].(string)
	_ = intent

	body := map[string]interface{}{
		"row":         intArg(a, "row"),
		"col":         intArg(a, "col"),
		"orientation": orientation,
	}
	var snap service.RoomSnapshot
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/barrier", code), token, body, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Barrier placed.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)
	token, _ := a["session_token"].(string)

	var snap service.RoomSnapshot
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/undo", code), token, map[string]string{}, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Undone.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	code, _ := a["code"].(string)
	page := intArg(a, "page")
	limit := intArg(a, "limit")

	path := fmt.Sprintf("/api/rooms/%s/history?page=%d&limit=%d", code, page, limit)
	var history service.HistoryResponse
	err := c.apiCall("GET", path, "", nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Moves %d (page %d/%d):\n", history.TotalMoves, history.Page, history.TotalPages)
	for _, m := range history.Moves {
		fmt.Fprintf(&b, "- player %d: (%d,%d) -> (%d,%d)\n",
			m.PlayerID, m.From.Row, m.From.Col, m.To.Row, m.To.Col)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleMyStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(request)
	token, _ := a["session_token"].(string)

	var stats service.UserStats
	err := c.apiCall("GET", "/api/me/stats", token, nil, &stats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Games played: %d\nGames won: %d",
		stats.GamesPlayed, stats.GamesWon)), nil
}

// Formatting helpers

// formatSnapshot renders a room as text: header, pawn grid, barrier and
// player listings. Barriers are listed rather than drawn; anchors plus
// orientation are unambiguous.
func formatSnapshot(snap *service.RoomSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Room %s | %s | mode %s | turn_number %d\n",
		snap.Code, snap.Status, snap.Mode, snap.TurnNumber)
	if snap.Winner != nil {
		fmt.Fprintf(&b, "WINNER: player %d\n", *snap.Winner)
	} else {
		fmt.Fprintf(&b, "Current turn: player %d", snap.CurrentTurn)
		if snap.IsMyTurn {
			b.WriteString(" (YOU)")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Pawn grid: digits are players, '.' interior, '#' border.
	grid := [board.GridSize][board.GridSize]byte{}
	for r := 0; r < board.GridSize; r++ {
		for c := 0; c < board.GridSize; c++ {
			if board.IsInterior(r, c) {
				grid[r][c] = '.'
			} else {
				grid[r][c] = '#'
			}
		}
	}
	for _, p := range snap.Players {
		grid[p.Pos.Row][p.Pos.Col] = byte('0' + p.ID)
	}
	for r := 0; r < board.GridSize; r++ {
		for c := 0; c < board.GridSize; c++ {
			b.WriteByte(grid[r][c])
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	b.WriteString("\n")

	for _, p := range snap.Players {
		fmt.Fprintf(&b, "Player %d [%s]: at (%d,%d), goal %s, walls %d\n",
			p.ID, p.Type, p.Pos.Row, p.Pos.Col, p.Goal, p.WallsLeft)
	}
	if len(snap.Barriers) > 0 {
		b.WriteString("Barriers:\n")
		for _, bar := range snap.Barriers {
			fmt.Fprintf(&b, "- %s at (%d,%d) by player %d\n",
				bar.Orientation, bar.Row, bar.Col, bar.PlacedBy)
		}
	}
	return b.String()
}
