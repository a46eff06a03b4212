package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gbr5/bloqueio-server/game/engine"
	"github.com/gbr5/bloqueio-server/game/service"
	ws "github.com/gbr5/bloqueio-server/transport/websocket"
)

// Server is the REST API server.
type Server struct {
	service service.GameService
	hub     *ws.Hub
	router  *mux.Router
}

// NewServer creates an API server over the game service. hub may be nil;
// the /ws route is only mounted when it is present.
func NewServer(gameService service.GameService, hub *ws.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Room lifecycle
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods("POST")
	api.HandleFunc("/rooms/{code}/join", s.handleJoinRoom).Methods("POST")
	api.HandleFunc("/rooms/{code}/bots", s.handleAddBot).Methods("POST")
	api.HandleFunc("/rooms/{code}/start", s.handleStartRoom).Methods("POST")

	// Reads
	api.HandleFunc("/rooms/{code}", s.handleGetRoomState).Methods("GET")
	api.HandleFunc("/rooms/{code}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/me/stats", s.handleGetStats).Methods("GET")

	// Actions
	api.HandleFunc("/rooms/{code}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/rooms/{code}/barrier", s.handleBarrier).Methods("POST")
	api.HandleFunc("/rooms/{code}/undo", s.handleUndo).Methods("POST")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws/{code}", func(w http.ResponseWriter, r *http.Request) {
			s.hub.ServeWS(w, r, mux.Vars(r)["code"])
		})
	}
}

// ServeHTTP makes the server mountable as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func callerToken(r *http.Request) string {
	return r.Header.Get("X-Session-Token")
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameMode string `json:"game_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	info, err := s.service.CreateRoom(r.Context(), engine.GameMode(req.GameMode), callerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.JoinRoom(r.Context(), mux.Vars(r)["code"], callerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	info, err := s.service.AddBot(r.Context(), mux.Vars(r)["code"], callerToken(r), engine.PlayerType(req.Type))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleStartRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.service.StartRoom(r.Context(), mux.Vars(r)["code"], callerToken(r)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetRoomState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetRoomState(r.Context(), mux.Vars(r)["code"], callerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := service.HistoryOptions{}
	if p, err := strconv.Atoi(query.Get("page")); err == nil {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil {
		opts.Limit = l
	}

	history, err := s.service.GetMoveHistory(r.Context(), mux.Vars(r)["code"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	token := callerToken(r)
	if token == "" {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "X-Session-Token header required")
		return
	}
	stats, err := s.service.GetUserStats(r.Context(), token)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ToRow int `json:"to_row"`
		ToCol int `json:"to_col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	snap, err := s.service.MakeMove(r.Context(), mux.Vars(r)["code"], callerToken(r), req.ToRow, req.ToCol)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBarrier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Row         int    `json:"row"`
		Col         int    `json:"col"`
		Orientation string `json:"orientation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	snap, err := s.service.PlaceBarrier(r.Context(), mux.Vars(r)["code"], callerToken(r), req.Row, req.Col, req.Orientation)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.UndoLast(r.Context(), mux.Vars(r)["code"], callerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForCode maps failure codes to HTTP statuses. Rule violations are
// well-formed requests the game refuses, hence 422.
func statusForCode(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeInvalidMode:
		return http.StatusBadRequest
	case service.CodeNotHost, service.CodeNotInRoom, service.CodeNotYourTurn:
		return http.StatusForbidden
	case service.CodeFull, service.CodeAlreadyStarted, service.CodeAlreadyJoined,
		service.CodeWrongStatus, service.CodeBelowMin, service.CodeAboveMax,
		service.CodeGameNotStarted, service.CodeGameFinished,
		service.CodeNotUndoable, service.CodeConcurrentModification:
		return http.StatusConflict
	case service.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	code := service.ErrorCode(err)
	respondError(w, statusForCode(code), code, err.Error())
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
