package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/calvinwijaya/blackjack-be/internal/game"
	"github.com/calvinwijaya/blackjack-be/internal/service"
	"github.com/calvinwijaya/blackjack-be/internal/store"
)

// Handlers contains all the API handlers
type Handlers struct {
	svc    *service.Service
	hub    *Hub
	logger *log.Logger
}

// NewHandlers creates a new instance of Handlers
func NewHandlers(svc *service.Service, hub *Hub, logger *log.Logger) *Handlers {
	return &Handlers{
		svc:    svc,
		hub:    hub,
		logger: logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	games := r.PathPrefix("/api/games").Subrouter()

	games.HandleFunc("/", h.List).Methods(http.MethodGet)
	games.HandleFunc("", h.List).Methods(http.MethodGet)
	games.HandleFunc("/", h.Register).Methods(http.MethodPost)
	games.HandleFunc("", h.Register).Methods(http.MethodPost)
	games.HandleFunc("/restart/{id}", h.Restart).Methods(http.MethodPut)
	games.HandleFunc("/bet/{id}", h.PlaceBet).Methods(http.MethodPut)
	games.HandleFunc("/take/{id}", h.Hit).Methods(http.MethodPut)
	games.HandleFunc("/expose/{id}", h.Expose).Methods(http.MethodPut)
	games.HandleFunc("/{id}/stats", h.Stats).Methods(http.MethodGet)
	games.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)

	// WebSocket endpoint
	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.WebSocketHandler)
	}
}

// envelope is the body of every response
type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func success(w http.ResponseWriter, message string, data interface{}) {
	response(w, http.StatusOK, envelope{Status: 1, Message: message, Data: data})
}

func validationError(w http.ResponseWriter, data interface{}) {
	response(w, http.StatusBadRequest, envelope{Status: 0, Message: "Validation Error", Data: data})
}

func notFound(w http.ResponseWriter, message string) {
	response(w, http.StatusNotFound, envelope{Status: 0, Message: message})
}

// failure maps a service error to a status code
func (h *Handlers) failure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "Game not found")
		return
	}
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	response(w, http.StatusInternalServerError, envelope{Status: 0, Message: err.Error()})
}

// gameID returns the {id} path variable if it is a well formed id
func gameID(r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// List returns the id, creation time and wallet of every game
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.List(r.Context())
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Games Data Fetch Success", summaries)
}

// Get returns the full state of a game
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		notFound(w, "Game not found")
		return
	}

	round, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game Data Fetch Success", round)
}

// Register creates a new game with a fresh deal
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	round, _, err := h.svc.Register(r.Context())
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game Registration Success", round)
}

// Restart starts another round, keeping the wallet with ?type=continue
func (h *Handlers) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		validationError(w, "Invalid Game ID")
		return
	}

	mode, err := game.ParseRestartMode(r.URL.Query().Get("type"))
	if err != nil {
		validationError(w, "Restart type should be either continue or new")
		return
	}

	round, _, err := h.svc.Restart(r.Context(), id, mode)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game Restart Success", round)
}

// PlaceBet escrows the bet from the request body
func (h *Handlers) PlaceBet(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		validationError(w, "Invalid Game ID")
		return
	}

	amount, msg := parseBet(r)
	if msg != "" {
		validationError(w, msg)
		return
	}

	round, _, err := h.svc.PlaceBet(r.Context(), id, amount)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game Bet Success", round)
}

// parseBet reads {"bet": n} where n is a positive integer, given either as
// a JSON number or a numeric string. On failure it returns the reason.
func parseBet(r *http.Request) (int, string) {
	var req struct {
		Bet json.Number `json:"bet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, "Bet value should be an integer number"
	}
	if req.Bet == "" {
		return 0, "Bet value is required"
	}

	amount, err := strconv.Atoi(req.Bet.String())
	if err != nil || amount < 1 {
		return 0, "Bet value should be an integer number"
	}
	return amount, ""
}

// Hit deals the player another card
func (h *Handlers) Hit(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		validationError(w, "Invalid Game ID")
		return
	}

	round, _, err := h.svc.Hit(r.Context(), id)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game Take Card Success", round)
}

// Expose reveals the dealer's cards and settles the round
func (h *Handlers) Expose(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		validationError(w, "Invalid Game ID")
		return
	}

	round, _, err := h.svc.Expose(r.Context(), id)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game Expose Success", round)
}

// Delete removes a game
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		validationError(w, "Invalid Game ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game delete Success", nil)
}

// Stats returns the settled-round history summary of a game
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		notFound(w, "Game not found")
		return
	}

	stats, err := h.svc.Stats(r.Context(), id)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	success(w, "Game Stats Fetch Success", stats)
}
