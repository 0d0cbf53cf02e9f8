package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/paddlegame/internal/api/middleware"
	"github.com/mcoot/paddlegame/internal/api/request"
	"github.com/mcoot/paddlegame/internal/api/response"
	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/game"
)

// GameDefaults fill in settings a create request leaves out
type GameDefaults struct {
	MaxPlayers int
	Goal       int
}

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameController game.ControllerInterface
	defaults       GameDefaults
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController game.ControllerInterface, defaults GameDefaults) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		defaults:       defaults,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.MaxPlayers == 0 {
		req.MaxPlayers = h.defaults.MaxPlayers
	}
	if req.Goal == 0 {
		req.Goal = h.defaults.Goal
	}

	g, err := h.gameController.CreateGame(r.Context(), player, req.MaxPlayers, req.Goal)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, http.StatusCreated, g, player)
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	active, err := h.gameController.ListActiveGames(r.Context(), player)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromActive(active))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, http.StatusOK, g, player)
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.gameController.JoinGame(r.Context(), gameID(r), player)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, http.StatusOK, g, player)
}

// Quit handles POST /api/v1/games/{id}/quit
func (h *GameHandler) Quit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.gameController.QuitGame(r.Context(), gameID(r), player); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Moves handles GET /api/v1/games/{id}/moves
func (h *GameHandler) Moves(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := gameID(r)

	paddles, err := h.gameController.ValidMoves(r.Context(), id, player)
	if err != nil {
		WriteError(w, err)
		return
	}
	yourTurn, err := h.gameController.IsPlayersTurn(r.Context(), id, player)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.ValidMoves{Paddles: make([]int, len(paddles)), YourTurn: yourTurn}
	for i, t := range paddles {
		resp.Paddles[i] = int(t)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Play handles POST /api/v1/games/{id}/moves.
// A move that cannot be placed right now is dropped and the unchanged game
// is returned.
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	g, err := h.gameController.SubmitMove(r.Context(), gameID(r), player, model.Token(req.Paddle))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, http.StatusOK, g, player)
}

// End handles POST /api/v1/games/{id}/end. Only players of the game may end it.
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := gameID(r)

	g, err := h.gameController.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if g.PlayerIndex(player) == -1 {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	g, err = h.gameController.ForceGameOver(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, http.StatusOK, g, player)
}

func (h *GameHandler) writeView(w http.ResponseWriter, status int, g *model.Game, player string) {
	response.JSON(w, status, response.GameFromProjection(h.gameController.View(g, player)))
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}
