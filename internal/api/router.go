package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/paddlegame/internal/api/handler"
	"github.com/mcoot/paddlegame/internal/api/middleware"
	"github.com/mcoot/paddlegame/internal/api/response"
	"github.com/mcoot/paddlegame/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController game.ControllerInterface
	GameDefaults   handler.GameDefaults
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.GameDefaults)

	// API subrouter with common middleware. Logging runs outermost so
	// recovered panics are logged with their request id.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	// Health check endpoint (no identity)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Game routes (all require a player identity)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(middleware.Identity())
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/join", gameHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/{id}/quit", gameHandler.Quit).Methods(http.MethodPost)
	games.HandleFunc("/{id}/moves", gameHandler.Moves).Methods(http.MethodGet)
	games.HandleFunc("/{id}/moves", gameHandler.Play).Methods(http.MethodPost)
	games.HandleFunc("/{id}/end", gameHandler.End).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
