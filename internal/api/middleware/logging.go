package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/paddlegame/internal/middleware"
)

// Logging logs API requests with their request id
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
