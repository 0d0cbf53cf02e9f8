package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/paddlegame/internal/api/apierr"
)

type contextKey string

const playerContextKey contextKey = "player"

const (
	// PlayerHeader names the caller
	PlayerHeader = "X-Player"
	// PlayerCookie is the fallback when the header is absent
	PlayerCookie = "player"

	maxIdentityLength = 64
)

// Identity requires every request to name its player. Identities are taken
// on trust; there is no authentication.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := extractIdentity(r)
			if identity == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if len(identity) > maxIdentityLength {
				apierr.WriteError(w, apierr.NewInvalidRequestError("player name is too long"))
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractIdentity extracts the player identity from the request
func extractIdentity(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get(PlayerHeader)); h != "" {
		return h
	}

	cookie, err := r.Cookie(PlayerCookie)
	if err == nil {
		return strings.TrimSpace(cookie.Value)
	}

	return ""
}

// GetPlayer returns the player identity from the request context, or ""
func GetPlayer(ctx context.Context) string {
	player, _ := ctx.Value(playerContextKey).(string)
	return player
}

// MustGetPlayer returns the player identity or panics
func MustGetPlayer(ctx context.Context) string {
	player := GetPlayer(ctx)
	if player == "" {
		panic("no player in context - identity middleware not applied?")
	}
	return player
}
