package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/paddlegame/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidMove          = "INVALID_MOVE"
	CodeInvalidGameConfig    = "INVALID_GAME_CONFIG"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeGameNotFound         = "GAME_NOT_FOUND"
	CodeNotInGame            = "NOT_IN_GAME"
	CodeGameFull             = "GAME_FULL"
	CodeAlreadyInGame        = "ALREADY_IN_GAME"
	CodeConsistencyViolation = "CONSISTENCY_VIOLATION"
	CodeGameNotInProgress    = "GAME_NOT_IN_PROGRESS"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotInGame, "Not a player in this game"}}
	case errors.Is(err, model.ErrGameFull):
		return &httpError{http.StatusConflict, APIError{CodeGameFull, "Game is not accepting players"}}
	case errors.Is(err, model.ErrAlreadyInGame):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInGame, "Already in this game"}}
	case errors.Is(err, model.ErrConsistencyViolation):
		return &httpError{http.StatusConflict, APIError{CodeConsistencyViolation, "Game changed concurrently, retry"}}
	case errors.Is(err, model.ErrGameNotInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameNotInProgress, "Game is not in progress"}}
	case errors.Is(err, model.ErrInvalidMove):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMove, "Paddle is not available"}}
	case errors.Is(err, model.ErrInvalidGameConfig):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGameConfig, err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Player identity required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
