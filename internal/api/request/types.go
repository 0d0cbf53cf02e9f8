package request

// CreateGameRequest is the request body for creating a game.
// Zero values fall back to the server defaults.
type CreateGameRequest struct {
	MaxPlayers int `json:"max_players,omitempty"`
	Goal       int `json:"goal,omitempty"`
}

// MoveRequest is the request body for playing a paddle
type MoveRequest struct {
	Paddle int `json:"paddle"`
}
