package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case ValidMoves:
		o.printValidMoves(v)
	case PlayerResult:
		fmt.Fprintf(o.w, "Player: %s\n", v.Player)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Game response type (matches API)
type Game struct {
	ID         string       `json:"id"`
	State      string       `json:"state"`
	MaxPlayers int          `json:"max_players"`
	Goal       int          `json:"goal"`
	Players    []GamePlayer `json:"players"`
	Rounds     []Round      `json:"rounds"`
	ValidMoves []int        `json:"valid_moves"`
	YourTurn   bool         `json:"your_turn"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// GamePlayer response type
type GamePlayer struct {
	Identity    string `json:"identity"`
	Score       int    `json:"score"`
	Active      bool   `json:"active"`
	PaddlesLeft int    `json:"paddles_left"`
}

// Round response type
type Round struct {
	Cells    []Cell `json:"cells"`
	Complete bool   `json:"complete"`
}

// Cell response type
type Cell struct {
	Value   string `json:"value"`
	Winning bool   `json:"winning,omitempty"`
}

// GameSummary response type
type GameSummary struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	MaxPlayers  int       `json:"max_players"`
	Goal        int       `json:"goal"`
	PlayerCount int       `json:"player_count"`
	Rounds      int       `json:"rounds"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameList response type
type GameList struct {
	Games          []GameSummary `json:"games"`
	LatestActivity *time.Time    `json:"latest_activity,omitempty"`
}

// ValidMoves response type
type ValidMoves struct {
	Paddles  []int `json:"paddles"`
	YourTurn bool  `json:"your_turn"`
}

// PlayerResult names the current player
type PlayerResult struct {
	Player string `json:"player"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	fmt.Fprintf(o.w, "Players: %d/%d  Goal: %d rounds\n", len(g.Players), g.MaxPlayers, g.Goal)

	if len(g.Players) > 0 {
		fmt.Fprintln(o.w, "\nScores:")
		for _, p := range g.Players {
			status := ""
			if !p.Active {
				status = " [quit]"
			}
			fmt.Fprintf(o.w, "  %s: %d points, %d paddles left%s\n", p.Identity, p.Score, p.PaddlesLeft, status)
		}
	}

	if len(g.Rounds) > 0 {
		fmt.Fprintln(o.w)
		o.printRounds(g)
	}

	if g.State != "over" && len(g.ValidMoves) > 0 {
		fmt.Fprintf(o.w, "\nYour paddles: %s\n", joinInts(g.ValidMoves))
	}
	if g.YourTurn {
		fmt.Fprintln(o.w, "Your turn!")
	}
}

// printRounds prints one row per round and one column per player.
// Winning paddles are starred.
func (o *Output) printRounds(g Game) {
	width := 3
	for _, p := range g.Players {
		width = max(width, len(p.Identity))
	}

	fmt.Fprintf(o.w, "%-6s", "Round")
	for _, p := range g.Players {
		fmt.Fprintf(o.w, " %*s", width, p.Identity)
	}
	fmt.Fprintln(o.w)

	for i, r := range g.Rounds {
		fmt.Fprintf(o.w, "%-6d", i+1)
		for _, c := range r.Cells {
			v := c.Value
			switch {
			case v == "":
				v = "."
			case c.Winning:
				v += "*"
			}
			fmt.Fprintf(o.w, " %*s", width, v)
		}
		fmt.Fprintln(o.w)
	}
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No active games")
		return
	}

	fmt.Fprintf(o.w, "Games (%d):\n", len(l.Games))
	for _, g := range l.Games {
		fmt.Fprintf(o.w, "  - %s  %s  %d/%d players  round %d/%d\n",
			g.ID, g.State, g.PlayerCount, g.MaxPlayers, g.Rounds, g.Goal)
	}
	if l.LatestActivity != nil {
		fmt.Fprintf(o.w, "Latest activity: %s\n", l.LatestActivity.Local().Format(time.DateTime))
	}
}

func (o *Output) printValidMoves(m ValidMoves) {
	if len(m.Paddles) == 0 {
		fmt.Fprintln(o.w, "No paddles left")
	} else {
		fmt.Fprintf(o.w, "Paddles: %s\n", joinInts(m.Paddles))
	}
	if m.YourTurn {
		fmt.Fprintln(o.w, "Your turn!")
	}
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
