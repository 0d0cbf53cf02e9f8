package history

import (
	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/scoring"
)

// Visibility says what a viewer may see of a slot
type Visibility int

const (
	Shown  Visibility = iota // Token is visible
	Empty                    // Slot not yet played
	Hidden                   // Played, but the viewer has not moved this round
)

// Spectator is the viewer index for someone who is not in the game
const Spectator = -1

// Cell is one annotated slot
type Cell struct {
	Token      model.Token
	Visibility Visibility
	Winning    bool // only ever set on completed rounds
}

// Display renders the cell the way a board shows it
func (c Cell) Display() string {
	switch c.Visibility {
	case Empty:
		return ""
	case Hidden:
		return "?"
	default:
		return c.Token.String()
	}
}

// Round is one annotated round
type Round struct {
	Cells    []Cell
	Complete bool
}

// Build projects the ledger for one viewer. Completed rounds show every token
// with the highest marked as winning. In the open round the viewer always sees
// their own slot, and sees other set slots only after moving themselves.
func Build(ledger model.Ledger, viewer int, rule scoring.Rule) []Round {
	rounds := make([]Round, 0, len(ledger))
	for _, r := range ledger {
		if r.IsComplete() {
			rounds = append(rounds, completed(r, rule))
		} else {
			rounds = append(rounds, open(r, viewer))
		}
	}
	return rounds
}

func completed(r model.Round, rule scoring.Rule) Round {
	cells := make([]Cell, len(r))
	for i, slot := range r {
		cells[i] = Cell{Token: slot.Token, Visibility: Shown}
	}
	for _, w := range rule.Winners(r) {
		cells[w].Winning = true
	}
	return Round{Cells: cells, Complete: true}
}

func open(r model.Round, viewer int) Round {
	viewerMoved := viewer >= 0 && viewer < len(r) && r[viewer].Set
	cells := make([]Cell, len(r))
	for i, slot := range r {
		switch {
		case !slot.Set:
			cells[i] = Cell{Visibility: Empty}
		case i == viewer || viewerMoved:
			cells[i] = Cell{Token: slot.Token, Visibility: Shown}
		default:
			cells[i] = Cell{Visibility: Hidden}
		}
	}
	return Round{Cells: cells}
}
