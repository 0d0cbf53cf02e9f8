package model

// Player is one identity's seat in a single game
type Player struct {
	Identity string
	Score    int
	Active   bool    // false once the player has quit a started game
	Paddles  []Token // paddles not yet played
}

// Clone returns a copy that shares no memory with p
func (p Player) Clone() Player {
	p.Paddles = append([]Token(nil), p.Paddles...)
	return p
}
