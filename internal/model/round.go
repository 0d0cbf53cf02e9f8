package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Token is a single paddle. Paddles are ordered by value.
type Token int

// String renders the paddle as shown to players
func (t Token) String() string {
	return strconv.Itoa(int(t))
}

// Slot is one player's entry in a round
type Slot struct {
	Token Token
	Set   bool
}

// Played returns a filled slot
func Played(t Token) Slot {
	return Slot{Token: t, Set: true}
}

// MarshalJSON encodes an unset slot as null and a filled slot as its token
func (s Slot) MarshalJSON() ([]byte, error) {
	if !s.Set {
		return []byte("null"), nil
	}
	return json.Marshal(int(s.Token))
}

// UnmarshalJSON is the inverse of MarshalJSON
func (s *Slot) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Slot{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Played(Token(v))
	return nil
}

// Round holds one slot per player, in player order
type Round []Slot

// NewRound creates a round with every slot unset
func NewRound(players int) Round {
	return make(Round, players)
}

// IsComplete returns true when every slot has been filled
func (r Round) IsComplete() bool {
	if len(r) == 0 {
		return false
	}
	for _, s := range r {
		if !s.Set {
			return false
		}
	}
	return true
}

// Max returns the highest token played in the round
func (r Round) Max() (Token, bool) {
	var max Token
	found := false
	for _, s := range r {
		if s.Set && (!found || s.Token > max) {
			max = s.Token
			found = true
		}
	}
	return max, found
}

// Clone returns a copy of the round
func (r Round) Clone() Round {
	if r == nil {
		return nil
	}
	out := make(Round, len(r))
	copy(out, r)
	return out
}

// Ledger is the append-only history of rounds in a game.
// Every round but the last is complete.
type Ledger []Round

// Last returns the most recent round, or nil if no round has started
func (l Ledger) Last() Round {
	if len(l) == 0 {
		return nil
	}
	return l[len(l)-1]
}

// Open returns the incomplete trailing round, or nil if there is none
func (l Ledger) Open() Round {
	last := l.Last()
	if last == nil || last.IsComplete() {
		return nil
	}
	return last
}

// CompletedRounds returns the number of fully played rounds
func (l Ledger) CompletedRounds() int {
	if l.Open() != nil {
		return len(l) - 1
	}
	return len(l)
}

// Clone returns a deep copy of the ledger
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	for i, r := range l {
		out[i] = r.Clone()
	}
	return out
}

// MarshalJSON encodes the ledger as an array of slot arrays, [] when empty
func (l Ledger) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Round(l))
}

// EncodeLedger serializes a ledger for storage
func EncodeLedger(l Ledger) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeLedger parses a ledger produced by EncodeLedger
func DecodeLedger(s string) (Ledger, error) {
	if s == "" {
		return Ledger{}, nil
	}
	var l Ledger
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return nil, err
	}
	if l == nil {
		l = Ledger{}
	}
	return l, nil
}
