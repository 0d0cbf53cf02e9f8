package redis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mcoot/paddlegame/internal/model"
)

// Hash field names
const (
	fieldMaxPlayers = "max_players"
	fieldGoal       = "goal"
	fieldState      = "state"
	fieldTurns      = "turns"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
	fieldVersion    = "version"

	fieldIdentity = "identity"
	fieldScore    = "score"
	fieldActive   = "active"
	fieldPaddles  = "paddles"
)

func encodeTime(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

func decodeTime(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func encodePaddles(paddles []model.Token) (string, error) {
	if paddles == nil {
		paddles = []model.Token{}
	}
	data, err := json.Marshal(paddles)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func gameFields(game *model.Game) (map[string]interface{}, error) {
	turns, err := model.EncodeLedger(game.Ledger)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		fieldMaxPlayers: game.MaxPlayers,
		fieldGoal:       game.Goal,
		fieldState:      int(game.State),
		fieldTurns:      turns,
		fieldCreatedAt:  encodeTime(game.CreatedAt),
		fieldUpdatedAt:  encodeTime(game.UpdatedAt),
		fieldVersion:    game.Version,
	}, nil
}

func playerFields(player *model.Player) (map[string]interface{}, error) {
	paddles, err := encodePaddles(player.Paddles)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		fieldIdentity: player.Identity,
		fieldScore:    player.Score,
		fieldActive:   encodeBool(player.Active),
		fieldPaddles:  paddles,
	}, nil
}

func decodeGame(id model.GameID, fields map[string]string) (*model.Game, error) {
	game := &model.Game{ID: id}
	var err error

	if game.MaxPlayers, err = strconv.Atoi(fields[fieldMaxPlayers]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldMaxPlayers, err)
	}
	if game.Goal, err = strconv.Atoi(fields[fieldGoal]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldGoal, err)
	}
	state, err := strconv.Atoi(fields[fieldState])
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldState, err)
	}
	game.State = model.GameState(state)
	if game.Ledger, err = model.DecodeLedger(fields[fieldTurns]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldTurns, err)
	}
	if game.CreatedAt, err = decodeTime(fields[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldCreatedAt, err)
	}
	if game.UpdatedAt, err = decodeTime(fields[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldUpdatedAt, err)
	}
	// Games written before versioning start at zero
	if v, ok := fields[fieldVersion]; ok {
		if game.Version, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("decode %s: %w", fieldVersion, err)
		}
	}
	return game, nil
}

func decodePlayer(fields map[string]string) (model.Player, error) {
	player := model.Player{
		Identity: fields[fieldIdentity],
		Active:   fields[fieldActive] == "1",
	}
	var err error
	if player.Score, err = strconv.Atoi(fields[fieldScore]); err != nil {
		return model.Player{}, fmt.Errorf("decode %s: %w", fieldScore, err)
	}
	if err := json.Unmarshal([]byte(fields[fieldPaddles]), &player.Paddles); err != nil {
		return model.Player{}, fmt.Errorf("decode %s: %w", fieldPaddles, err)
	}
	return player, nil
}
