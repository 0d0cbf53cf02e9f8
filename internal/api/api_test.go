package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/paddlegame/internal/api"
	"github.com/mcoot/paddlegame/internal/api/apierr"
	"github.com/mcoot/paddlegame/internal/api/handler"
	"github.com/mcoot/paddlegame/internal/api/response"
	"github.com/mcoot/paddlegame/internal/factory"
	"github.com/mcoot/paddlegame/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		GameController: app.GameController,
		GameDefaults:   handler.GameDefaults(app.GameDefaults),
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, player string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if player != "" {
		req.Header.Set("X-Player", player)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createGame(t *testing.T, player string, maxPlayers, goal int) response.Game {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]int{"max_players": maxPlayers, "goal": goal}, player)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.Game](t, rr)
}

func (ts *testServer) play(t *testing.T, id, player string, paddle int) response.Game {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/moves", map[string]int{"paddle": paddle}, player)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[response.Game](t, rr)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code)
	resp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[response.Health](t, rr).Status)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestGamesRequireIdentity(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, "")
	assertErrorCode(t, rr, http.StatusUnauthorized, handler.CodeUnauthorized)
}

func TestIdentityFromCookie(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewBufferString(`{}`))
	req.AddCookie(&http.Cookie{Name: "player", Value: "carol"})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	g := decode[response.Game](t, rr)
	require.Len(t, g.Players, 1)
	assert.Equal(t, "carol", g.Players[0].Identity)
}

func TestCreateGameUsesDefaults(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", nil, "alice")
	require.Equal(t, http.StatusCreated, rr.Code)

	g := decode[response.Game](t, rr)
	assert.Equal(t, 3, g.MaxPlayers)
	assert.Equal(t, 5, g.Goal)
	assert.Equal(t, "registering", g.State)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, g.ValidMoves)
	assert.Equal(t, 5, g.Players[0].PaddlesLeft)
	assert.True(t, g.Players[0].Active)
	assert.Empty(t, g.Rounds)
}

func TestCreateGameInvalidConfig(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]int{"max_players": 1, "goal": 3}, "alice")
	assertErrorCode(t, rr, http.StatusBadRequest, handler.CodeInvalidGameConfig)

	rr = ts.request(http.MethodPost, "/api/v1/games", map[string]int{"max_players": 2, "goal": 42}, "alice")
	assertErrorCode(t, rr, http.StatusBadRequest, handler.CodeInvalidGameConfig)
}

func TestCreateGameMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewBufferString(`{"goal":`))
	req.Header.Set("X-Player", "alice")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assertErrorCode(t, rr, http.StatusBadRequest, handler.CodeInvalidRequest)
}

func TestGetUnknownGame(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/nope", nil, "alice")
	assertErrorCode(t, rr, http.StatusNotFound, handler.CodeGameNotFound)
}

func TestJoinGame(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	joined := decode[response.Game](t, rr)
	assert.Equal(t, "in_progress", joined.State)
	require.Len(t, joined.Players, 2)
	assert.Equal(t, "bob", joined.Players[1].Identity)
	assert.True(t, joined.YourTurn)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")
	assertErrorCode(t, rr, http.StatusConflict, handler.CodeAlreadyInGame)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "carol")
	assertErrorCode(t, rr, http.StatusConflict, handler.CodeGameFull)
}

func TestPlayFullGame(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 2)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")

	// Alice moves first; Bob sees her slot hidden until he moves
	after := ts.play(t, g.ID, "alice", 2)
	require.Len(t, after.Rounds, 1)
	assert.Equal(t, "2", after.Rounds[0].Cells[0].Value)
	assert.Equal(t, "", after.Rounds[0].Cells[1].Value)
	assert.False(t, after.YourTurn)
	assert.Equal(t, []int{1}, after.ValidMoves)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	bobView := decode[response.Game](t, rr)
	assert.Equal(t, "?", bobView.Rounds[0].Cells[0].Value)
	assert.True(t, bobView.YourTurn)

	after = ts.play(t, g.ID, "bob", 1)
	require.Len(t, after.Rounds, 1)
	assert.True(t, after.Rounds[0].Complete)
	assert.True(t, after.Rounds[0].Cells[0].Winning)
	assert.False(t, after.Rounds[0].Cells[1].Winning)
	assert.Equal(t, 2, after.Players[0].Score)
	assert.Equal(t, 0, after.Players[1].Score)
	assert.True(t, after.YourTurn)

	ts.play(t, g.ID, "bob", 2)
	final := ts.play(t, g.ID, "alice", 1)
	assert.Equal(t, "over", final.State)
	assert.Len(t, final.Rounds, 2)
	assert.Equal(t, 2, final.Players[0].Score)
	assert.Equal(t, 2, final.Players[1].Score)
	assert.False(t, final.YourTurn)
	assert.Empty(t, final.ValidMoves)
}

func TestPlayTieScoresSharedPoints(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 1)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")

	ts.play(t, g.ID, "alice", 1)
	final := ts.play(t, g.ID, "bob", 1)

	assert.Equal(t, "over", final.State)
	assert.Equal(t, 1, final.Players[0].Score)
	assert.Equal(t, 1, final.Players[1].Score)
	assert.True(t, final.Rounds[0].Cells[0].Winning)
	assert.True(t, final.Rounds[0].Cells[1].Winning)
}

func TestPlayUnavailablePaddle(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves", map[string]int{"paddle": 7}, "alice")
	assertErrorCode(t, rr, http.StatusBadRequest, handler.CodeInvalidMove)
}

func TestPlaySecondMoveInRoundIsDropped(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")

	first := ts.play(t, g.ID, "alice", 3)
	second := ts.play(t, g.ID, "alice", 2)

	assert.Equal(t, first.Rounds, second.Rounds)
	assert.Equal(t, []int{1, 2}, second.ValidMoves)
}

func TestPlayBeforeStartIsDropped(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)

	after := ts.play(t, g.ID, "alice", 1)
	assert.Equal(t, "registering", after.State)
	assert.Empty(t, after.Rounds)
	assert.Equal(t, []int{1, 2, 3}, after.ValidMoves)
}

func TestPlayNotInGame(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/moves", map[string]int{"paddle": 1}, "mallory")
	assertErrorCode(t, rr, http.StatusNotFound, handler.CodeNotInGame)
}

func TestMoves(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")
	ts.play(t, g.ID, "alice", 2)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+g.ID+"/moves", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	moves := decode[response.ValidMoves](t, rr)
	assert.Equal(t, []int{1, 3}, moves.Paddles)
	assert.False(t, moves.YourTurn)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID+"/moves", nil, "bob")
	moves = decode[response.ValidMoves](t, rr)
	assert.Equal(t, []int{1, 2, 3}, moves.Paddles)
	assert.True(t, moves.YourTurn)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID+"/moves", nil, "mallory")
	assertErrorCode(t, rr, http.StatusNotFound, handler.CodeNotInGame)
}

func TestSpectatorView(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")
	ts.play(t, g.ID, "alice", 2)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, "eve")
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[response.Game](t, rr)
	assert.Equal(t, "?", view.Rounds[0].Cells[0].Value)
	assert.Equal(t, "", view.Rounds[0].Cells[1].Value)
	assert.Empty(t, view.ValidMoves)
	assert.False(t, view.YourTurn)
}

func TestQuitDuringRegistration(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 3, 3)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/quit", nil, "bob")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, "alice")
	view := decode[response.Game](t, rr)
	require.Len(t, view.Players, 1)

	// Last player out deletes the game
	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/quit", nil, "alice")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, "alice")
	assertErrorCode(t, rr, http.StatusNotFound, handler.CodeGameNotFound)
}

func TestQuitInProgressKeepsSeat(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)
	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/quit", nil, "bob")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, "alice")
	view := decode[response.Game](t, rr)
	require.Len(t, view.Players, 2)
	assert.False(t, view.Players[1].Active)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil, "bob")
	assert.Empty(t, decode[response.GameList](t, rr).Games)
}

func TestListGames(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	empty := decode[response.GameList](t, rr)
	assert.Empty(t, empty.Games)
	assert.Nil(t, empty.LatestActivity)

	first := ts.createGame(t, "alice", 2, 3)
	ts.app.MockClock.Advance(time.Minute)
	second := ts.createGame(t, "alice", 3, 3)
	ts.createGame(t, "bob", 2, 3)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil, "alice")
	list := decode[response.GameList](t, rr)
	require.Len(t, list.Games, 2)
	assert.Equal(t, first.ID, list.Games[0].ID)
	assert.Equal(t, second.ID, list.Games[1].ID)
	assert.Equal(t, 1, list.Games[0].PlayerCount)
	require.NotNil(t, list.LatestActivity)
	assert.True(t, list.LatestActivity.Equal(second.UpdatedAt))
}

func TestEndGame(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, "alice", 2, 3)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/end", nil, "alice")
	assertErrorCode(t, rr, http.StatusConflict, handler.CodeGameNotInProgress)

	ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/join", nil, "bob")

	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/end", nil, "mallory")
	assertErrorCode(t, rr, http.StatusNotFound, handler.CodeNotInGame)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/end", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "over", decode[response.Game](t, rr).State)
}
