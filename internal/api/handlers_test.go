package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/blackjack-be/internal/game"
	"github.com/calvinwijaya/blackjack-be/internal/service"
	"github.com/calvinwijaya/blackjack-be/internal/store"
)

type testServer struct {
	*httptest.Server
	hub *Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	engine := game.NewEngine(game.NewLockedSource(42), game.WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger)
	go hub.Run(ctx)

	svc := service.New(store.NewMemoryStore(), engine, hub, logger)
	srv := httptest.NewServer(NewRouter(NewHandlers(svc, hub, logger), logger, "http://localhost:5173"))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testServer{Server: srv, hub: hub}
}

type roundEnvelope struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Data    game.Round `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *testServer) round(t *testing.T, method, path, body string) game.Round {
	t.Helper()
	status, raw := s.do(t, method, path, body)
	require.Equal(t, http.StatusOK, status, string(raw))

	var env roundEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, 1, env.Status)
	return env.Data
}

func TestRegisterAndDetail(t *testing.T) {
	srv := newTestServer(t)

	created := srv.round(t, http.MethodPost, "/api/games/", "")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, game.InitialWallet, created.Wallet)
	assert.Len(t, created.PossibleCards, 49)
	assert.Nil(t, created.CurrentBet)
	assert.False(t, created.GameOver)

	first := srv.round(t, http.MethodGet, "/api/games/"+created.ID, "")
	second := srv.round(t, http.MethodGet, "/api/games/"+created.ID, "")
	assert.Equal(t, first, second)
	assert.Equal(t, created.ID, first.ID)

	status, raw := srv.do(t, http.MethodGet, "/api/games/", "")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Data []game.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.ID, list.Data[0].ID)
}

func TestDetailNotFound(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, http.MethodGet, "/api/games/not-an-id", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = srv.do(t, http.MethodGet, "/api/games/6f1c1e8e-2b7f-4a65-9d0e-3a4b5c6d7e8f", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = srv.do(t, http.MethodPut, "/api/games/take/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPlaceBetValidation(t *testing.T) {
	srv := newTestServer(t)
	created := srv.round(t, http.MethodPost, "/api/games/", "")

	for _, body := range []string{`{}`, `{"bet": 2.5}`, `{"bet": 0}`, `{"bet": -3}`, `{"bet": "abc"}`, `not json`} {
		status, raw := srv.do(t, http.MethodPut, "/api/games/bet/"+created.ID, body)
		assert.Equal(t, http.StatusBadRequest, status, "body %s: %s", body, raw)
	}

	// Nothing above reached the round
	current := srv.round(t, http.MethodGet, "/api/games/"+created.ID, "")
	assert.Equal(t, game.InitialWallet, current.Wallet)
	assert.Nil(t, current.CurrentBet)
}

func TestPlaceBetRejectedByRules(t *testing.T) {
	srv := newTestServer(t)
	created := srv.round(t, http.MethodPost, "/api/games/", "")

	got := srv.round(t, http.MethodPut, "/api/games/bet/"+created.ID, `{"bet": 500}`)
	assert.Equal(t, game.InitialWallet, got.Wallet)
	assert.Nil(t, got.CurrentBet)
	require.NotNil(t, got.Message)
	assert.Equal(t, game.MsgInsufficientFunds, *got.Message)
}

func TestPlayRound(t *testing.T) {
	srv := newTestServer(t)
	created := srv.round(t, http.MethodPost, "/api/games/", "")
	id := created.ID

	got := srv.round(t, http.MethodPut, "/api/games/take/"+id, "")
	require.NotNil(t, got.Message)
	assert.Equal(t, game.MsgBetRequired, *got.Message)
	assert.Len(t, got.Player.Cards, 2)

	got = srv.round(t, http.MethodPut, "/api/games/bet/"+id, `{"bet": "10"}`)
	assert.Equal(t, 90, got.Wallet)
	require.NotNil(t, got.CurrentBet)
	assert.Equal(t, 10, *got.CurrentBet)
	assert.Nil(t, got.Message)

	if got.Player.Count < 12 {
		got = srv.round(t, http.MethodPut, "/api/games/take/"+id, "")
		assert.Len(t, got.Player.Cards, 3)
	}

	if !got.GameOver {
		got = srv.round(t, http.MethodPut, "/api/games/expose/"+id, "")
		assert.True(t, got.GameOver)
		assert.GreaterOrEqual(t, got.Dealer.Count, game.DealerStandsAt)
		assert.Contains(t, []int{90, 100, 110}, got.Wallet)
	}

	again := srv.round(t, http.MethodPut, "/api/games/expose/"+id, "")
	require.NotNil(t, again.Message)
	assert.Equal(t, game.MsgRoundOver, *again.Message)
	assert.Equal(t, got.Wallet, again.Wallet)

	status, raw := srv.do(t, http.MethodGet, "/api/games/"+id+"/stats", "")
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Data store.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.Data.RoundsPlayed)
	assert.Equal(t, 10, stats.Data.TotalBets)

	next := srv.round(t, http.MethodPut, "/api/games/restart/"+id+"?type=continue", "")
	assert.False(t, next.GameOver)
	assert.Nil(t, next.CurrentBet)
	assert.Equal(t, got.Wallet, next.Wallet)

	fresh := srv.round(t, http.MethodPut, "/api/games/restart/"+id, "")
	assert.Equal(t, game.InitialWallet, fresh.Wallet)
	assert.Len(t, fresh.PossibleCards, 49)

	status, _ = srv.do(t, http.MethodPut, "/api/games/restart/"+id+"?type=sideways", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t)
	created := srv.round(t, http.MethodPost, "/api/games/", "")

	status, _ := srv.do(t, http.MethodDelete, "/api/games/"+created.ID, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodGet, "/api/games/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = srv.do(t, http.MethodDelete, "/api/games/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebSocketReceivesUpdates(t *testing.T) {
	srv := newTestServer(t)
	created := srv.round(t, http.MethodPost, "/api/games/", "")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?gameId=" + created.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "welcome", welcome.Type)

	require.Eventually(t, func() bool {
		return srv.hub.Subscribers(created.ID) == 1
	}, time.Second, 10*time.Millisecond)

	srv.round(t, http.MethodPut, "/api/games/bet/"+created.ID, `{"bet": 5}`)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update struct {
		Type   string `json:"type"`
		GameID string `json:"gameId"`
		Data   struct {
			Game   game.Round  `json:"game"`
			Result game.Result `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "gameUpdate", update.Type)
	assert.Equal(t, created.ID, update.GameID)
	assert.Equal(t, 95, update.Data.Game.Wallet)
	assert.Equal(t, game.ActionBet, update.Data.Result.Action)
}

func TestWebSocketRequiresGameID(t *testing.T) {
	srv := newTestServer(t)
	status, _ := srv.do(t, http.MethodGet, "/ws?gameId=nope", "")
	assert.Equal(t, http.StatusBadRequest, status)
}
