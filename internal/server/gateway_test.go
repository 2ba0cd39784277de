package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
	"github.com/arcanarena/arena-server-go/internal/journal"
)

func gatewayDB(t *testing.T) *cards.DB {
	t.Helper()
	db := cards.NewDB()
	db.MustRegister(&cards.Definition{
		ID: "plains", Name: "Plains", Types: []cards.Type{cards.TypeLand},
		Activated: []cards.ActivatedAbility{{
			ID: "plains-mana", Text: "{T}: Add {W}.", ManaAbility: true,
			Costs: []cards.Cost{{Kind: cards.CostTapSelf}},
			Effects: []cards.Effect{{
				Kind: cards.EffectAddMana,
				Mana: &cards.ManaProduction{Colors: map[mana.Color]int{mana.White: 1}},
			}},
		}},
	})
	return db
}

func testDeck(n int) []string {
	deck := make([]string, n)
	for i := range deck {
		deck[i] = "plains"
	}
	return deck
}

// dial connects a test websocket client to a gateway-backed server.
func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func readMsg(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func newGatewayServer(t *testing.T, store journal.Store) *httptest.Server {
	t.Helper()
	engine := game.NewEngine(zaptest.NewLogger(t), gatewayDB(t))
	gw := NewGateway(engine, store, zaptest.NewLogger(t))
	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func createGame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	sendMsg(t, conn, ClientMessage{
		Type: "create",
		Seed: 11,
		Setups: []game.PlayerSetup{
			{ID: "alice", Name: "Alice", Deck: testDeck(20)},
			{ID: "bob", Name: "Bob", Deck: testDeck(20)},
		},
	})
	msg := readMsg(t, conn)
	require.Equal(t, "state", msg.Type)
	require.NotEmpty(t, msg.GameID)
	return msg.GameID
}

func TestGatewayCreateReturnsState(t *testing.T) {
	srv := newGatewayServer(t, nil)
	conn := dial(t, srv.URL)

	sendMsg(t, conn, ClientMessage{
		Type: "create",
		Seed: 11,
		Setups: []game.PlayerSetup{
			{ID: "alice", Name: "Alice", Deck: testDeck(20)},
			{ID: "bob", Name: "Bob", Deck: testDeck(20)},
		},
	})

	msg := readMsg(t, conn)
	require.Equal(t, "state", msg.Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, "alice", msg.State.You.ID)
	assert.Len(t, msg.State.You.Hand, 7)
	assert.Empty(t, msg.State.Opponent.Hand)
}

func TestGatewayActRunsDecisionAndBroadcasts(t *testing.T) {
	store := journal.NewMemStore()
	srv := newGatewayServer(t, store)
	conn := dial(t, srv.URL)
	gameID := createGame(t, conn)

	sendMsg(t, conn, ClientMessage{
		Type: "act",
		Action: &game.Action{
			Type:    game.ActionResolveDecision,
			ActorID: "alice",
			Choice:  []string{"KEEP"},
		},
	})

	result := readMsg(t, conn)
	require.Equal(t, "result", result.Type)
	require.NotNil(t, result.Result)
	assert.Equal(t, game.StatusSuccess, result.Result.Status)

	// The submitting connection also gets the refreshed state broadcast.
	state := readMsg(t, conn)
	assert.Equal(t, "state", state.Type)

	entries, err := store.Entries(context.Background(), gameID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, game.ActionResolveDecision, entries[0].Action.Type)
	assert.Equal(t, game.StatusSuccess, entries[0].Result.Status)
}

func TestGatewayJoinSecondPlayer(t *testing.T) {
	srv := newGatewayServer(t, nil)
	host := dial(t, srv.URL)
	gameID := createGame(t, host)

	guest := dial(t, srv.URL)
	sendMsg(t, guest, ClientMessage{Type: "join", GameID: gameID, PlayerID: "bob"})

	msg := readMsg(t, guest)
	require.Equal(t, "state", msg.Type)
	assert.Equal(t, "bob", msg.State.You.ID)
}

func TestGatewayLegalAndSchema(t *testing.T) {
	srv := newGatewayServer(t, nil)
	conn := dial(t, srv.URL)
	createGame(t, conn)

	sendMsg(t, conn, ClientMessage{Type: "legal"})
	legal := readMsg(t, conn)
	require.Equal(t, "legal", legal.Type)
	assert.NotEmpty(t, legal.Legal, "the opening mulligan offers choices")

	sendMsg(t, conn, ClientMessage{Type: "schema"})
	schema := readMsg(t, conn)
	require.Equal(t, "schema", schema.Type)
	require.NotNil(t, schema.Schema)
	assert.Contains(t, schema.Schema.AllowedActions, game.ActionResolveDecision)
}

func TestGatewayErrorReplies(t *testing.T) {
	srv := newGatewayServer(t, nil)
	conn := dial(t, srv.URL)

	sendMsg(t, conn, ClientMessage{Type: "join", GameID: "missing", PlayerID: "alice"})
	assert.Equal(t, "error", readMsg(t, conn).Type)

	sendMsg(t, conn, ClientMessage{Type: "act"})
	assert.Equal(t, "error", readMsg(t, conn).Type)

	sendMsg(t, conn, ClientMessage{Type: "bogus"})
	assert.Equal(t, "error", readMsg(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, "error", readMsg(t, conn).Type)
}

func TestServerMessageRoundTrip(t *testing.T) {
	msg := ServerMessage{Type: "result", GameID: "g", Result: &game.ResolutionResult{Status: game.StatusFailure, Message: "no"}}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var back ServerMessage
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, msg.Result.Status, back.Result.Status)
}
