package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arcanarena/arena-server-go/internal/game"
	"github.com/arcanarena/arena-server-go/internal/journal"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage is what a connected player sends over the socket.
type ClientMessage struct {
	Type     string             `json:"type"`
	GameID   string             `json:"game_id,omitempty"`
	PlayerID string             `json:"player_id,omitempty"`
	Seed     int64              `json:"seed,omitempty"`
	Setups   []game.PlayerSetup `json:"setups,omitempty"`
	Action   *game.Action       `json:"action,omitempty"`
}

// ServerMessage is what the gateway sends back.
type ServerMessage struct {
	Type    string                 `json:"type"`
	GameID  string                 `json:"game_id,omitempty"`
	State   *game.VisibleState     `json:"state,omitempty"`
	Legal   []game.Action          `json:"legal,omitempty"`
	Schema  *game.Schema           `json:"schema,omitempty"`
	Result  *game.ResolutionResult `json:"result,omitempty"`
	Message string                 `json:"message,omitempty"`
}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	gameID   string
	playerID string
}

// Gateway exposes the engine over websockets. Each connection gets a read
// goroutine and a write goroutine; all game mutation happens inside the
// engine, which serializes per game.
type Gateway struct {
	engine  *game.Engine
	journal journal.Store
	logger  *zap.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewGateway creates a gateway over the given engine. The journal may be
// nil; submissions are then not recorded.
func NewGateway(engine *game.Engine, store journal.Store, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		engine:  engine,
		journal: store,
		logger:  logger,
		clients: make(map[*client]bool),
	}
}

// Handler returns the HTTP handler that upgrades connections.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.serveWS)
	return mux
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	g.mu.Lock()
	g.clients[c] = true
	g.mu.Unlock()

	go c.writePump()
	go g.readPump(c)
}

func (g *Gateway) readPump(c *client) {
	defer func() {
		// Close the send channel under the lock so a concurrent
		// broadcast cannot write to it afterwards.
		g.mu.Lock()
		delete(g.clients, c)
		close(c.send)
		g.mu.Unlock()
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			g.reply(c, ServerMessage{Type: "error", Message: "malformed message"})
			continue
		}
		g.handle(c, msg)
	}
}

func (c *client) writePump() {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (g *Gateway) handle(c *client, msg ClientMessage) {
	switch msg.Type {
	case "create":
		if len(msg.Setups) != 2 {
			g.reply(c, ServerMessage{Type: "error", Message: "create needs exactly two player setups"})
			return
		}
		gameID, err := g.engine.CreateGame(msg.Seed, [2]game.PlayerSetup{msg.Setups[0], msg.Setups[1]})
		if err != nil {
			g.reply(c, ServerMessage{Type: "error", Message: err.Error()})
			return
		}
		c.gameID = gameID
		c.playerID = msg.Setups[0].ID
		g.sendState(c)

	case "join":
		if _, err := g.engine.View(msg.GameID, msg.PlayerID); err != nil {
			g.reply(c, ServerMessage{Type: "error", Message: err.Error()})
			return
		}
		c.gameID = msg.GameID
		c.playerID = msg.PlayerID
		g.sendState(c)

	case "state":
		g.sendState(c)

	case "legal":
		legal, err := g.engine.LegalActionsFor(c.gameID, c.playerID)
		if err != nil {
			g.reply(c, ServerMessage{Type: "error", Message: err.Error()})
			return
		}
		g.reply(c, ServerMessage{Type: "legal", GameID: c.gameID, Legal: legal})

	case "schema":
		schema, err := g.engine.SchemaFor(c.gameID, c.playerID)
		if err != nil {
			g.reply(c, ServerMessage{Type: "error", Message: err.Error()})
			return
		}
		g.reply(c, ServerMessage{Type: "schema", GameID: c.gameID, Schema: schema})

	case "act":
		if msg.Action == nil {
			g.reply(c, ServerMessage{Type: "error", Message: "act needs an action"})
			return
		}
		before, _ := g.engine.View(c.gameID, c.playerID)
		result := g.engine.Submit(c.gameID, *msg.Action)
		if g.journal != nil {
			err := g.journal.Record(context.Background(), journal.Entry{
				GameID:  c.gameID,
				ActorID: msg.Action.ActorID,
				Action:  *msg.Action,
				Before:  before,
				Result:  result,
			})
			if err != nil {
				g.logger.Warn("journal write failed",
					zap.String("game_id", c.gameID), zap.Error(err))
			}
		}
		g.reply(c, ServerMessage{Type: "result", GameID: c.gameID, Result: &result})
		g.broadcastState(c.gameID)

	default:
		g.reply(c, ServerMessage{Type: "error", Message: "unknown message type " + msg.Type})
	}
}

func (g *Gateway) sendState(c *client) {
	view, err := g.engine.View(c.gameID, c.playerID)
	if err != nil {
		g.reply(c, ServerMessage{Type: "error", Message: err.Error()})
		return
	}
	g.reply(c, ServerMessage{Type: "state", GameID: c.gameID, State: view})
}

// broadcastState pushes each subscribed player their own projection of the
// game after a mutation.
func (g *Gateway) broadcastState(gameID string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.clients {
		if c.gameID != gameID {
			continue
		}
		view, err := g.engine.View(gameID, c.playerID)
		if err != nil {
			continue
		}
		g.send(c, ServerMessage{Type: "state", GameID: gameID, State: view})
	}
}

func (g *Gateway) reply(c *client, msg ServerMessage) {
	g.send(c, msg)
}

func (g *Gateway) send(c *client, msg ServerMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		g.logger.Error("marshal server message", zap.Error(err))
		return
	}
	select {
	case c.send <- raw:
	default:
		g.logger.Warn("dropping message to slow client",
			zap.String("player_id", c.playerID))
	}
}

// Serve runs the HTTP server until ctx is canceled, then shuts down within
// the given timeout.
func (g *Gateway) Serve(ctx context.Context, address string, shutdownTimeout time.Duration) error {
	srv := &http.Server{Addr: address, Handler: g.Handler()}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("websocket gateway listening", zap.String("address", address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
