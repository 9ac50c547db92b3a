package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal"
	"github.com/szabala94/KalamburyPro-master/internal/game"
)

// TokenVerifier checks an opaque bearer credential and returns the identity
// behind it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// PointsLoader reads a player's durable score when their session starts.
type PointsLoader interface {
	GetPoints(ctx context.Context, username string) (int, error)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway runs the per-connection message pump of the game channel. A
// connection starts unauthenticated; its first frame must be a token.
// After that, frames are typed game messages.
type Gateway struct {
	hub      *Hub
	game     *game.Coordinator
	verifier TokenVerifier
	users    PointsLoader
}

func NewGateway(hub *Hub, coordinator *game.Coordinator, verifier TokenVerifier, users PointsLoader) *Gateway {
	return &Gateway{
		hub:      hub,
		game:     coordinator,
		verifier: verifier,
		users:    users,
	}
}

// HandleChat upgrades the connection and starts its message pump.
func (g *Gateway) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("chat upgrade failed")
		return
	}

	connID := uuid.NewString()
	g.hub.Register(connID, conn)
	go g.pump(connID, conn)
}

func (g *Gateway) pump(connID string, conn *websocket.Conn) {
	ctx := context.Background()

	// Whatever ends the loop, the session is removed and the proper
	// disconnect transition runs. Failures on this path stay inside the
	// coordinator; they never escape the goroutine.
	defer func() {
		g.hub.Unregister(connID)
		conn.Close()
		g.game.HandleDisconnect(ctx, connID)
	}()

	authenticated := false
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("conn", connID).Msg("chat read ended")
			return
		}

		if !authenticated {
			username, err := g.verifier.Verify(string(raw))
			if err != nil {
				log.Info().Str("conn", connID).Msg("token invalid, closing session")
				g.closeWith(conn, websocket.CloseUnsupportedData, internal.CloseReasonInvalidToken)
				return
			}

			points, err := g.users.GetPoints(ctx, username)
			if err != nil {
				log.Error().Err(err).Str("username", username).Msg("loading player failed")
				g.closeWith(conn, websocket.CloseInternalServerErr, internal.CloseReasonIntegrity)
				return
			}
			if err := g.game.Join(connID, username, points); err != nil {
				log.Error().Err(err).Str("username", username).Msg("join rejected")
				g.closeWith(conn, websocket.CloseInternalServerErr, internal.CloseReasonIntegrity)
				return
			}
			authenticated = true

			started, err := g.game.EnsureDrawer(ctx)
			if err != nil {
				log.Error().Err(err).Str("conn", connID).Msg("starting game failed")
				g.closeWith(conn, websocket.CloseInternalServerErr, internal.CloseReasonIntegrity)
				return
			}
			if started {
				continue
			}
			// A turn is already running: fall through and treat the first
			// frame as a regular game message.
		}

		if err := g.dispatch(ctx, connID, raw); err != nil {
			log.Error().Err(err).Str("conn", connID).Msg("closing session after integrity failure")
			g.closeWith(conn, websocket.CloseInternalServerErr, internal.CloseReasonIntegrity)
			return
		}
	}
}

// dispatch routes one authenticated frame. Unrecognized or malformed
// payloads are logged and ignored; only integrity failures surface.
func (g *Gateway) dispatch(ctx context.Context, connID string, raw []byte) error {
	var msg internal.ChatMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().Str("conn", connID).Msg("malformed frame ignored")
		return nil
	}

	switch msg.Type {
	case internal.MsgMessage:
		return g.game.HandleChat(ctx, connID, msg.Content)
	case internal.MsgCleanCanvas:
		g.hub.Broadcast(internal.ChatMessage{Type: internal.MsgCleanCanvas})
		return nil
	default:
		log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("unrecognized message type ignored")
		return nil
	}
}

func (g *Gateway) closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, closeDeadline()); err != nil {
		log.Debug().Err(err).Msg("close frame write failed")
	}
	conn.Close()
}
