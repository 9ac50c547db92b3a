package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// Relay is the drawing channel: after a token gate, every frame fans out
// verbatim to all peers except the sender. No coordination, best effort.
type Relay struct {
	hub      *Hub
	verifier TokenVerifier
}

func NewRelay(hub *Hub, verifier TokenVerifier) *Relay {
	return &Relay{
		hub:      hub,
		verifier: verifier,
	}
}

// HandleDraw upgrades the connection and starts relaying.
func (rl *Relay) HandleDraw(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("draw upgrade failed")
		return
	}

	connID := uuid.NewString()
	go rl.pump(connID, conn)
}

func (rl *Relay) pump(connID string, conn *websocket.Conn) {
	defer func() {
		rl.hub.Unregister(connID)
		conn.Close()
	}()

	authenticated := false
	for {
		messageType, raw, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("conn", connID).Msg("draw read ended")
			return
		}

		if !authenticated {
			if _, err := rl.verifier.Verify(string(raw)); err != nil {
				log.Info().Str("conn", connID).Msg("draw token invalid, closing session")
				msg := websocket.FormatCloseMessage(websocket.CloseUnsupportedData, internal.CloseReasonInvalidToken)
				if err := conn.WriteControl(websocket.CloseMessage, msg, closeDeadline()); err != nil {
					log.Debug().Err(err).Msg("close frame write failed")
				}
				return
			}
			authenticated = true
			rl.hub.Register(connID, conn)
			continue
		}

		rl.hub.BroadcastRawExcept(connID, messageType, raw)
	}
}

func closeDeadline() time.Time {
	return time.Now().Add(5 * time.Second)
}
