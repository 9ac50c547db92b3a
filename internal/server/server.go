package server

import (
	"net/http"
	"time"

	"github.com/szabala94/KalamburyPro-master/internal/auth"
	"github.com/szabala94/KalamburyPro-master/internal/ws"
)

// Server bundles the HTTP surface: login REST plus the two websocket
// channels.
type Server struct {
	login   *auth.Handler
	gateway *ws.Gateway
	relay   *ws.Relay
}

func New(login *auth.Handler, gateway *ws.Gateway, relay *ws.Relay) *Server {
	return &Server{
		login:   login,
		gateway: gateway,
		relay:   relay,
	}
}

// HTTPServer builds the listener with the registered routes.
func (s *Server) HTTPServer(port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      s.RegisterRoutes(),
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
		WriteTimeout: 30 * time.Second,
	}
}
