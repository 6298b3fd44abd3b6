// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sketchparty/sketchparty/internal/game"
)

// writeTimeout bounds every outbound WebSocket write so one stuck client
// cannot back up the broadcast fan-out.
const writeTimeout = 3 * time.Second

// GameServer owns the single game instance, its session registry, and the
// HTTP surface. It wires the engine's broadcast callbacks to the registry's
// live connections.
type GameServer struct {
	Logger   *logrus.Logger
	Game     *game.Game
	Sessions *SessionRegistry

	mux *http.ServeMux
}

// NewGameServer builds the server around an existing game instance and
// installs the broadcast plumbing.
func NewGameServer(logger *logrus.Logger, g *game.Game) *GameServer {
	s := &GameServer{
		Logger:   logger,
		Game:     g,
		Sessions: NewSessionRegistry(),
		mux:      http.NewServeMux(),
	}

	// The engine invokes these while holding its own lock; they only touch
	// the registry (its own mutex) and hand the writes to goroutines, so no
	// lock ordering issue can arise.
	g.BroadcastFn = s.broadcast
	g.BroadcastToPlayerFn = s.broadcastToPlayer

	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	return s
}

func (s *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *GameServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// broadcast fans an event out to every bound connection.
func (s *GameServer) broadcast(ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.WithError(err).Errorf("failed to marshal %s event", ev.Type)
		return
	}
	for _, conn := range s.Sessions.Conns() {
		go s.write(conn, data)
	}
}

// broadcastToPlayer sends an event to one player's current connection, if
// they have one. Disconnected players simply miss private events; the sync
// snapshot on reconnect catches them up.
func (s *GameServer) broadcastToPlayer(playerID uuid.UUID, ev game.GameEvent) {
	conn, ok := s.Sessions.ConnFor(playerID)
	if !ok {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.WithError(err).Errorf("failed to marshal private %s event", ev.Type)
		return
	}
	go s.write(conn, data)
}

func (s *GameServer) write(conn *websocket.Conn, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		// The read loop for this connection will notice and clean up.
		s.Logger.WithError(err).Debug("dropped outbound message")
	}
}
