// internal/handlers/session.go
package handlers

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// SessionRegistry maps live WebSocket connections to player identities. The
// game engine never sees a connection: it addresses players by ID, and the
// registry resolves those to whatever socket currently belongs to them. On
// reconnect the newer socket silently displaces the older one.
type SessionRegistry struct {
	mu      sync.Mutex
	players map[uuid.UUID]uuid.UUID // connection ID -> player ID
	conns   map[uuid.UUID]boundConn // player ID -> current connection
}

type boundConn struct {
	connID uuid.UUID
	conn   *websocket.Conn
}

// NewSessionRegistry builds an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		players: make(map[uuid.UUID]uuid.UUID),
		conns:   make(map[uuid.UUID]boundConn),
	}
}

// Bind associates a connection with a player, displacing any previous
// connection bound to the same player.
func (r *SessionRegistry) Bind(connID, playerID uuid.UUID, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[connID] = playerID
	r.conns[playerID] = boundConn{connID: connID, conn: conn}
}

// PlayerFor resolves a connection to its player identity, if bound.
func (r *SessionRegistry) PlayerFor(connID uuid.UUID) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playerID, ok := r.players[connID]
	return playerID, ok
}

// ConnFor resolves a player to their current connection, if any.
func (r *SessionRegistry) ConnFor(playerID uuid.UUID) (*websocket.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bound, ok := r.conns[playerID]
	if !ok {
		return nil, false
	}
	return bound.conn, true
}

// Conns returns the current connection of every bound player.
func (r *SessionRegistry) Conns() []*websocket.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*websocket.Conn, 0, len(r.conns))
	for _, bound := range r.conns {
		out = append(out, bound.conn)
	}
	return out
}

// Unbind drops a connection. It reports the player it belonged to and
// whether that connection was still the player's current one; a stale unbind
// (the player already reconnected elsewhere) must not count as a disconnect.
func (r *SessionRegistry) Unbind(connID uuid.UUID) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playerID, ok := r.players[connID]
	if !ok {
		return uuid.Nil, false
	}
	delete(r.players, connID)
	if bound, ok := r.conns[playerID]; ok && bound.connID == connID {
		delete(r.conns, playerID)
		return playerID, true
	}
	return playerID, false
}
