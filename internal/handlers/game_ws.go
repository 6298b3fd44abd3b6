// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/sketchparty/sketchparty/internal/game"
	"github.com/sketchparty/sketchparty/internal/middleware"
)

// ClientMessage is the wire shape for every inbound action. Type selects the
// action; the remaining fields are populated per action.
type ClientMessage struct {
	Type string `json:"type"`

	// Name is the display name for join.
	Name string `json:"name,omitempty"`

	// Image is the opaque canvas blob for submit_drawing.
	Image string `json:"image,omitempty"`

	// Text is the guess for submit_guess.
	Text string `json:"text,omitempty"`

	// OptionID is the ballot option for submit_vote and submit_like.
	OptionID string `json:"optionId,omitempty"`
}

// handleWS upgrades the connection and runs its read loop. One connection is
// one session: the first join binds it to a player, disconnect is detected
// when the read loop exits.
func (s *GameServer) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // LAN party: players join from arbitrary device origins
	})
	if err != nil {
		s.Logger.WithError(err).Warn("websocket accept failed")
		return
	}
	defer c.Close(websocket.StatusInternalError, "server error")

	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

	connID := uuid.New()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	readErr := s.readMessages(ctx, c, connID)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, readErr)

	if playerID, wasCurrent := s.Sessions.Unbind(connID); wasCurrent {
		s.Game.HandleDisconnect(playerID)
	}
	c.Close(websocket.StatusNormalClosure, "")
}

// readMessages pumps inbound messages until the connection dies. Every action
// except join requires the connection to be bound to a player first.
func (s *GameServer) readMessages(ctx context.Context, c *websocket.Conn, connID uuid.UUID) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(ctx, c, "invalid JSON")
			continue
		}
		s.dispatch(ctx, c, connID, msg)
	}
}

// dispatch routes one client message into the engine and relays rejections
// back to the sender only.
func (s *GameServer) dispatch(ctx context.Context, c *websocket.Conn, connID uuid.UUID, msg ClientMessage) {
	if msg.Type == "ping" {
		s.send(ctx, c, map[string]string{"type": "pong"})
		return
	}

	if msg.Type == "join" {
		player, err := s.Game.HandleJoin(msg.Name)
		if err != nil {
			s.Logger.WithError(err).Infof("join rejected for %q", strings.TrimSpace(msg.Name))
			s.sendError(ctx, c, err.Error())
			return
		}
		s.Sessions.Bind(connID, player.ID, c)
		s.Game.SendWelcome(player.ID)
		return
	}

	playerID, ok := s.Sessions.PlayerFor(connID)
	if !ok {
		s.sendError(ctx, c, "join before sending actions")
		return
	}

	var err error
	switch msg.Type {
	case "start_game":
		err = s.Game.HandleStartGame(playerID)
	case "submit_drawing":
		err = s.Game.HandleSubmitDrawing(playerID, msg.Image)
	case "submit_guess":
		err = s.Game.HandleSubmitGuess(playerID, msg.Text)
	case "submit_vote":
		err = s.withOption(msg.OptionID, func(optionID uuid.UUID) error {
			return s.Game.HandleSubmitVote(playerID, optionID)
		})
	case "submit_like":
		err = s.withOption(msg.OptionID, func(optionID uuid.UUID) error {
			return s.Game.HandleSubmitLike(playerID, optionID)
		})
	case "continue":
		err = s.Game.HandleContinue(playerID)
	case "add_time":
		err = s.Game.HandleAddTime(playerID)
	case "play_again":
		err = s.Game.HandlePlayAgain(playerID)
	default:
		s.sendError(ctx, c, "unknown action type: "+msg.Type)
		return
	}

	if err != nil {
		s.Logger.WithError(err).Debugf("rejected %s from player %s", msg.Type, playerID)
		// Duplicate guesses already trigger a richer private re-prompt from
		// the engine; duplicate submissions are silently idempotent.
		if !errors.Is(err, game.ErrDuplicateContent) && !errors.Is(err, game.ErrDuplicateSubmission) {
			s.sendError(ctx, c, err.Error())
		}
	}
}

func (s *GameServer) withOption(raw string, fn func(uuid.UUID) error) error {
	optionID, err := uuid.Parse(raw)
	if err != nil {
		return game.ErrInvalidChoice
	}
	return fn(optionID)
}

func (s *GameServer) send(ctx context.Context, c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		s.Logger.WithError(err).Error("failed to marshal outbound message")
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		s.Logger.WithError(err).Debug("failed to write message")
	}
}

func (s *GameServer) sendError(ctx context.Context, c *websocket.Conn, message string) {
	s.send(ctx, c, map[string]interface{}{"type": "error", "message": message})
}
