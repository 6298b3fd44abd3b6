// internal/game/events.go
package game

import "github.com/google/uuid"

// Phase is one named stage of the round cycle.
type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhaseDrawing      Phase = "drawing"
	PhaseGuessing     Phase = "guessing"
	PhaseVoting       Phase = "voting"
	PhaseReveal       Phase = "reveal"
	PhaseContinue     Phase = "continue"
	PhaseRoundResults Phase = "round_results"
	PhaseFinalResults Phase = "final_results"
)

// GameEventType is an enum-like type for broadcasting game events.
type GameEventType string

const (
	// EventStateChanged carries the canonical phase snapshot. Emitted to all
	// connected players on every transition, and privately on reconnect.
	EventStateChanged GameEventType = "state_changed"

	// EventTimerTick carries the remaining seconds of the active phase timer.
	EventTimerTick GameEventType = "timer_tick"

	// EventJoined is a private acknowledgment carrying the player's assigned
	// identity and colors.
	EventJoined GameEventType = "joined"

	// EventPrivatePrompt privately delivers a player's drawing prompt.
	EventPrivatePrompt GameEventType = "private_prompt"

	// EventGuessRejected privately asks the sender to re-prompt after a
	// duplicate-content collision.
	EventGuessRejected GameEventType = "guess_rejected"

	// EventContinueWait tells players who already acknowledged how many
	// others the table is still waiting on.
	EventContinueWait GameEventType = "continue_wait"
)

// GameEvent is the single wire shape for everything the engine emits. The
// transport layer marshals it as-is.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	State   *Snapshot              `json:"state,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// EventUser identifies a player within event payloads.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}
