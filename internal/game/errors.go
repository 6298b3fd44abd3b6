// internal/game/errors.go
package game

import "errors"

// Per-action rejection reasons. None are fatal: each leaves the game state
// untouched and the round progressing. The transport relays them to the
// offending sender only.
var (
	// ErrInvalidPhase marks an action submitted outside the phase it belongs
	// to, including submissions that lost a race with the phase timer.
	ErrInvalidPhase = errors.New("action not valid in the current phase")

	// ErrDuplicateSubmission marks a second submission from a player who
	// already acted this phase; the first submission stands.
	ErrDuplicateSubmission = errors.New("already submitted for this phase")

	// ErrDuplicateContent marks a guess that collides (case-insensitive,
	// trimmed) with the real prompt or an existing guess.
	ErrDuplicateContent = errors.New("that answer has already been taken")

	// ErrCapacityExceeded marks a join attempted at MAX_PLAYERS.
	ErrCapacityExceeded = errors.New("game is full")

	// ErrInsufficientPlayers marks a start attempted below MIN_PLAYERS.
	ErrInsufficientPlayers = errors.New("not enough players to start")

	// ErrUnknownPlayer marks an action from an unrecognized or stale identity.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrInvalidName marks a join with a blank display name.
	ErrInvalidName = errors.New("display name must not be empty")

	// ErrInvalidChoice marks a vote or like that does not resolve to one of
	// the current drawing's options, or targets the sender's own guess.
	ErrInvalidChoice = errors.New("not a valid option")

	// ErrPromptsExhausted is surfaced when the prompt pool runs dry and the
	// recycle policy is disabled.
	ErrPromptsExhausted = errors.New("prompt pool exhausted")
)
