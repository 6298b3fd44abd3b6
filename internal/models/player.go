// internal/models/player.go
package models

import (
	"github.com/google/uuid"

	"github.com/sketchparty/sketchparty/internal/config"
)

// Player is one participant for the lifetime of a single game. Identity is
// assigned at join and survives disconnects; score and likes persist until
// the game ends or the table resets. The live connection is tracked by the
// transport's session registry, not here.
type Player struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Colors    config.ColorPair `json:"colors"`
	JoinOrder int              `json:"joinOrder"`
	Connected bool             `json:"connected"`
	Score     int              `json:"score"`
	Likes     int              `json:"likes"`
}
