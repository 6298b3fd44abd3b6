// internal/models/drawing.go
package models

import (
	"strings"

	"github.com/google/uuid"
)

// Choice is what a vote or like points at: either the drawing's real prompt,
// or another player's guess identified by its author. Keeping this typed
// (instead of comparing display strings) means two identical-looking options
// can never be confused, and display text is only resolved at broadcast time.
type Choice struct {
	Real   bool      `json:"real"`
	Author uuid.UUID `json:"author,omitempty"`
}

// RealPromptChoice points at the drawing's actual prompt.
func RealPromptChoice() Choice { return Choice{Real: true} }

// GuessChoice points at the guess authored by the given player.
func GuessChoice(author uuid.UUID) Choice { return Choice{Author: author} }

// IsNoOp reports whether this is the zero choice, used for auto-submitted
// votes from players who ran out the clock. No-op votes score nothing.
func (c Choice) IsNoOp() bool { return !c.Real && c.Author == uuid.Nil }

// Guess is one player's fake prompt for somebody else's drawing.
// Empty text marks an auto-submitted guess; it is kept for completion
// accounting but never offered as a vote option.
type Guess struct {
	AuthorID uuid.UUID `json:"authorId"`
	Text     string    `json:"text"`
}

// Vote is one player's pick among the drawing's vote options.
type Vote struct {
	VoterID uuid.UUID `json:"voterId"`
	Choice  Choice    `json:"choice"`
}

// Like is an award that feeds the like leaderboard only, never the score.
// Unlike votes, the artist may hand these out too.
type Like struct {
	LikerID uuid.UUID `json:"likerId"`
	Choice  Choice    `json:"choice"`
}

// Drawing is one artist's canvas for one round, together with everything the
// table did to it. Created at round start, mutated through guessing/voting,
// frozen once scored.
type Drawing struct {
	ArtistID uuid.UUID `json:"artistId"`
	Prompt   string    `json:"prompt"`

	// Image is the artist's canvas submission. The server treats it as an
	// opaque blob; empty means the clock beat the artist.
	Image string `json:"image"`

	Submitted bool `json:"submitted"`
	Scored    bool `json:"scored"`

	Guesses []Guess `json:"guesses"`
	Votes   []Vote  `json:"votes"`
	LikeLog []Like  `json:"likes"`
}

// GuessBy returns the guess authored by the given player, if any.
func (d *Drawing) GuessBy(playerID uuid.UUID) (Guess, bool) {
	for _, g := range d.Guesses {
		if g.AuthorID == playerID {
			return g, true
		}
	}
	return Guess{}, false
}

// HasVoteFrom reports whether the player already voted on this drawing.
func (d *Drawing) HasVoteFrom(playerID uuid.UUID) bool {
	for _, v := range d.Votes {
		if v.VoterID == playerID {
			return true
		}
	}
	return false
}

// NormalizeText is the comparison form used for duplicate detection:
// case-insensitive and whitespace-trimmed.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TextCollides reports whether a prospective guess collides with the real
// prompt or an already recorded guess.
func (d *Drawing) TextCollides(text string) bool {
	norm := NormalizeText(text)
	if norm == "" {
		return false
	}
	if norm == NormalizeText(d.Prompt) {
		return true
	}
	for _, g := range d.Guesses {
		if NormalizeText(g.Text) == norm {
			return true
		}
	}
	return false
}
