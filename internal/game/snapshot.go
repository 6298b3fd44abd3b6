// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"github.com/sketchparty/sketchparty/internal/config"
)

// PlayerSummary is the public view of one player: everything a lobby or
// scoreboard needs, nothing that would spoil a round in progress.
type PlayerSummary struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Colors    config.ColorPair `json:"colors"`
	Connected bool             `json:"connected"`
	Score     int              `json:"score"`
	Likes     int              `json:"likes"`
	JoinOrder int              `json:"joinOrder"`
}

// VoteOption is one ballot entry. The ID is an opaque per-phase handle; the
// option's authorship is deliberately absent so a snapshot never leaks who
// wrote which fake (or which one is real) before the reveal.
type VoteOption struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// RevealOption is a ballot entry with everything un-hidden: authorship,
// the voters it collected, and its like count.
type RevealOption struct {
	Text    string      `json:"text"`
	Real    bool        `json:"real"`
	Author  *EventUser  `json:"author,omitempty"`
	Voters  []EventUser `json:"voters"`
	Likes   int         `json:"likes"`
}

// RevealDetail is attached to REVEAL/CONTINUE snapshots once a drawing is
// scored.
type RevealDetail struct {
	Prompt  string                `json:"prompt"`
	Artist  EventUser             `json:"artist"`
	Options []RevealOption        `json:"options"`
	Deltas  map[string]ScoreDelta `json:"deltas"` // keyed by player UUID string
}

// Snapshot is the canonical broadcast state: one is emitted on every phase
// transition. Fields beyond the header are phase-dependent.
type Snapshot struct {
	Phase     Phase           `json:"phase"`
	Round     int             `json:"round"`
	NumRounds int             `json:"numRounds"`
	Players   []PlayerSummary `json:"players"`

	// TimeRemaining is the active phase timer in whole seconds, if any.
	TimeRemaining int `json:"timeRemaining,omitempty"`

	// DrawingIndex/DrawingCount locate the current drawing within the round
	// during the guessing cycle.
	DrawingIndex int `json:"drawingIndex,omitempty"`
	DrawingCount int `json:"drawingCount,omitempty"`

	// Artist and Image describe the drawing on the table (guessing onward).
	Artist *EventUser `json:"artist,omitempty"`
	Image  string     `json:"image,omitempty"`

	// VoteOptions is the shuffled ballot (voting phase only).
	VoteOptions []VoteOption `json:"voteOptions,omitempty"`

	// Reveal carries scoring details (reveal and continue phases).
	Reveal *RevealDetail `json:"reveal,omitempty"`

	// Standings carries the leaderboard (round and final results).
	Standings []Standing `json:"standings,omitempty"`
}

// buildSnapshot assembles the broadcast state for the current phase.
// Assumes lock is held.
func (g *Game) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		Phase:     g.Phase,
		Round:     g.Round,
		NumRounds: g.Config.NumRounds,
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			Colors:    p.Colors,
			Connected: p.Connected,
			Score:     p.Score,
			Likes:     p.Likes,
			JoinOrder: p.JoinOrder,
		})
	}
	if g.timer != nil {
		snap.TimeRemaining = g.timer.Remaining()
	}

	switch g.Phase {
	case PhaseGuessing, PhaseVoting, PhaseReveal, PhaseContinue:
		d := g.currentDrawing()
		if d == nil {
			break
		}
		snap.DrawingIndex = g.CurrentDrawingIndex
		snap.DrawingCount = len(g.Drawings)
		snap.Image = d.Image
		if artist := g.playerByID(d.ArtistID); artist != nil {
			snap.Artist = &EventUser{ID: artist.ID, Name: artist.Name}
		} else {
			snap.Artist = &EventUser{ID: d.ArtistID}
		}
		if g.Phase == PhaseVoting {
			snap.VoteOptions = make([]VoteOption, len(g.voteOptions))
			for i, opt := range g.voteOptions {
				snap.VoteOptions[i] = VoteOption{ID: opt.ID, Text: opt.Text}
			}
		}
		if g.Phase == PhaseReveal || g.Phase == PhaseContinue {
			snap.Reveal = g.buildRevealDetail(d)
		}
	case PhaseRoundResults, PhaseFinalResults:
		snap.Standings = ComputeStandings(g.Players)
	}
	return snap
}

// buildRevealDetail un-hides the scored ballot for a drawing.
// Assumes lock is held.
func (g *Game) buildRevealDetail(d *drawingState) *RevealDetail {
	detail := &RevealDetail{
		Prompt: d.Prompt,
		Artist: g.eventUser(d.ArtistID),
		Deltas: make(map[string]ScoreDelta, len(d.lastDeltas)),
	}
	for id, delta := range d.lastDeltas {
		detail.Deltas[id.String()] = delta
	}

	// Real prompt first, then guesses in submission order.
	options := []RevealOption{{Text: d.Prompt, Real: true}}
	for _, guess := range d.Guesses {
		if guess.Text == "" {
			continue
		}
		author := g.eventUser(guess.AuthorID)
		options = append(options, RevealOption{Text: guess.Text, Author: &author})
	}
	for i := range options {
		opt := &options[i]
		for _, v := range d.Votes {
			if v.Choice.Real == opt.Real && (opt.Real || (opt.Author != nil && v.Choice.Author == opt.Author.ID)) {
				opt.Voters = append(opt.Voters, g.eventUser(v.VoterID))
			}
		}
		if opt.Voters == nil {
			opt.Voters = []EventUser{}
		}
		for _, l := range d.LikeLog {
			if l.Choice.Real == opt.Real && (opt.Real || (opt.Author != nil && l.Choice.Author == opt.Author.ID)) {
				opt.Likes++
			}
		}
	}
	detail.Options = options
	return detail
}

// eventUser resolves a player ID to an EventUser, tolerating departed players.
// Assumes lock is held.
func (g *Game) eventUser(id uuid.UUID) EventUser {
	if p := g.playerByID(id); p != nil {
		return EventUser{ID: p.ID, Name: p.Name}
	}
	return EventUser{ID: id}
}
