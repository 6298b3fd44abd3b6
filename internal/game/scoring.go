// internal/game/scoring.go
package game

import (
	"sort"

	"github.com/google/uuid"

	"github.com/sketchparty/sketchparty/internal/models"
)

// Point values for a scored drawing.
const (
	// PointsCorrectVote goes to each voter who picked the real prompt.
	PointsCorrectVote = 1000
	// PointsFooledVoter goes to a guess author for each vote their fake drew.
	PointsFooledVoter = 500
	// PointsArtistPerCorrect goes to the artist per voter who picked the real
	// prompt; a drawing clear enough to be identified is worth something.
	PointsArtistPerCorrect = 500
)

// ScoreDelta is one player's outcome for a single drawing.
type ScoreDelta struct {
	Points int `json:"points"`
	Likes  int `json:"likes"`
}

// ScoreDrawing computes per-player deltas for one finalized drawing. Pure:
// it reads the drawing's votes, guesses and likes and mutates nothing, so
// applying its output twice would be the caller's bug, not a scoring one.
func ScoreDrawing(d *models.Drawing) map[uuid.UUID]ScoreDelta {
	deltas := make(map[uuid.UUID]ScoreDelta)
	bump := func(id uuid.UUID, points, likes int) {
		delta := deltas[id]
		delta.Points += points
		delta.Likes += likes
		deltas[id] = delta
	}

	for _, v := range d.Votes {
		if v.Choice.IsNoOp() {
			continue // auto-submitted vote, scores nothing
		}
		if v.Choice.Real {
			bump(v.VoterID, PointsCorrectVote, 0)
			bump(d.ArtistID, PointsArtistPerCorrect, 0)
			continue
		}
		if author := v.Choice.Author; author != d.ArtistID && author != v.VoterID {
			bump(author, PointsFooledVoter, 0)
		}
	}

	for _, l := range d.LikeLog {
		// The real prompt has no author to credit.
		if !l.Choice.Real && l.Choice.Author != uuid.Nil {
			bump(l.Choice.Author, 0, 1)
		}
	}
	return deltas
}

// Standing is one row of a results leaderboard.
type Standing struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	Likes    int       `json:"likes"`
	Rank     int       `json:"rank"`
}

// ComputeStandings ranks players by total score, descending, using standard
// competition ranking: tied scores share the better rank and the following
// rank skips by the width of the tie. Join order breaks display-order ties
// so the board is stable between broadcasts.
func ComputeStandings(players []*models.Player) []Standing {
	sorted := make([]*models.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].JoinOrder < sorted[j].JoinOrder
	})

	standings := make([]Standing, len(sorted))
	for i, p := range sorted {
		rank := i + 1
		if i > 0 && p.Score == sorted[i-1].Score {
			rank = standings[i-1].Rank
		}
		standings[i] = Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Likes:    p.Likes,
			Rank:     rank,
		}
	}
	return standings
}
