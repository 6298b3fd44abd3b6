// internal/game/game_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchparty/sketchparty/internal/config"
	"github.com/sketchparty/sketchparty/internal/models"
	"github.com/sketchparty/sketchparty/internal/prompts"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) lastSnapshot() *Snapshot {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == EventStateChanged {
			return mb.allEvents[i].State
		}
	}
	return nil
}

func (mb *mockBroadcaster) lastPlayerEvent(playerID uuid.UUID, evType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == evType {
			return &events[i]
		}
	}
	return nil
}

func testConfig() *config.Config {
	// Long durations so real expiries never race the test; transitions are
	// driven deterministically through expireTimer.
	return &config.Config{
		DrawingTime:       30 * time.Second,
		GuessingTime:      30 * time.Second,
		VotingTime:        30 * time.Second,
		TitleCardDuration: 30 * time.Second,
		MinPlayers:        3,
		MaxPlayers:        80,
		NumRounds:         1,
		PlayerColors:      config.DefaultPlayerColors,
		PromptRecycle:     true,
	}
}

// setupTestGame initializes a game in the lobby with n joined players.
func setupTestGame(t *testing.T, n int, cfg *config.Config, pool []string) (*Game, []*models.Player, *mockBroadcaster) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	if pool == nil {
		pool = []string{"banana", "coconut", "mango", "papaya", "durian", "lychee"}
	}
	g := NewGame(cfg, prompts.NewMemoryRotator(pool))
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	players := make([]*models.Player, n)
	for i := 0; i < n; i++ {
		p, err := g.HandleJoin(names[i])
		require.NoError(t, err)
		players[i] = p
	}
	return g, players, mb
}

// expireTimer fires the active phase timer's expiry deterministically.
func expireTimer(g *Game) {
	g.Mu.Lock()
	seq := g.phaseSeq
	g.Mu.Unlock()
	g.onTimerExpire(seq)
}

// optionID finds the ballot entry with the given text during voting.
func optionID(t *testing.T, g *Game, text string) uuid.UUID {
	t.Helper()
	g.Mu.Lock()
	defer g.Mu.Unlock()
	for _, opt := range g.voteOptions {
		if opt.Text == text {
			return opt.ID
		}
	}
	t.Fatalf("no vote option with text %q", text)
	return uuid.Nil
}

func TestJoinGuards(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPlayers = 3
	g, players, _ := setupTestGame(t, 3, cfg, nil)

	_, err := g.HandleJoin("late-larry")
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = g.HandleJoin("   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	// Below the minimum, the game refuses to start.
	g.HandleDisconnect(players[2].ID)
	err = g.HandleStartGame(players[0].ID)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Equal(t, PhaseLobby, g.Phase)
}

func TestStartAssignsPromptsAndDrawings(t *testing.T) {
	g, players, mb := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))

	require.Equal(t, PhaseDrawing, g.Phase)
	require.Len(t, g.Drawings, 3)

	// Drawings follow join order and prompts are unique.
	seen := map[string]bool{}
	for i, d := range g.Drawings {
		assert.Equal(t, players[i].ID, d.ArtistID)
		assert.NotEmpty(t, d.Prompt)
		assert.False(t, seen[d.Prompt], "prompt %q assigned twice", d.Prompt)
		seen[d.Prompt] = true
	}

	// Each artist privately received their own prompt.
	for i, p := range players {
		ev := mb.lastPlayerEvent(p.ID, EventPrivatePrompt)
		require.NotNil(t, ev, "player %d got no prompt", i)
		assert.Equal(t, g.Drawings[i].Prompt, ev.Payload["prompt"])
	}
}

func TestDrawingPhaseCompletesWhenAllSubmit(t *testing.T) {
	g, players, mb := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))

	require.NoError(t, g.HandleSubmitDrawing(players[0].ID, "blob-0"))
	assert.Equal(t, PhaseDrawing, g.Phase)

	// Second submission from the same player is rejected; the first stands.
	err := g.HandleSubmitDrawing(players[0].ID, "blob-0-again")
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.Equal(t, "blob-0", g.Drawings[0].Image)

	require.NoError(t, g.HandleSubmitDrawing(players[1].ID, "blob-1"))
	require.NoError(t, g.HandleSubmitDrawing(players[2].ID, "blob-2"))

	assert.Equal(t, PhaseGuessing, g.Phase)
	snap := mb.lastSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, PhaseGuessing, snap.Phase)
	assert.Equal(t, "blob-0", snap.Image)

	// A drawing arriving after the phase closed is stale, not queued.
	err = g.HandleSubmitDrawing(players[1].ID, "too-late")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestDrawingTimerExpiryAutoSubmits(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	require.NoError(t, g.HandleSubmitDrawing(players[0].ID, "blob-0"))

	expireTimer(g)

	assert.Equal(t, PhaseGuessing, g.Phase)
	for _, d := range g.Drawings {
		assert.True(t, d.Submitted)
	}
	assert.Equal(t, "blob-0", g.Drawings[0].Image)
	assert.Empty(t, g.Drawings[1].Image)
	assert.Empty(t, g.Drawings[2].Image)
}

func TestStaleExpiryNeverFiresTwice(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))

	g.Mu.Lock()
	seq := g.phaseSeq
	g.Mu.Unlock()

	g.onTimerExpire(seq)
	require.Equal(t, PhaseGuessing, g.Phase)

	// The same expiry delivered again is recognized as stale.
	g.onTimerExpire(seq)
	assert.Equal(t, PhaseGuessing, g.Phase)
	assert.Equal(t, 0, g.CurrentDrawingIndex)
}

func TestDuplicateGuessRejection(t *testing.T) {
	g, players, mb := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	expireTimer(g) // into guessing for players[0]'s drawing

	require.NoError(t, g.HandleSubmitGuess(players[1].ID, "cat"))

	// Case- and whitespace-insensitive duplicates are rejected with a
	// private re-prompt; the offender has not used up their submission.
	err := g.HandleSubmitGuess(players[2].ID, "  Cat ")
	assert.ErrorIs(t, err, ErrDuplicateContent)
	require.NotNil(t, mb.lastPlayerEvent(players[2].ID, EventGuessRejected))

	// Guessing the real prompt is also a collision.
	err = g.HandleSubmitGuess(players[2].ID, g.Drawings[0].Prompt)
	assert.ErrorIs(t, err, ErrDuplicateContent)

	// The artist does not guess their own drawing.
	err = g.HandleSubmitGuess(players[0].ID, "self-guess")
	assert.ErrorIs(t, err, ErrInvalidPhase)

	require.NoError(t, g.HandleSubmitGuess(players[2].ID, "dog"))
	assert.Equal(t, PhaseVoting, g.Phase)
}

func TestVotingRestrictionsAndBallot(t *testing.T) {
	g, players, mb := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	expireTimer(g)

	require.NoError(t, g.HandleSubmitGuess(players[1].ID, "cat"))
	require.NoError(t, g.HandleSubmitGuess(players[2].ID, "dog"))
	require.Equal(t, PhaseVoting, g.Phase)

	// The ballot is the real prompt plus both guesses, authorship hidden.
	snap := mb.lastSnapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.VoteOptions, 3)
	texts := map[string]bool{}
	for _, opt := range snap.VoteOptions {
		texts[opt.Text] = true
	}
	assert.True(t, texts[g.Drawings[0].Prompt])
	assert.True(t, texts["cat"])
	assert.True(t, texts["dog"])

	// The artist may not vote.
	err := g.HandleSubmitVote(players[0].ID, optionID(t, g, "cat"))
	assert.ErrorIs(t, err, ErrInvalidPhase)

	// A player may not vote for their own guess.
	err = g.HandleSubmitVote(players[1].ID, optionID(t, g, "cat"))
	assert.ErrorIs(t, err, ErrInvalidChoice)

	// An unknown ballot ID is rejected.
	err = g.HandleSubmitVote(players[1].ID, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidChoice)

	require.NoError(t, g.HandleSubmitVote(players[1].ID, optionID(t, g, "dog")))
	err = g.HandleSubmitVote(players[1].ID, optionID(t, g, "dog"))
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	require.NoError(t, g.HandleSubmitVote(players[2].ID, optionID(t, g, "cat")))
	assert.Equal(t, PhaseReveal, g.Phase)
}

func TestFullDrawingCycleScoring(t *testing.T) {
	g, players, mb := setupTestGame(t, 3, nil, nil)
	alice, bob, carol := players[0], players[1], players[2]
	require.NoError(t, g.HandleStartGame(alice.ID))
	expireTimer(g) // blank drawings are fine for scoring

	realPrompt := g.Drawings[0].Prompt

	// bob fakes "apple", carol fakes "pear".
	require.NoError(t, g.HandleSubmitGuess(bob.ID, "apple"))
	require.NoError(t, g.HandleSubmitGuess(carol.ID, "pear"))
	require.Equal(t, PhaseVoting, g.Phase)

	// bob finds the real prompt; carol falls for bob's fake.
	require.NoError(t, g.HandleSubmitVote(bob.ID, optionID(t, g, realPrompt)))
	require.NoError(t, g.HandleSubmitVote(carol.ID, optionID(t, g, "apple")))
	require.Equal(t, PhaseReveal, g.Phase)

	// alice: 500 for one correct guesser; bob: 1000 correct + 500 fooled
	// carol; carol: nothing.
	assert.Equal(t, 500, alice.Score)
	assert.Equal(t, 1500, bob.Score)
	assert.Equal(t, 0, carol.Score)

	snap := mb.lastSnapshot()
	require.NotNil(t, snap)
	require.NotNil(t, snap.Reveal)
	assert.Equal(t, realPrompt, snap.Reveal.Prompt)
	assert.Equal(t, ScoreDelta{Points: 500}, snap.Reveal.Deltas[alice.ID.String()])
	assert.Equal(t, ScoreDelta{Points: 1500}, snap.Reveal.Deltas[bob.ID.String()])

	// Scores are applied exactly once even if the reveal re-runs.
	g.Mu.Lock()
	g.reveal()
	g.Mu.Unlock()
	assert.Equal(t, 500, alice.Score)
	assert.Equal(t, 1500, bob.Score)
}

func TestLikesFeedLeaderboardOnly(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	alice, bob, carol := players[0], players[1], players[2]
	require.NoError(t, g.HandleStartGame(alice.ID))
	expireTimer(g)

	require.NoError(t, g.HandleSubmitGuess(bob.ID, "apple"))
	require.NoError(t, g.HandleSubmitGuess(carol.ID, "pear"))

	// Likes are open during voting, to anyone, including the artist.
	require.NoError(t, g.HandleSubmitLike(alice.ID, optionID(t, g, "apple")))
	err := g.HandleSubmitLike(alice.ID, optionID(t, g, "apple"))
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	appleID := optionID(t, g, "apple")
	realID := optionID(t, g, g.Drawings[0].Prompt)
	require.NoError(t, g.HandleSubmitVote(bob.ID, optionID(t, g, "pear")))
	require.NoError(t, g.HandleSubmitVote(carol.ID, appleID))
	require.Equal(t, PhaseReveal, g.Phase)

	// A like landing during the reveal window still counts.
	require.NoError(t, g.HandleSubmitLike(carol.ID, appleID))
	// Liking the real prompt credits nobody.
	require.NoError(t, g.HandleSubmitLike(bob.ID, realID))

	assert.Equal(t, 2, bob.Likes)
	assert.Equal(t, 0, alice.Likes)
	assert.Equal(t, 0, carol.Likes)

	// Likes never became points: the only scoring here is the two players
	// fooling each other.
	assert.Equal(t, 0, alice.Score)
	assert.Equal(t, 500, bob.Score)
	assert.Equal(t, 500, carol.Score)
}

func TestVotingTimerExpiryAutoSubmitsNoOpVotes(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	expireTimer(g)
	require.NoError(t, g.HandleSubmitGuess(players[1].ID, "cat"))
	require.NoError(t, g.HandleSubmitGuess(players[2].ID, "dog"))
	require.Equal(t, PhaseVoting, g.Phase)

	expireTimer(g)

	require.Equal(t, PhaseReveal, g.Phase)
	d := g.Drawings[0]
	require.Len(t, d.Votes, 2)
	for _, v := range d.Votes {
		assert.True(t, v.Choice.IsNoOp())
	}
	// No-op votes score nothing for anyone.
	for _, p := range players {
		assert.Equal(t, 0, p.Score)
	}
}

func TestUnanimousContinueAndDisconnectTolerance(t *testing.T) {
	g, players, _ := setupTestGame(t, 4, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	expireTimer(g) // drawing -> guessing
	expireTimer(g) // guessing -> voting (empty guesses auto-submitted)
	expireTimer(g) // voting -> reveal (no-op votes auto-submitted)
	require.Equal(t, PhaseReveal, g.Phase)

	expireTimer(g) // title card -> continue
	require.Equal(t, PhaseContinue, g.Phase)

	require.NoError(t, g.HandleContinue(players[0].ID))
	require.NoError(t, g.HandleContinue(players[1].ID))
	assert.Equal(t, PhaseContinue, g.Phase)

	err := g.HandleContinue(players[0].ID)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	// The two stragglers leave; the gate re-checks against the live
	// connected set and opens.
	g.HandleDisconnect(players[2].ID)
	assert.Equal(t, PhaseContinue, g.Phase)
	g.HandleDisconnect(players[3].ID)
	assert.NotEqual(t, PhaseContinue, g.Phase)

	// Their scores and identities survive the disconnect.
	assert.NotNil(t, g.playerByID(players[2].ID))
	assert.False(t, g.playerByID(players[2].ID).Connected)
}

func TestDisconnectDuringGuessingUnblocksPhase(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	expireTimer(g)
	require.Equal(t, PhaseGuessing, g.Phase)

	require.NoError(t, g.HandleSubmitGuess(players[1].ID, "cat"))
	g.HandleDisconnect(players[2].ID)

	// players[2] no longer counts as required; guessing is complete.
	assert.Equal(t, PhaseVoting, g.Phase)

	// Their recorded state is intact.
	p := g.playerByID(players[2].ID)
	require.NotNil(t, p)
	assert.False(t, p.Connected)
}

func TestReconnectKeepsIdentityAndScore(t *testing.T) {
	g, players, mb := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	expireTimer(g)

	g.HandleDisconnect(players[1].ID)
	players[1].Score = 700 // simulate earlier winnings

	rejoined, err := g.HandleJoin("BOB") // name match is case-insensitive
	require.NoError(t, err)
	assert.Equal(t, players[1].ID, rejoined.ID)
	assert.True(t, rejoined.Connected)
	assert.Equal(t, 700, rejoined.Score)

	// A welcome after binding carries identity and a sync snapshot.
	g.SendWelcome(rejoined.ID)
	require.NotNil(t, mb.lastPlayerEvent(rejoined.ID, EventJoined))
	require.NotNil(t, mb.lastPlayerEvent(rejoined.ID, EventStateChanged))

	// A fresh name cannot join mid-game.
	_, err = g.HandleJoin("mallory")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestRoundAndFinalResults(t *testing.T) {
	g, players, mb := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))

	// Burn through all three drawings with auto-submissions.
	expireTimer(g) // drawing -> guessing (drawing 0)
	for i := 0; i < 3; i++ {
		require.Equal(t, PhaseGuessing, g.Phase, "drawing %d", i)
		expireTimer(g) // guessing -> voting
		expireTimer(g) // voting -> reveal
		require.Equal(t, PhaseReveal, g.Phase)
		expireTimer(g) // title card -> continue
		require.Equal(t, PhaseContinue, g.Phase)
		for _, p := range players {
			require.NoError(t, g.HandleContinue(p.ID))
		}
	}

	require.Equal(t, PhaseRoundResults, g.Phase)
	snap := mb.lastSnapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Standings, 3)

	expireTimer(g) // single round: standings -> final
	require.Equal(t, PhaseFinalResults, g.Phase)
	assert.True(t, g.GameOver)

	// Terminal: nothing but play_again is accepted.
	assert.ErrorIs(t, g.HandleContinue(players[0].ID), ErrInvalidPhase)
	assert.ErrorIs(t, g.HandleStartGame(players[0].ID), ErrInvalidPhase)
}

func TestPlayAgainResetsTable(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))
	expireTimer(g)
	for i := 0; i < 3; i++ {
		expireTimer(g)
		expireTimer(g)
		expireTimer(g)
		for _, p := range players {
			_ = g.HandleContinue(p.ID)
		}
	}
	expireTimer(g)
	require.Equal(t, PhaseFinalResults, g.Phase)

	players[0].Score = 2500
	g.HandleDisconnect(players[2].ID)
	require.NoError(t, g.HandlePlayAgain(players[0].ID))

	assert.Equal(t, PhaseLobby, g.Phase)
	assert.False(t, g.GameOver)
	assert.Len(t, g.Players, 2, "departed players are dropped on reset")
	assert.Equal(t, 0, players[0].Score)
	assert.Empty(t, g.Drawings)
	assert.Equal(t, 0, g.Round)
}

func TestAddTimeExtendsActivePhase(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))

	before := g.timer.Remaining()
	require.NoError(t, g.HandleAddTime(players[0].ID))
	assert.GreaterOrEqual(t, g.timer.Remaining(), before+29)

	// Not valid without an active submission timer.
	g.Mu.Lock()
	g.stopTimer()
	g.Mu.Unlock()
	assert.ErrorIs(t, g.HandleAddTime(players[0].ID), ErrInvalidPhase)
}

func TestStartRejectedWhenPromptsExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.PromptRecycle = false
	g, players, _ := setupTestGame(t, 3, cfg, []string{"only", "two"})

	err := g.HandleStartGame(players[0].ID)
	assert.ErrorIs(t, err, ErrPromptsExhausted)
	assert.Equal(t, PhaseLobby, g.Phase)
	assert.Equal(t, 0, g.Round)
}

func TestPromptRecyclePolicyKeepsGameGoing(t *testing.T) {
	cfg := testConfig()
	cfg.NumRounds = 2
	g, players, _ := setupTestGame(t, 3, cfg, []string{"a", "b", "c"})
	require.NoError(t, g.HandleStartGame(players[0].ID))

	// Pool is empty now; round two must recycle the used prompts.
	expireTimer(g)
	for i := 0; i < 3; i++ {
		expireTimer(g)
		expireTimer(g)
		expireTimer(g)
		for _, p := range players {
			_ = g.HandleContinue(p.ID)
		}
	}
	require.Equal(t, PhaseRoundResults, g.Phase)
	expireTimer(g)

	require.Equal(t, PhaseDrawing, g.Phase)
	assert.Equal(t, 2, g.Round)
	require.Len(t, g.Drawings, 3)
}

func TestUnknownPlayerActionsIgnored(t *testing.T) {
	g, players, _ := setupTestGame(t, 3, nil, nil)
	require.NoError(t, g.HandleStartGame(players[0].ID))

	stranger := uuid.New()
	assert.ErrorIs(t, g.HandleSubmitDrawing(stranger, "x"), ErrUnknownPlayer)
	assert.ErrorIs(t, g.HandleSubmitGuess(stranger, "x"), ErrUnknownPlayer)
	assert.ErrorIs(t, g.HandleContinue(stranger), ErrUnknownPlayer)
	assert.ErrorIs(t, g.HandleAddTime(stranger), ErrUnknownPlayer)

	// Nobody else was affected.
	assert.Equal(t, PhaseDrawing, g.Phase)
	assert.False(t, g.Drawings[0].Submitted)
}
