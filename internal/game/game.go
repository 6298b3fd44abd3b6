// internal/game/game.go
package game

import (
	"errors"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sketchparty/sketchparty/internal/config"
	"github.com/sketchparty/sketchparty/internal/models"
	"github.com/sketchparty/sketchparty/internal/prompts"
)

// addTimeIncrement is how much one add-time request stretches the active
// phase timer.
const addTimeIncrement = 30 * time.Second

// roundResultsDuration is how long the between-rounds standings stay up.
const roundResultsDuration = 8 * time.Second

// drawingState is a models.Drawing plus the engine's bookkeeping for it.
type drawingState struct {
	models.Drawing

	// lastDeltas holds the ScoringEngine output applied at reveal, kept so
	// reveal/continue snapshots can show per-player breakdowns.
	lastDeltas map[uuid.UUID]ScoreDelta
}

// voteOption binds an opaque ballot ID to a typed choice. The ID is what
// clients vote with; the choice is what scoring understands.
type voteOption struct {
	ID     uuid.UUID
	Choice models.Choice
	Text   string
}

// Game holds the entire authoritative state for a single table. Every
// mutation flows through its handlers under Mu; timers re-enter through the
// same lock, so at most one event is ever applied at a time.
type Game struct {
	ID     uuid.UUID
	Config *config.Config

	Phase    Phase
	Round    int
	GameOver bool

	Players  []*models.Player
	Drawings []*drawingState

	// CurrentDrawingIndex locates the drawing on the table during the
	// guessing cycle.
	CurrentDrawingIndex int

	// continueAcks tracks who has clicked continue for the current reveal.
	// Completion is recomputed against the live connected set at check time,
	// so a leaver never stalls the table.
	continueAcks map[uuid.UUID]bool

	// voteOptions is the current drawing's shuffled ballot.
	voteOptions []voteOption
	optionsByID map[uuid.UUID]models.Choice

	// phaseSeq stamps each timed phase; timer callbacks carry the stamp and
	// are dropped when stale, so an expiry can never re-trigger a transition
	// that already happened.
	phaseSeq int
	timer    *Timer

	rotator       *prompts.Rotator
	rng           *rand.Rand
	joinedSoFar   int
	Mu            sync.Mutex

	// BroadcastFn sends an event to every connected player. Invoked with the
	// game lock held; implementations must not call back into the game.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single player, same contract.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
}

// NewGame builds an empty table in the lobby phase.
func NewGame(cfg *config.Config, rotator *prompts.Rotator) *Game {
	id, _ := uuid.NewRandom()
	return &Game{
		ID:      id,
		Config:  cfg,
		Phase:   PhaseLobby,
		rotator: rotator,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// --- Inbound actions. Each acquires the lock, validates, mutates, and
// --- decides whether to transition. Internal helpers assume the lock is held.

// HandleJoin admits a new player during the lobby, or re-associates a
// reconnecting player by case-insensitive name match mid-game.
func (g *Game) HandleJoin(name string) (*models.Player, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	// Reconnection: a returning player keeps their identity, score and
	// submissions; only the connection is new.
	norm := models.NormalizeText(name)
	for _, p := range g.Players {
		if models.NormalizeText(p.Name) == norm {
			p.Connected = true
			log.Printf("game %s: player %s (%s) reconnected", g.ID, p.Name, p.ID)
			g.emitState()
			return p, nil
		}
	}

	if g.Phase != PhaseLobby {
		return nil, ErrInvalidPhase
	}
	if len(g.Players) >= g.Config.MaxPlayers {
		return nil, ErrCapacityExceeded
	}

	p := &models.Player{
		ID:        uuid.New(),
		Name:      name,
		Colors:    g.Config.ColorForJoinOrder(g.joinedSoFar),
		JoinOrder: g.joinedSoFar,
		Connected: true,
	}
	g.joinedSoFar++
	g.Players = append(g.Players, p)
	log.Printf("game %s: player %s (%s) joined (%d at the table)", g.ID, p.Name, p.ID, len(g.Players))
	g.emitState()
	return p, nil
}

// SendWelcome privately delivers a freshly bound player their identity,
// colors, and a sync snapshot. The transport calls this after it has bound
// the player's connection, so the events have somewhere to land.
func (g *Game) SendWelcome(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil {
		return
	}
	g.fireEventToPlayer(p.ID, GameEvent{
		Type:    EventJoined,
		Payload: map[string]interface{}{"playerId": p.ID.String(), "colors": p.Colors},
	})
	g.sendSyncState(p.ID)
}

// HandleDisconnect marks a player as gone. In the lobby they are removed
// outright; mid-game their identity and everything they submitted stays, and
// any phase that was only waiting on them moves on.
func (g *Game) HandleDisconnect(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	log.Printf("game %s: player %s (%s) disconnected during %s", g.ID, p.Name, p.ID, g.Phase)

	if g.Phase == PhaseLobby {
		for i, pl := range g.Players {
			if pl.ID == playerID {
				g.Players = append(g.Players[:i], g.Players[i+1:]...)
				break
			}
		}
		g.emitState()
		return
	}

	// The departed player no longer counts toward completion; re-check the
	// phase they may have been blocking.
	switch g.Phase {
	case PhaseDrawing:
		if g.allDrawingsSubmitted() {
			g.finishDrawingPhase()
			return
		}
	case PhaseGuessing:
		if g.guessesComplete() {
			g.finishGuessing()
			return
		}
	case PhaseVoting:
		if g.votesComplete() {
			g.finishVoting()
			return
		}
	case PhaseContinue:
		if g.tryAdvanceContinue() {
			return
		}
	}
	g.emitState()
}

// HandleStartGame begins round one. Any player at the table may start.
func (g *Game) HandleStartGame(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	n := g.countConnectedPlayers()
	if n < g.Config.MinPlayers {
		return ErrInsufficientPlayers
	}
	if n > g.Config.MaxPlayers {
		return ErrCapacityExceeded
	}
	return g.startRound()
}

// HandleSubmitDrawing records the sender's canvas for the current round.
func (g *Game) HandleSubmitDrawing(playerID uuid.UUID, image string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != PhaseDrawing {
		return ErrInvalidPhase
	}
	d := g.drawingByArtist(playerID)
	if d == nil {
		return ErrUnknownPlayer
	}
	if d.Submitted {
		return ErrDuplicateSubmission
	}
	d.Image = image
	d.Submitted = true
	log.Printf("game %s: drawing received from %s", g.ID, playerID)

	if g.allDrawingsSubmitted() {
		g.finishDrawingPhase()
	}
	return nil
}

// HandleSubmitGuess records a fake prompt for the drawing on the table.
func (g *Game) HandleSubmitGuess(playerID uuid.UUID, text string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != PhaseGuessing {
		return ErrInvalidPhase
	}
	d := g.currentDrawing()
	if d == nil {
		return ErrInvalidPhase
	}
	if d.ArtistID == playerID {
		return ErrInvalidPhase // the artist does not guess their own drawing
	}
	if _, ok := d.GuessBy(playerID); ok {
		return ErrDuplicateSubmission
	}

	text = strings.TrimSpace(text)
	if d.TextCollides(text) {
		g.fireEventToPlayer(playerID, GameEvent{
			Type:    EventGuessRejected,
			Payload: map[string]interface{}{"message": "That answer has already been taken. Try something different."},
		})
		return ErrDuplicateContent
	}

	d.Guesses = append(d.Guesses, models.Guess{AuthorID: playerID, Text: text})
	if g.guessesComplete() {
		g.finishGuessing()
	}
	return nil
}

// HandleSubmitVote records the sender's ballot pick for the drawing on the
// table. Ballots are identified by the opaque option IDs from the voting
// snapshot; votes for the sender's own guess are rejected.
func (g *Game) HandleSubmitVote(playerID, optionID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != PhaseVoting {
		return ErrInvalidPhase
	}
	d := g.currentDrawing()
	if d == nil {
		return ErrInvalidPhase
	}
	if d.ArtistID == playerID {
		return ErrInvalidPhase // artists sit the vote out
	}
	choice, ok := g.optionsByID[optionID]
	if !ok {
		return ErrInvalidChoice
	}
	if !choice.Real && choice.Author == playerID {
		return ErrInvalidChoice // may not vote for your own guess
	}
	if d.HasVoteFrom(playerID) {
		return ErrDuplicateSubmission
	}

	d.Votes = append(d.Votes, models.Vote{VoterID: playerID, Choice: choice})
	if g.votesComplete() {
		g.finishVoting()
	}
	return nil
}

// HandleSubmitLike records a like on a ballot option. Anyone, including the
// artist, may like anything, one like per option per player. Likes feed the
// like leaderboard only and are accepted through the voting/reveal window.
func (g *Game) HandleSubmitLike(playerID, optionID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != PhaseVoting && g.Phase != PhaseReveal && g.Phase != PhaseContinue {
		return ErrInvalidPhase
	}
	d := g.currentDrawing()
	if d == nil {
		return ErrInvalidPhase
	}
	choice, ok := g.optionsByID[optionID]
	if !ok {
		return ErrInvalidChoice
	}
	for _, l := range d.LikeLog {
		if l.LikerID == playerID && l.Choice == choice {
			return ErrDuplicateSubmission
		}
	}
	d.LikeLog = append(d.LikeLog, models.Like{LikerID: playerID, Choice: choice})

	// Likes arriving before the reveal are applied by the scoring pass; a
	// like landing afterwards is credited directly so it still counts.
	if d.Scored && !choice.Real && choice.Author != uuid.Nil {
		if author := g.playerByID(choice.Author); author != nil {
			author.Likes++
		}
	}
	return nil
}

// HandleContinue records the sender's acknowledgment of the reveal. The cycle
// advances once every currently-connected player has acknowledged.
func (g *Game) HandleContinue(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != PhaseContinue {
		return ErrInvalidPhase
	}
	if g.continueAcks[playerID] {
		return ErrDuplicateSubmission
	}
	g.continueAcks[playerID] = true

	if !g.tryAdvanceContinue() {
		waiting := 0
		for _, p := range g.Players {
			if p.Connected && !g.continueAcks[p.ID] {
				waiting++
			}
		}
		g.fireEvent(GameEvent{
			Type:    EventContinueWait,
			Payload: map[string]interface{}{"waiting": waiting},
		})
	}
	return nil
}

// HandleAddTime stretches the active submission timer by 30 seconds.
func (g *Game) HandleAddTime(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	switch g.Phase {
	case PhaseDrawing, PhaseGuessing, PhaseVoting:
	default:
		return ErrInvalidPhase
	}
	if g.timer == nil || !g.timer.Active() {
		return ErrInvalidPhase
	}
	g.timer.AddTime(addTimeIncrement)
	log.Printf("game %s: %s added %s to the %s timer", g.ID, playerID, addTimeIncrement, g.Phase)
	g.fireEvent(GameEvent{
		Type:    EventTimerTick,
		Payload: map[string]interface{}{"remaining": g.timer.Remaining()},
	})
	return nil
}

// HandlePlayAgain resets the finished table back to the lobby with the same
// roster and zeroed scores. Departed players are dropped.
func (g *Game) HandlePlayAgain(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByID(playerID) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != PhaseFinalResults {
		return ErrInvalidPhase
	}

	kept := g.Players[:0]
	for _, p := range g.Players {
		if p.Connected {
			p.Score = 0
			p.Likes = 0
			kept = append(kept, p)
		}
	}
	g.Players = kept
	g.Drawings = nil
	g.Round = 0
	g.CurrentDrawingIndex = 0
	g.continueAcks = nil
	g.voteOptions = nil
	g.optionsByID = nil
	g.GameOver = false
	g.stopTimer()
	g.Phase = PhaseLobby
	log.Printf("game %s: reset for another game with %d players", g.ID, len(g.Players))
	g.emitState()
	return nil
}

// --- Phase transitions. Assume the lock is held.

// startRound assigns one prompt and one drawing slot per connected player and
// opens the drawing phase.
func (g *Game) startRound() error {
	artists := g.connectedPlayersByJoinOrder()
	assigned, err := g.drawPrompts(len(artists))
	if err != nil {
		return err
	}

	g.Round++
	g.Drawings = g.Drawings[:0]
	g.CurrentDrawingIndex = 0
	g.continueAcks = nil
	g.voteOptions = nil
	g.optionsByID = nil

	for i, artist := range artists {
		g.Drawings = append(g.Drawings, &drawingState{
			Drawing: models.Drawing{ArtistID: artist.ID, Prompt: assigned[i]},
		})
	}
	g.Phase = PhaseDrawing
	log.Printf("game %s: round %d/%d started with %d artists", g.ID, g.Round, g.Config.NumRounds, len(artists))

	for i, artist := range artists {
		g.fireEventToPlayer(artist.ID, GameEvent{
			Type:    EventPrivatePrompt,
			Payload: map[string]interface{}{"prompt": assigned[i], "round": g.Round},
		})
	}
	g.startPhaseTimer(g.Config.DrawingTime)
	g.emitState()
	return nil
}

// drawPrompts pulls n prompts from the rotator, applying the configured
// exhaustion policy: recycle the used pool, or give up.
func (g *Game) drawPrompts(n int) ([]string, error) {
	out := make([]string, 0, n)
	for len(out) < n {
		p, err := g.rotator.Next()
		if err != nil {
			if errors.Is(err, prompts.ErrExhausted) {
				if g.Config.PromptRecycle && g.rotator.Recycle() > 0 {
					log.Printf("game %s: prompt pool exhausted, recycled used prompts", g.ID)
					continue
				}
				return nil, ErrPromptsExhausted
			}
			// Persistence hiccup: the prompt itself is still good.
			log.Printf("game %s: warning: %v", g.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// finishDrawingPhase closes the canvas, auto-submitting a blank drawing for
// anyone the clock beat, and opens the first guessing cycle.
func (g *Game) finishDrawingPhase() {
	g.stopTimer()
	for _, d := range g.Drawings {
		if !d.Submitted {
			d.Submitted = true
			log.Printf("game %s: auto-submitted blank drawing for %s", g.ID, d.ArtistID)
		}
	}
	g.CurrentDrawingIndex = 0
	g.startGuessing()
}

// startGuessing opens the guessing phase for the drawing on the table.
func (g *Game) startGuessing() {
	d := g.currentDrawing()
	if d == nil {
		g.showRoundResults()
		return
	}
	g.Phase = PhaseGuessing
	g.startPhaseTimer(g.Config.GuessingTime)
	g.emitState()

	// With nobody eligible to guess (everyone but the artist gone), the
	// phase is complete the moment it opens.
	if g.guessesComplete() {
		g.finishGuessing()
	}
}

// finishGuessing auto-submits empty guesses for connected stragglers and
// opens voting. Empty guesses never appear on the ballot.
func (g *Game) finishGuessing() {
	g.stopTimer()
	d := g.currentDrawing()
	for _, p := range g.Players {
		if !p.Connected || p.ID == d.ArtistID {
			continue
		}
		if _, ok := d.GuessBy(p.ID); !ok {
			d.Guesses = append(d.Guesses, models.Guess{AuthorID: p.ID})
		}
	}
	g.startVoting()
}

// startVoting builds the shuffled ballot (real prompt plus every non-empty
// guess) under fresh opaque IDs and opens the voting phase.
func (g *Game) startVoting() {
	d := g.currentDrawing()

	g.voteOptions = []voteOption{{ID: uuid.New(), Choice: models.RealPromptChoice(), Text: d.Prompt}}
	for _, guess := range d.Guesses {
		if guess.Text == "" {
			continue
		}
		g.voteOptions = append(g.voteOptions, voteOption{
			ID:     uuid.New(),
			Choice: models.GuessChoice(guess.AuthorID),
			Text:   guess.Text,
		})
	}
	g.rng.Shuffle(len(g.voteOptions), func(i, j int) {
		g.voteOptions[i], g.voteOptions[j] = g.voteOptions[j], g.voteOptions[i]
	})
	g.optionsByID = make(map[uuid.UUID]models.Choice, len(g.voteOptions))
	for _, opt := range g.voteOptions {
		g.optionsByID[opt.ID] = opt.Choice
	}

	g.Phase = PhaseVoting
	g.startPhaseTimer(g.Config.VotingTime)
	g.emitState()

	if g.votesComplete() {
		g.finishVoting()
	}
}

// finishVoting records no-op votes for connected stragglers and reveals.
func (g *Game) finishVoting() {
	g.stopTimer()
	d := g.currentDrawing()
	for _, p := range g.Players {
		if !p.Connected || p.ID == d.ArtistID {
			continue
		}
		if !d.HasVoteFrom(p.ID) {
			d.Votes = append(d.Votes, models.Vote{VoterID: p.ID})
		}
	}
	g.reveal()
}

// reveal scores the drawing exactly once, applies the deltas, and shows the
// result after the title-card pause.
func (g *Game) reveal() {
	d := g.currentDrawing()
	if !d.Scored {
		deltas := ScoreDrawing(&d.Drawing)
		for id, delta := range deltas {
			if p := g.playerByID(id); p != nil {
				p.Score += delta.Points
				p.Likes += delta.Likes
			}
		}
		d.lastDeltas = deltas
		d.Scored = true
		log.Printf("game %s: drawing %d/%d scored (%d votes, %d guesses)",
			g.ID, g.CurrentDrawingIndex+1, len(g.Drawings), len(d.Votes), len(d.Guesses))
	}
	g.Phase = PhaseReveal
	g.startPhaseTimer(g.Config.TitleCardDuration)
	g.emitState()
}

// beginContinue opens the unanimous-continue gate after the reveal.
func (g *Game) beginContinue() {
	g.Phase = PhaseContinue
	g.continueAcks = make(map[uuid.UUID]bool)
	g.emitState()
}

// tryAdvanceContinue advances past the reveal once every currently-connected
// player has acknowledged. Returns true if the cycle moved on.
func (g *Game) tryAdvanceContinue() bool {
	if g.countConnectedPlayers() == 0 {
		return false // keep the table up for reconnects rather than racing to the end
	}
	for _, p := range g.Players {
		if p.Connected && !g.continueAcks[p.ID] {
			return false
		}
	}
	g.CurrentDrawingIndex++
	if g.CurrentDrawingIndex < len(g.Drawings) {
		g.startGuessing()
	} else {
		g.showRoundResults()
	}
	return true
}

// showRoundResults puts the standings up between rounds, then advances on a
// fixed delay (clickContinue belongs to the reveal gate, not here).
func (g *Game) showRoundResults() {
	g.Phase = PhaseRoundResults
	g.startPhaseTimer(roundResultsDuration)
	g.emitState()
}

// advanceRound moves from the standings into the next round, or ends the game.
func (g *Game) advanceRound() {
	if g.Round < g.Config.NumRounds {
		if err := g.startRound(); err != nil {
			log.Printf("game %s: cannot start round %d: %v; ending game", g.ID, g.Round+1, err)
			g.finishGame()
		}
		return
	}
	g.finishGame()
}

// finishGame computes the final ranking and parks the table in its terminal
// phase.
func (g *Game) finishGame() {
	g.stopTimer()
	g.Phase = PhaseFinalResults
	g.GameOver = true
	log.Printf("game %s: finished after %d round(s)", g.ID, g.Round)
	g.emitState()
}

// --- Timer plumbing. startPhaseTimer/stopTimer assume the lock is held;
// --- the callbacks re-enter through it.

// startPhaseTimer replaces the active timer with a fresh one stamped with the
// next phase sequence number.
func (g *Game) startPhaseTimer(d time.Duration) {
	g.stopTimer()
	g.phaseSeq++
	seq := g.phaseSeq
	g.timer = StartTimer(d,
		func(remaining int) { g.onTimerTick(seq, remaining) },
		func() { g.onTimerExpire(seq) },
	)
}

// stopTimer cancels the active timer, if any, and bumps the sequence so any
// in-flight callback from it is recognized as stale.
func (g *Game) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.phaseSeq++
}

// onTimerTick relays a tick to the table unless the timer is stale.
// Runs on the timer goroutine.
func (g *Game) onTimerTick(seq, remaining int) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if seq != g.phaseSeq || g.GameOver {
		return
	}
	g.fireEvent(GameEvent{
		Type:    EventTimerTick,
		Payload: map[string]interface{}{"remaining": remaining},
	})
}

// onTimerExpire drives the timed transition for the phase the timer belonged
// to. A stale stamp means the phase already moved on (everyone acted first);
// the expiry is then ignored, never re-triggering the transition.
// Runs on the timer goroutine.
func (g *Game) onTimerExpire(seq int) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if seq != g.phaseSeq || g.GameOver {
		log.Printf("game %s: stale timer expiry (seq %d, current %d); ignoring", g.ID, seq, g.phaseSeq)
		return
	}
	log.Printf("game %s: %s timer expired", g.ID, g.Phase)

	switch g.Phase {
	case PhaseDrawing:
		g.finishDrawingPhase()
	case PhaseGuessing:
		g.finishGuessing()
	case PhaseVoting:
		g.finishVoting()
	case PhaseReveal:
		g.beginContinue()
	case PhaseRoundResults:
		g.advanceRound()
	}
}

// --- Completion checks and small helpers. Assume the lock is held.

func (g *Game) allDrawingsSubmitted() bool {
	if g.countConnectedPlayers() == 0 {
		return false
	}
	for _, d := range g.Drawings {
		artist := g.playerByID(d.ArtistID)
		if artist != nil && artist.Connected && !d.Submitted {
			return false
		}
	}
	return true
}

func (g *Game) guessesComplete() bool {
	d := g.currentDrawing()
	if d == nil || g.countConnectedPlayers() == 0 {
		return false
	}
	for _, p := range g.Players {
		if !p.Connected || p.ID == d.ArtistID {
			continue
		}
		if _, ok := d.GuessBy(p.ID); !ok {
			return false
		}
	}
	return true
}

func (g *Game) votesComplete() bool {
	d := g.currentDrawing()
	if d == nil || g.countConnectedPlayers() == 0 {
		return false
	}
	for _, p := range g.Players {
		if !p.Connected || p.ID == d.ArtistID {
			continue
		}
		if !d.HasVoteFrom(p.ID) {
			return false
		}
	}
	return true
}

func (g *Game) countConnectedPlayers() int {
	n := 0
	for _, p := range g.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

func (g *Game) connectedPlayersByJoinOrder() []*models.Player {
	var out []*models.Player
	for _, p := range g.Players {
		if p.Connected {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinOrder < out[j].JoinOrder })
	return out
}

func (g *Game) playerByID(id uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) currentDrawing() *drawingState {
	if g.CurrentDrawingIndex < 0 || g.CurrentDrawingIndex >= len(g.Drawings) {
		return nil
	}
	return g.Drawings[g.CurrentDrawingIndex]
}

func (g *Game) drawingByArtist(artistID uuid.UUID) *drawingState {
	for _, d := range g.Drawings {
		if d.ArtistID == artistID {
			return d
		}
	}
	return nil
}

// emitState broadcasts the canonical snapshot for the current phase.
// Assumes lock is held.
func (g *Game) emitState() {
	g.fireEvent(GameEvent{Type: EventStateChanged, State: g.buildSnapshot()})
}

// sendSyncState privately brings a (re)connecting player up to date,
// including their prompt if their canvas is still open.
// Assumes lock is held.
func (g *Game) sendSyncState(playerID uuid.UUID) {
	g.fireEventToPlayer(playerID, GameEvent{Type: EventStateChanged, State: g.buildSnapshot()})
	if g.Phase == PhaseDrawing {
		if d := g.drawingByArtist(playerID); d != nil && !d.Submitted {
			g.fireEventToPlayer(playerID, GameEvent{
				Type:    EventPrivatePrompt,
				Payload: map[string]interface{}{"prompt": d.Prompt, "round": g.Round},
			})
		}
	}
}

// fireEvent broadcasts an event to all connected players.
// Assumes lock is held.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event to a single player.
// Assumes lock is held.
func (g *Game) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}
