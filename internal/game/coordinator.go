package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// UserStore is the slice of the persistence collaborator the coordinator
// writes through: durable score increments. The increment is expected to be
// atomic on the store side so concurrent wins never lose updates.
type UserStore interface {
	AddPoints(ctx context.Context, username string, delta int) error
}

// Outbound is the fan-out surface the coordinator pushes state changes
// through. Implementations must be best-effort per peer and safe to call
// concurrently with membership changes.
type Outbound interface {
	Broadcast(msg internal.ChatMessage)
	BroadcastExcept(connID string, msg internal.ChatMessage)
	SendTo(connID string, msg internal.ChatMessage)
}

// winPoints is awarded for every correct guess. Exactly one per win.
const winPoints = 1

// send is one prepared outbound delivery. Deliveries are built inside the
// critical section from post-transition state and pushed after it unlocks,
// so a blocking peer never stalls a state transition.
type send struct {
	to     string // non-empty: direct to this connection only
	except string // non-empty: every connection but this one
	msg    internal.ChatMessage
}

// Coordinator is the turn state machine. It owns who draws and what the
// word is, and transitions on game-start, correct guess and disconnect.
// Every compound read-then-write of the single-drawer invariant runs under
// mu; the registry's own lock only covers its primitive operations.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	words    *WordSource
	users    UserStore
	out      Outbound

	retryCount int
	retryDelay time.Duration
	sleep      func(time.Duration)
}

func NewCoordinator(registry *Registry, words *WordSource, users UserStore, out Outbound, retryCount int, retryDelay time.Duration) *Coordinator {
	return &Coordinator{
		registry:   registry,
		words:      words,
		users:      users,
		out:        out,
		retryCount: retryCount,
		retryDelay: retryDelay,
		sleep:      time.Sleep,
	}
}

// Join makes an authenticated player active and shows everyone the updated
// scoreboard.
func (c *Coordinator) Join(connID, username string, points int) error {
	c.mu.Lock()
	err := c.registry.AddActive(username, connID, points)
	var outbox []send
	if err == nil {
		outbox = c.appendScoreboard(nil)
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.deliver(outbox)
	return nil
}

// DrawerExists reports whether a turn is currently in progress.
func (c *Coordinator) DrawerExists() (bool, error) {
	_, err := c.registry.FindDrawer()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, internal.ErrNoDrawer) {
		return false, nil
	}
	return false, err
}

// StartGame begins a turn with a random active player and a fresh word.
func (c *Coordinator) StartGame(ctx context.Context) error {
	c.mu.Lock()
	outbox, err := c.assignRandomLocked(ctx)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.deliver(outbox)
	return nil
}

// EnsureDrawer starts a turn only when none is in progress. Two first
// players racing through authentication both land here; the check and the
// assignment share the critical section, so only one of them starts it.
func (c *Coordinator) EnsureDrawer(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if _, err := c.registry.FindDrawer(); err == nil {
		c.mu.Unlock()
		return false, nil
	} else if !errors.Is(err, internal.ErrNoDrawer) {
		c.mu.Unlock()
		return false, err
	}

	outbox, err := c.assignRandomLocked(ctx)
	c.mu.Unlock()

	if err != nil {
		return false, err
	}
	c.deliver(outbox)
	return true, nil
}

// HandleChat processes one inbound chat line. A correct guess by a
// non-drawer wins the turn; anything else is relayed as chat.
func (c *Coordinator) HandleChat(ctx context.Context, connID, text string) error {
	c.mu.Lock()
	outbox, err := c.handleChatLocked(ctx, connID, text)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.deliver(outbox)
	return nil
}

func (c *Coordinator) handleChatLocked(ctx context.Context, connID, text string) ([]send, error) {
	sender, err := c.registry.FindByConnection(connID)
	if err != nil {
		return nil, fmt.Errorf("%w: chat from unknown connection", internal.ErrIntegrity)
	}

	guessed, err := c.wordGuessed(text)
	if err != nil {
		return nil, err
	}
	if !guessed {
		return []send{chatLine(sender.Username, text)}, nil
	}

	drawer, err := c.registry.FindDrawer()
	if err != nil {
		return nil, err
	}
	if drawer.ConnID == connID {
		// Self-guessing never scores. Pass as a regular message.
		log.Debug().Str("username", sender.Username).Msg("drawer guessed own word, ignoring")
		return []send{chatLine(sender.Username, text)}, nil
	}

	// Award the point in memory and flush it durably. The store increment
	// is atomic, a failed flush is logged and must not abort the turn.
	if err := c.registry.AddPoints(connID, winPoints); err != nil {
		return nil, err
	}
	if err := c.users.AddPoints(ctx, sender.Username, winPoints); err != nil {
		log.Error().Err(err).Str("username", sender.Username).Msg("durable score update failed")
	}

	outbox := []send{
		{to: connID, msg: internal.ChatMessage{Type: internal.MsgYouGuessedIt, Content: fmt.Sprintf("Bravo %s, you guessed it!", sender.Username)}},
		{except: connID, msg: internal.ChatMessage{Type: internal.MsgMessage, Content: fmt.Sprintf("%s guessed the word!", sender.Username)}},
		{msg: internal.ChatMessage{Type: internal.MsgCleanCanvas}},
	}

	// The winner draws next.
	handoff, err := c.assignDrawerLocked(ctx, connID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", sender.Username).Msg("word guessed, turn handed off")
	return append(outbox, handoff...), nil
}

// wordGuessed compares the text against the current secret. Blank input and
// the no-turn state are ordinary chat, never errors.
func (c *Coordinator) wordGuessed(text string) (bool, error) {
	if isWordInvalid(text) {
		return false, nil
	}
	drawer, err := c.registry.FindDrawer()
	if err != nil {
		if errors.Is(err, internal.ErrNoDrawer) {
			return false, nil
		}
		return false, err
	}
	match, err := compareWords(text, drawer.Word)
	if err != nil {
		log.Warn().Err(err).Msg("current word to guess is blank")
		return false, nil
	}
	return match, nil
}

// HandleDisconnect runs the close-path transition for a connection. It must
// never propagate: whatever happens here, only the closing connection is
// affected.
func (c *Coordinator) HandleDisconnect(ctx context.Context, connID string) {
	c.mu.Lock()
	sess, err := c.registry.FindByConnection(connID)
	wasDrawer := err == nil && sess.IsDrawing
	c.registry.RemoveActive(connID)
	remaining := len(c.registry.ListActive())
	c.mu.Unlock()

	if remaining == 0 {
		// Nobody left; the state settles to no drawer.
		log.Info().Msg("last player left, game idle")
		return
	}

	if wasDrawer {
		c.reconcileDrawer(ctx)
	}
	c.BroadcastScoreboard()
}

// reconcileDrawer restores the single-drawer invariant after the drawer
// vanished. It probes a bounded number of times, sleeping between attempts
// so a concurrent transition still in flight can commit. The forced
// fallback re-checks absence and assigns inside one critical section, so it
// cannot race a winning guess into a second drawer.
func (c *Coordinator) reconcileDrawer(ctx context.Context) {
	for attempt := 0; attempt < c.retryCount; attempt++ {
		if _, err := c.registry.FindDrawer(); err == nil {
			log.Debug().Int("attempt", attempt).Msg("drawer reappeared during reconciliation")
			return
		}
		c.sleep(c.retryDelay)
	}

	c.mu.Lock()
	var outbox []send
	if _, err := c.registry.FindDrawer(); err != nil {
		log.Warn().Msg("no drawer after retries, forcing reassignment")
		outbox, err = c.assignRandomLocked(ctx)
		if err != nil {
			log.Error().Err(err).Msg("forced drawer reassignment failed")
			outbox = nil
		}
	}
	c.mu.Unlock()

	c.deliver(outbox)
}

// Scoreboard projects the current ranking view. One row per active
// session; order is not part of the contract.
func (c *Coordinator) Scoreboard() []internal.Score {
	return projectScoreboard(c.registry.ListActive())
}

// BroadcastScoreboard pushes the current scoreboard to every connection.
func (c *Coordinator) BroadcastScoreboard() {
	c.mu.Lock()
	outbox := c.appendScoreboard(nil)
	c.mu.Unlock()
	c.deliver(outbox)
}

// assignRandomLocked starts a turn with a uniformly chosen active player.
// Callers hold mu.
func (c *Coordinator) assignRandomLocked(ctx context.Context) ([]send, error) {
	target, err := c.registry.PickRandom()
	if err != nil {
		return nil, err
	}
	return c.assignDrawerLocked(ctx, target.ConnID)
}

// assignDrawerLocked draws a fresh word and hands drawing duty to the given
// connection. Callers hold mu.
func (c *Coordinator) assignDrawerLocked(ctx context.Context, connID string) ([]send, error) {
	word, err := c.words.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrIntegrity, err)
	}
	if err := c.registry.SetDrawer(connID, word); err != nil {
		return nil, err
	}

	outbox := []send{
		{msg: internal.ChatMessage{Type: internal.MsgCleanWordToGuess}},
		{to: connID, msg: internal.ChatMessage{Type: internal.MsgWordToGuess, Content: word}},
	}
	return c.appendScoreboard(outbox), nil
}

// appendScoreboard snapshots the scoreboard from post-transition state and
// appends it to the outbox.
func (c *Coordinator) appendScoreboard(outbox []send) []send {
	scores := projectScoreboard(c.registry.ListActive())
	payload, err := json.Marshal(scores)
	if err != nil {
		log.Error().Err(err).Msg("scoreboard marshal failed")
		return outbox
	}
	return append(outbox, send{msg: internal.ChatMessage{Type: internal.MsgScoreboard, Content: string(payload)}})
}

func (c *Coordinator) deliver(outbox []send) {
	for _, s := range outbox {
		switch {
		case s.to != "":
			c.out.SendTo(s.to, s.msg)
		case s.except != "":
			c.out.BroadcastExcept(s.except, s.msg)
		default:
			c.out.Broadcast(s.msg)
		}
	}
}

func chatLine(username, text string) send {
	return send{msg: internal.ChatMessage{Type: internal.MsgMessage, Content: fmt.Sprintf("%s: %s", username, text)}}
}
