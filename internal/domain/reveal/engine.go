package reveal

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lesson-server/services/chat-api/internal/domain/chatroom"
)

// State is the reveal lifecycle of the latest assistant message.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateRevealing
	StateRevealed
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateRevealing:
		return "revealing"
	case StateRevealed:
		return "revealed"
	default:
		return "idle"
	}
}

// SeenStore records which message ids have completed a reveal, so a message
// streams at most once.
type SeenStore interface {
	Contains(ctx context.Context, messageID string) (bool, error)
	Add(ctx context.Context, messageID string) error
}

// Config tunes the reveal pacing.
type Config struct {
	CharInterval    time.Duration
	MinRevealLength int
}

func (c Config) withDefaults() Config {
	if c.CharInterval <= 0 {
		c.CharInterval = 15 * time.Millisecond
	}
	if c.MinRevealLength <= 0 {
		c.MinRevealLength = 5
	}
	return c
}

// View is a snapshot of the engine for rendering.
type View struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
	Streaming bool   `json:"streaming"`
	State     string `json:"state"`
}

// Engine reveals one assistant message at a time, one rune per tick. A new
// message id cancels any pending tick and restarts the cycle; Cancel stops
// the reveal without recording the message as seen.
type Engine struct {
	cfg      Config
	seen     SeenStore
	log      zerolog.Logger
	onChange func(View)

	mu      sync.Mutex
	state   State
	msgID   string
	content []rune
	shown   int
	timer   *time.Timer
	gen     uint64
}

// NewEngine builds an engine with the given pacing and seen-set.
func NewEngine(cfg Config, seen SeenStore, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:  cfg.withDefaults(),
		seen: seen,
		log:  log.With().Str("component", "reveal-engine").Logger(),
	}
}

// SetOnChange registers a callback invoked after every state or text change.
func (e *Engine) SetOnChange(fn func(View)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Present targets msg, the latest assistant message of the room. Presenting
// the message currently in flight is a no-op; a different id restarts the
// cycle from the check.
func (e *Engine) Present(ctx context.Context, msg chatroom.ChatMessage) {
	e.mu.Lock()
	if e.msgID == msg.ID && e.state != StateIdle {
		e.mu.Unlock()
		return
	}

	e.resetLocked()
	e.state = StateChecking
	e.msgID = msg.ID
	e.content = []rune(msg.Content)

	switch {
	case msg.ID == "" || len(e.content) < e.cfg.MinRevealLength:
		// Nothing stable to track, or too short to bother animating.
		e.state = StateRevealed
		e.shown = len(e.content)
	default:
		seen, err := e.seen.Contains(ctx, msg.ID)
		if err != nil {
			e.log.Warn().Err(err).Str("message_id", msg.ID).Msg("seen-set lookup failed, streaming anyway")
		}
		if seen {
			e.state = StateRevealed
			e.shown = len(e.content)
		} else {
			e.state = StateRevealing
			e.scheduleLocked()
		}
	}

	view := e.viewLocked()
	notify := e.onChange
	e.mu.Unlock()
	if notify != nil {
		notify(view)
	}
}

// Cancel stops a reveal in progress without recording the message as seen,
// so it streams again next time. Used on view teardown.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()
}

// View returns a render snapshot.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) viewLocked() View {
	return View{
		MessageID: e.msgID,
		Text:      string(e.content[:e.shown]),
		Streaming: e.state == StateRevealing,
		State:     e.state.String(),
	}
}

// resetLocked invalidates any pending tick and returns the engine to idle.
func (e *Engine) resetLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.state = StateIdle
	e.msgID = ""
	e.content = nil
	e.shown = 0
}

func (e *Engine) scheduleLocked() {
	gen := e.gen
	e.timer = time.AfterFunc(e.cfg.CharInterval, func() {
		e.tick(gen)
	})
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state != StateRevealing {
		e.mu.Unlock()
		return
	}

	e.shown++
	if e.shown >= len(e.content) {
		e.shown = len(e.content)
		e.state = StateRevealed
		if err := e.seen.Add(context.Background(), e.msgID); err != nil {
			e.log.Warn().Err(err).Str("message_id", e.msgID).Msg("failed to record revealed message")
		}
	} else {
		e.scheduleLocked()
	}

	view := e.viewLocked()
	notify := e.onChange
	e.mu.Unlock()
	if notify != nil {
		notify(view)
	}
}
