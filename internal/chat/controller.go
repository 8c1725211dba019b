// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives a streamed chat session against the agent backend.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/jeranaias/mle-tui/internal/client"
	"github.com/jeranaias/mle-tui/internal/model"
)

// =============================================================================
// BACKEND
// =============================================================================

// Backend opens a streamed reply for one user message.
type Backend interface {
	Chat(ctx context.Context, project, message string) (*client.ChatStream, error)
}

// ErrSuperseded is returned by Send when a Reset, Cancel or newer Send took
// over before the reply finished. Nothing from the old reply is applied
// after that point.
var ErrSuperseded = errors.New("chat request superseded")

// =============================================================================
// PHASE
// =============================================================================

// Phase is where the controller is in the send cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseSending means the request is out and no reply text has arrived.
	PhaseSending
	// PhaseStreaming means reply text is arriving.
	PhaseStreaming
)

func (p Phase) String() string {
	switch p {
	case PhaseSending:
		return "sending"
	case PhaseStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// EventType identifies a change published to subscribers.
type EventType int

const (
	EventMessageAppended EventType = iota
	EventMessageUpdated
	EventLoadingChanged
	EventSessionReset
	EventSendFailed
)

func (t EventType) String() string {
	switch t {
	case EventMessageAppended:
		return "message_appended"
	case EventMessageUpdated:
		return "message_updated"
	case EventLoadingChanged:
		return "loading_changed"
	case EventSessionReset:
		return "session_reset"
	case EventSendFailed:
		return "send_failed"
	default:
		return "unknown"
	}
}

// Event describes one change to the session.
type Event struct {
	Type       EventType
	Message    model.Message
	Loading    bool
	Err        error
	Generation uint64
}

// ScrollToEnd reports whether the view should move to the newest message.
func (e Event) ScrollToEnd() bool {
	return e.Type == EventMessageAppended || e.Type == EventMessageUpdated || e.Type == EventSessionReset
}

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultProject is the project new sessions are bound to.
const DefaultProject = "test2"

// Options configures a Controller.
type Options struct {
	// Project tags every message of the session (default: test2)
	Project string

	// Greeting is the content of the seed message. May be empty.
	Greeting string
}

// DefaultOptions returns the default session options.
func DefaultOptions() *Options {
	return &Options{Project: DefaultProject}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the session message store and the loading flag.
//
// Every Send runs under a generation number. Reset, Cancel and any newer
// Send advance the generation and cancel the older request's context; chunks
// that arrive for an old generation are dropped. The assistant reply is
// addressed by the handle returned when it was appended, never by position.
//
// The Controller is safe for concurrent use. Subscribers are called outside
// the internal lock; events from one Send arrive in order.
type Controller struct {
	backend Backend
	store   *model.Store

	mu         sync.Mutex
	opts       Options
	loading    bool
	phase      Phase
	generation uint64
	cancel     context.CancelFunc

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

// NewController creates a controller with a freshly seeded session.
func NewController(backend Backend, opts *Options) *Controller {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.Project == "" {
		o.Project = DefaultProject
	}

	return &Controller{
		backend:   backend,
		store:     model.NewStore(model.NewSeedMessage(o.Greeting, o.Project)),
		opts:      o,
		observers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (c *Controller) Subscribe(fn func(Event)) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Controller) emit(events ...Event) {
	c.obsMu.Lock()
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.observers[id])
	}
	c.obsMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// Messages returns a snapshot of the session in order.
func (c *Controller) Messages() []model.Message {
	return c.store.Snapshot()
}

// Message returns the message addressed by handle.
func (c *Controller) Message(handle string) (model.Message, bool) {
	return c.store.Get(handle)
}

// Loading reports whether a request is out and no reply text has arrived.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Phase returns the current send phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Generation returns the current generation number.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Project returns the project new messages are tagged with.
func (c *Controller) Project() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Project
}

// SetProject changes the project for later messages and resets.
func (c *Controller) SetProject(project string) {
	if project == "" {
		return
	}
	c.mu.Lock()
	c.opts.Project = project
	c.mu.Unlock()
}

// =============================================================================
// SEND
// =============================================================================

// SendText sends content as a user message for the session's project.
func (c *Controller) SendText(ctx context.Context, content string) (string, error) {
	return c.Send(ctx, model.NewUserMessage(content, c.Project()))
}

// Send appends msg, requests a reply and folds the streamed reply into a
// single assistant message. It returns that message's handle.
//
// A non-success status or a reply without a body leaves the session without
// an assistant message. A failure mid-stream keeps the partial reply and
// returns its handle together with the error.
func (c *Controller) Send(ctx context.Context, msg model.Message) (string, error) {
	if msg.Role == "" {
		msg.Role = model.RoleUser
	}
	if msg.Project == "" {
		msg.Project = c.Project()
	}

	ctx, gen, stored := c.begin(ctx, msg)

	log.Printf("CHAT_SEND | project=%s generation=%d", stored.Project, gen)

	s, err := c.backend.Chat(ctx, stored.Project, stored.Content)
	if err != nil {
		return "", c.fail(gen, err)
	}
	defer s.Close()

	dec := s.Decoder()
	var (
		handle   string
		applyErr error
	)
	err = dec.Process(ctx, func(text string) error {
		if handle == "" {
			handle, applyErr = c.applyFirst(gen, stored, text)
		} else {
			applyErr = c.applyNext(gen, handle, text)
		}
		return applyErr
	})
	switch {
	case applyErr != nil:
		return handle, applyErr
	case err != nil:
		return handle, c.fail(gen, err)
	}

	if handle == "" {
		return "", c.fail(gen, client.ErrEmptyBody)
	}

	c.complete(gen, dec.Chunks())
	return handle, nil
}

// begin appends the user message and opens a new generation.
func (c *Controller) begin(parent context.Context, msg model.Message) (context.Context, uint64, model.Message) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	id := c.store.Append(msg)
	stored, _ := c.store.Get(id)
	c.loading = true
	c.phase = PhaseSending
	c.mu.Unlock()

	c.emit(
		Event{Type: EventMessageAppended, Message: stored, Loading: true, Generation: gen},
		Event{Type: EventLoadingChanged, Loading: true, Generation: gen},
	)
	return ctx, gen, stored
}

// applyFirst appends the assistant reply with its first chunk.
func (c *Controller) applyFirst(gen uint64, user model.Message, text string) (string, error) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return "", ErrSuperseded
	}
	reply := model.NewAssistantMessage(text, user.Project).WithType(user.MsgType)
	handle := c.store.Append(reply)
	c.loading = false
	c.phase = PhaseStreaming
	c.mu.Unlock()

	c.emit(
		Event{Type: EventMessageAppended, Message: reply, Generation: gen},
		Event{Type: EventLoadingChanged, Loading: false, Generation: gen},
	)
	return handle, nil
}

// applyNext extends the assistant reply addressed by handle.
func (c *Controller) applyNext(gen uint64, handle, text string) error {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	updated, err := c.store.Extend(handle, text)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.emit(Event{Type: EventMessageUpdated, Message: updated, Generation: gen})
	return nil
}

// fail ends a send that did not complete. Stale generations report
// ErrSuperseded and touch nothing.
func (c *Controller) fail(gen uint64, err error) error {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.release()
	c.mu.Unlock()

	log.Printf("CHAT_SEND | status=error generation=%d error=%v", gen, err)
	err = fmt.Errorf("chat send: %w", err)
	c.emit(
		Event{Type: EventLoadingChanged, Loading: false, Generation: gen},
		Event{Type: EventSendFailed, Err: err, Generation: gen},
	)
	return err
}

// complete marks a finished send.
func (c *Controller) complete(gen uint64, chunks int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return
	}
	c.release()
	log.Printf("CHAT_SEND | status=done generation=%d chunks=%d", gen, chunks)
}

// release returns to idle. Callers hold c.mu.
func (c *Controller) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
	c.phase = PhaseIdle
}

// =============================================================================
// RESET AND CANCEL
// =============================================================================

// Reset abandons any in-flight send and replaces the session with a single
// seed message. Calling it repeatedly leaves the same one-message session.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.release()
	seed := model.NewSeedMessage(c.opts.Greeting, c.opts.Project)
	c.store.ResetTo(seed)
	c.mu.Unlock()

	log.Printf("CHAT_RESET | project=%s generation=%d", seed.Project, gen)
	c.emit(Event{Type: EventSessionReset, Message: seed, Generation: gen})
}

// Cancel abandons the in-flight send, if any, keeping whatever reply text
// already arrived.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.phase == PhaseIdle {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	c.release()
	c.mu.Unlock()

	log.Printf("CHAT_SEND | status=cancelled generation=%d", gen)
	c.emit(Event{Type: EventLoadingChanged, Loading: false, Generation: gen})
}
