// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// SOURCE
// =============================================================================

// Source is the backend the controller talks to.
//
// LatestReport returns an error matching ErrNoReport when nothing has been
// generated yet. GenerateReport returns a response whose Result is nil when
// the job was accepted without an inline report.
type Source interface {
	LatestReport(ctx context.Context) (*Data, error)
	GenerateReport(ctx context.Context, req Request) (*GenerateResponse, error)
}

// ErrSuperseded is returned by Generate when a newer request or a Cancel
// took over before the response arrived. Its result is discarded.
var ErrSuperseded = errors.New("report request superseded")

// DefaultPlaceholder is shown while no report exists.
const DefaultPlaceholder = "No report has been generated yet. Fill in the form to generate one."

// =============================================================================
// OUTCOME AND EVENTS
// =============================================================================

// Outcome tells the caller what a successful Generate did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeReplaced means the response carried a report, now current.
	OutcomeReplaced
	// OutcomeAccepted means the job was accepted; the current report is unchanged.
	OutcomeAccepted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplaced:
		return "replaced"
	case OutcomeAccepted:
		return "accepted"
	default:
		return "none"
	}
}

// EventType identifies a state change published to subscribers.
type EventType int

const (
	EventLoadingChanged EventType = iota
	EventReportUpdated
	EventReportNotFound
	EventReportFailed
	EventGenerateAccepted
)

func (t EventType) String() string {
	switch t {
	case EventLoadingChanged:
		return "loading_changed"
	case EventReportUpdated:
		return "report_updated"
	case EventReportNotFound:
		return "report_not_found"
	case EventReportFailed:
		return "report_failed"
	case EventGenerateAccepted:
		return "generate_accepted"
	default:
		return "unknown"
	}
}

// Event is a state change together with the state after it.
type Event struct {
	Type  EventType
	State State
	Err   error
}

// State is a snapshot of what the report view shows.
type State struct {
	Loading     bool
	NotFound    bool
	Report      *Data
	Markdown    string
	Placeholder string
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Controller.
type Options struct {
	// RefreshAfter is the pause before the first poll in AwaitNewReport (default: 5s)
	RefreshAfter time.Duration

	// PollInterval is the minimum spacing between polls (default: 10s)
	PollInterval time.Duration

	// MaxPolls bounds the number of polls in AwaitNewReport (default: 6)
	MaxPolls int

	// Placeholder replaces DefaultPlaceholder when set.
	Placeholder string
}

// DefaultOptions returns the default controller options.
func DefaultOptions() *Options {
	return &Options{
		RefreshAfter: 5 * time.Second,
		PollInterval: 10 * time.Second,
		MaxPolls:     6,
		Placeholder:  DefaultPlaceholder,
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the current report and the loading/not-found status.
//
// Generate requests are tagged with a generation number. Starting a newer
// one, or calling Cancel, cancels the older request's context and makes its
// result stale; stale results are never applied.
//
// The Controller is safe for concurrent use. Subscribers are called outside
// the internal lock, in the order events were produced.
type Controller struct {
	source Source
	opts   Options

	mu         sync.Mutex
	loading    bool
	notFound   bool
	current    *Data
	markdown   string
	generation uint64
	version    uint64
	cancel     context.CancelFunc

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

// NewController creates a controller reading from src.
func NewController(src Source, opts *Options) *Controller {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	defaults := DefaultOptions()
	if o.RefreshAfter < 0 {
		o.RefreshAfter = 0
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = defaults.MaxPolls
	}
	if o.Placeholder == "" {
		o.Placeholder = defaults.Placeholder
	}

	return &Controller{
		source:    src,
		opts:      o,
		observers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for state changes and returns a function that
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

// State returns a snapshot of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	st := State{
		Loading:  c.loading,
		NotFound: c.notFound,
		Report:   c.current.Clone(),
		Markdown: c.markdown,
	}
	if c.notFound {
		st.Placeholder = c.opts.Placeholder
	}
	return st
}

// Loading reports whether a Generate call is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Report returns a copy of the current report, or nil if none is set.
func (c *Controller) Report() *Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// applyLocked makes d the current report. Callers hold c.mu.
func (c *Controller) applyLocked(d *Data) {
	d = d.Clone()
	d.Normalize()
	c.current = d
	c.markdown = ToMarkdown(d)
	c.notFound = false
	c.version++
}

// =============================================================================
// FETCH LATEST
// =============================================================================

// FetchLatest loads the most recent report.
//
// When the backend has none, the controller enters the not-found state and
// FetchLatest returns nil. A report already shown is kept and no event is
// published. Any other failure is returned and published; the
// current report is left as it was. A response that arrives after a newer
// report was applied is dropped.
func (c *Controller) FetchLatest(ctx context.Context) error {
	c.mu.Lock()
	startVersion := c.version
	c.mu.Unlock()

	data, err := c.source.LatestReport(ctx)

	c.mu.Lock()
	if c.version != startVersion {
		c.mu.Unlock()
		log.Printf("REPORT_FETCH | status=stale")
		return nil
	}

	switch {
	case errors.Is(err, ErrNoReport):
		if c.current != nil {
			c.mu.Unlock()
			log.Printf("REPORT_FETCH | status=not_found kept=current")
			return nil
		}
		c.notFound = true
		st := c.stateLocked()
		c.mu.Unlock()
		log.Printf("REPORT_FETCH | status=not_found")
		c.emit(Event{Type: EventReportNotFound, State: st})
		return nil

	case err != nil:
		st := c.stateLocked()
		c.mu.Unlock()
		log.Printf("REPORT_FETCH | status=error error=%v", err)
		err = fmt.Errorf("fetch latest report: %w", err)
		c.emit(Event{Type: EventReportFailed, State: st, Err: err})
		return err

	case data == nil:
		c.mu.Unlock()
		return fmt.Errorf("fetch latest report: empty response")
	}

	c.applyLocked(data)
	st := c.stateLocked()
	c.mu.Unlock()
	log.Printf("REPORT_FETCH | status=ok")
	c.emit(Event{Type: EventReportUpdated, State: st})
	return nil
}

// =============================================================================
// GENERATE
// =============================================================================

// Generate submits req and reconciles the response.
//
// The request is validated first; an invalid request never reaches the
// backend. Loading is set for the duration and cleared on every path.
func (c *Controller) Generate(ctx context.Context, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return OutcomeNone, err
	}

	ctx, gen := c.begin(ctx)
	defer c.finish(gen)

	log.Printf("REPORT_GENERATE | repo=%s user=%s range=%s recurring=%s generation=%d",
		req.Repo, req.Username, req.DateRange, req.RecurringReports, gen)

	resp, err := c.source.GenerateReport(ctx, req)

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		log.Printf("REPORT_GENERATE | status=superseded generation=%d", gen)
		return OutcomeNone, ErrSuperseded
	}

	if err != nil {
		st := c.stateLocked()
		c.mu.Unlock()
		log.Printf("REPORT_GENERATE | status=error error=%v", err)
		err = fmt.Errorf("generate report: %w", err)
		c.emit(Event{Type: EventReportFailed, State: st, Err: err})
		return OutcomeNone, err
	}

	if resp == nil || resp.Result == nil {
		st := c.stateLocked()
		c.mu.Unlock()
		log.Printf("REPORT_GENERATE | status=accepted")
		c.emit(Event{Type: EventGenerateAccepted, State: st})
		return OutcomeAccepted, nil
	}

	c.applyLocked(resp.Result)
	st := c.stateLocked()
	c.mu.Unlock()
	log.Printf("REPORT_GENERATE | status=replaced")
	c.emit(Event{Type: EventReportUpdated, State: st})
	return OutcomeReplaced, nil
}

// begin starts a new generation, cancelling any older in-flight request.
func (c *Controller) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.loading = true
	st := c.stateLocked()
	c.mu.Unlock()

	c.emit(Event{Type: EventLoadingChanged, State: st})
	return ctx, gen
}

// finish clears loading if gen is still the newest generation.
func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
	st := c.stateLocked()
	c.mu.Unlock()

	c.emit(Event{Type: EventLoadingChanged, State: st})
}

// Cancel abandons the in-flight Generate, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.cancel == nil && !c.loading {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.loading = false
	st := c.stateLocked()
	c.mu.Unlock()

	log.Printf("REPORT_GENERATE | status=cancelled")
	c.emit(Event{Type: EventLoadingChanged, State: st})
}

// =============================================================================
// AWAIT
// =============================================================================

// AwaitNewReport polls for a report that differs from the one shown when it
// was called. It waits RefreshAfter, then fetches at most MaxPolls times,
// at most once per PollInterval.
//
// Returns true once a different report is current. A fetch failure ends the
// wait with that error; failures are not retried.
func (c *Controller) AwaitNewReport(ctx context.Context) (bool, error) {
	baseline := c.State()

	if c.opts.RefreshAfter > 0 {
		timer := time.NewTimer(c.opts.RefreshAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	limiter := rate.NewLimiter(rate.Every(c.opts.PollInterval), 1)
	for i := 0; i < c.opts.MaxPolls; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return false, err
		}
		if err := c.FetchLatest(ctx); err != nil {
			return false, err
		}

		st := c.State()
		if st.Report != nil && (baseline.Report == nil || st.Markdown != baseline.Markdown) {
			log.Printf("REPORT_AWAIT | status=updated polls=%d", i+1)
			return true, nil
		}
	}

	log.Printf("REPORT_AWAIT | status=unchanged polls=%d", c.opts.MaxPolls)
	return false, nil
}
