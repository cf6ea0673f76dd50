package controller

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/tasks"
)

// Surface displays state. Render is called from the controller's loop goroutine after every transition and must
// not block for long.
type Surface interface {
	Render(State)
}

// SurfaceFunc adapts a function to [Surface].
type SurfaceFunc func(State)

func (f SurfaceFunc) Render(s State) { f(s) }

// Options configures a [Controller].
type Options struct {
	Settings Settings
	Logger   *log.Logger
}

// Controller owns the state and runs the event loop.
type Controller struct {
	deps     Deps
	surface  Surface
	logger   *log.Logger
	registry *tasks.Registry

	mu      sync.Mutex
	idle    *sync.Cond
	queue   []Event
	pending int
	state   State
	running bool
	closed  bool
	wake    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a controller in the initial unauthenticated state. Call [Controller.Start] to begin processing.
func New(deps Deps, surface Surface, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if surface == nil {
		surface = SurfaceFunc(func(State) {})
	}

	c := &Controller{
		deps:     deps,
		surface:  surface,
		logger:   shared.WithLogger(logger, "component", "controller"),
		registry: tasks.NewRegistry(),
		state:    NewState(opts.Settings),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// Start launches the loop goroutine and renders the initial state. The loop stops when ctx ends or Stop is called.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	initial := c.state
	c.mu.Unlock()

	c.surface.Render(initial)
	go c.loop()
}

// Stop cancels running effects and ends the loop.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.registry.CancelAll()
	<-c.done
}

// Dispatch queues ev for processing. It never blocks. Events dispatched after the loop has stopped are dropped.
func (c *Controller) Dispatch(ev Event) {
	if ev == nil {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, ev)
	c.pending++
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Settle blocks until no events are queued and no effects are running, or ctx ends.
//
// Pending notification expiry counts as running, so callers that settle should disable it.
func (c *Controller) Settle(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.idle.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pending > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.idle.Wait()
	}
	return nil
}

// Do dispatches ev and waits for the controller to settle, returning the resulting state.
func (c *Controller) Do(ctx context.Context, ev Event) (State, error) {
	c.Dispatch(ev)
	err := c.Settle(ctx)
	return c.State(), err
}

func (c *Controller) loop() {
	defer close(c.done)

	for {
		ev, ok := c.next()
		if !ok {
			select {
			case <-c.wake:
				continue
			case <-c.ctx.Done():
				c.drain()
				return
			}
		}
		c.apply(ev)
	}
}

func (c *Controller) next() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil, false
	}
	ev := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return ev, true
}

// drain discards queued events after shutdown so Settle callers are released.
func (c *Controller) drain() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending -= len(c.queue)
	c.queue = nil
	c.closed = true
	c.idle.Broadcast()
}

func (c *Controller) apply(ev Event) {
	c.mu.Lock()
	prev := c.state
	c.mu.Unlock()

	c.observe(prev, ev)
	next, effects := Update(prev, ev)

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	c.surface.Render(next)

	for _, eff := range effects {
		c.start(eff)
	}

	c.mu.Lock()
	c.pending--
	if c.pending == 0 {
		c.idle.Broadcast()
	}
	c.mu.Unlock()
}

// observe logs stale drops and failed completions.
func (c *Controller) observe(s State, ev Event) {
	if Stale(s, ev) {
		t := ev.(tracked)
		c.logger.Debug("dropping stale result", "intent", t.intent(), "seq", t.seq())
		return
	}

	comp, ok := ev.(Completion)
	if !ok || comp.Failure() == nil {
		return
	}

	err := comp.Failure()
	switch ErrorKind(err) {
	case "application":
		c.logger.Info("request rejected", "event", eventName(ev), "error", err)
	case "transport":
		c.logger.Warn("request failed", "event", eventName(ev), "error", err)
	default:
		if j, ok := ev.(JournalWritten); ok {
			c.logger.Warn("journal write failed", "entry", j.Entry, "error", err)
			return
		}
		c.logger.Warn("effect failed", "event", eventName(ev), "error", err)
	}
}

func (c *Controller) start(eff Effect) {
	switch eff.Kind {
	case EffectCancel:
		c.registry.Cancel(string(eff.Intent))
		return
	case EffectCancelAll:
		c.registry.CancelAll()
		return
	}

	if eff.Run == nil {
		return
	}

	ctx := c.ctx
	if eff.Tracked() {
		ctx = c.registry.Begin(c.ctx, string(eff.Intent), eff.Seq)
	}

	c.mu.Lock()
	c.pending++
	c.mu.Unlock()

	go func() {
		result := eff.Run(ctx, c.deps)
		if eff.Tracked() {
			c.registry.Done(string(eff.Intent), eff.Seq)
		}
		if result != nil && c.ctx.Err() == nil {
			c.Dispatch(result)
		}

		c.mu.Lock()
		c.pending--
		if c.pending == 0 {
			c.idle.Broadcast()
		}
		c.mu.Unlock()
	}()
}
