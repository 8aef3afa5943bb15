package xstate

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joeblynch/xstate/clock"
	"github.com/joeblynch/xstate/internal/scheduler"
	"github.com/joeblynch/xstate/internal/timers"
	"github.com/joeblynch/xstate/machine"
)

// Options configures a Service. Callers build one explicitly; DefaultOptions
// returns sensible defaults to start from.
type Options struct {
	Execute     bool
	DeferEvents bool
	Clock       clock.Clock
	Logger      Logger
	Parent      *Service
	ID          string
	DevTools    DevTools
}

// DefaultOptions returns the interpreter's documented defaults: execute and
// deferEvents true, a real wall-clock Clock, a slog-backed Logger, and a
// no-op DevTools bridge.
func DefaultOptions() Options {
	return Options{
		Execute:     true,
		DeferEvents: true,
		Clock:       clock.NewReal(),
		Logger:      NewSlogLogger(nil),
		DevTools:    NoopDevTools,
	}
}

// Service is a live binding of a Machine to a runtime: it owns the current
// state and orchestrates the scheduler, timer registry, action executor and
// actor supervisor underneath it.
type Service struct {
	m      machine.Machine
	id     string
	parent *Service

	mu    sync.Mutex
	state machine.State

	initialized atomic.Bool

	execute     bool
	deferEvents bool
	clk         clock.Clock
	logger      Logger
	devTools    DevTools

	scheduler  *scheduler.Scheduler
	timers     *timers.Registry
	listeners  *listenerSets
	supervisor *supervisor
}

// New constructs a Service bound to m. The Service is not started; call
// Start to make its initial state current.
func New(m machine.Machine, opts Options) *Service {
	id := opts.ID
	if id == "" {
		id = m.ID()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewReal()
	}
	logger := opts.Logger
	if logger == nil {
		logger = NewSlogLogger(nil)
	}
	devTools := opts.DevTools
	if devTools == nil {
		devTools = NoopDevTools
	}
	s := &Service{
		m:           m,
		id:          id,
		parent:      opts.Parent,
		execute:     opts.Execute,
		deferEvents: opts.DeferEvents,
		clk:         clk,
		logger:      logger,
		devTools:    devTools,
		scheduler:   scheduler.New(opts.DeferEvents),
		listeners:   newListenerSets(),
	}
	s.timers = timers.New(clk)
	s.supervisor = newSupervisor(s)
	return s
}

// ID returns the service's identifier (machine id unless overridden).
func (s *Service) ID() string { return s.id }

// Parent returns the owning service, or nil for a top-level service.
func (s *Service) Parent() *Service { return s.parent }

func (s *Service) setState(state machine.State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// State returns the current state. Before Start it is the zero State.
func (s *Service) State() machine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InitialState returns the bound machine's own initial state, without
// making it current.
func (s *Service) InitialState() machine.State {
	return s.m.InitialState()
}

// Start resolves initial (the machine's own initial state if the zero
// State is passed, otherwise a caller-supplied partial/full state run
// through the machine's resolver), marks the service initialized, and hands
// the first update to the Scheduler.
func (s *Service) Start(initial machine.State) {
	pushSpawnContext(s)
	resolved := s.m.ResolveState(initial)
	popSpawnContext()
	s.initialized.Store(true)
	s.scheduler.Initialize(func() {
		s.update(resolved, true)
	})
}

// Send enqueues event for processing. A single event runs to completion —
// including reentrant sends made from its own actions — before the next
// queued event starts.
func (s *Service) Send(event machine.Event) {
	if event.Type == machine.ErrorExecutionEvent {
		current := s.State()
		if !containsString(current.NextEvents, event.Type) {
			panicUnhandledError(event)
		}
	}
	if !s.initialized.Load() {
		if !s.deferEvents {
			panicUsage("send", "send(%q) called before start (deferEvents=false)", event.Type)
		}
		s.devWarn("send(%q) called before start; deferred to initialize", event.Type)
	}
	s.listeners.notifySend(event)
	if err := s.scheduler.Schedule(func() { s.processEvent(event) }); err != nil {
		panicUsage("send", "%v", err)
	}
}

func panicUnhandledError(event machine.Event) {
	if err, ok := event.Data.(error); ok {
		panic(err)
	}
	panic(fmt.Errorf("xstate: unhandled %s event: %v", machine.ErrorExecutionEvent, event.Data))
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func (s *Service) processEvent(event machine.Event) {
	current := s.State()
	pushSpawnContext(s)
	next := s.m.Transition(current, event, current.Context)
	popSpawnContext()
	s.update(next, false)
	s.supervisor.forward(event)
}

// Batch folds a series of events through the machine as one scheduled task,
// one final published update, with actions from earlier
// sub-transitions prepended to later ones so nothing executes until the
// fold completes.
func (s *Service) Batch(events []machine.Event) {
	if err := s.scheduler.Schedule(func() { s.processBatch(events) }); err != nil {
		panicUsage("batch", "%v", err)
	}
}

func (s *Service) processBatch(events []machine.Event) {
	current := s.State()
	var pending []machine.Action
	for _, event := range events {
		s.listeners.notifySend(event)
		pushSpawnContext(s)
		next := s.m.Transition(current, event, current.Context)
		popSpawnContext()
		merged := make([]machine.Action, 0, len(pending)+len(next.Actions))
		merged = append(merged, pending...)
		merged = append(merged, next.Actions...)
		next.Actions = merged
		pending = merged
		s.supervisor.forward(event)
		current = next
	}
	s.update(current, false)
}

// Sender returns a closure that sends event and reports the resulting
// current state — a pure-looking convenience over Send+State.
func (s *Service) Sender(event machine.Event) func() machine.State {
	return func() machine.State {
		s.Send(event)
		return s.State()
	}
}

// NextState previews the state event would produce, without publishing it
// or running any actions.
func (s *Service) NextState(event machine.Event) machine.State {
	current := s.State()
	return s.m.Transition(current, event, current.Context)
}

// update is the single choke point that assigns state, executes actions
// (unless execute=false), and notifies listeners in order: dev-tools, event,
// transition, context-change, then done+stop if the new state is final.
func (s *Service) update(state machine.State, isInitial bool) {
	s.setState(state)
	s.executeActions(state)

	if isInitial {
		s.devTools.Init(state)
	} else {
		s.devTools.Send(state.Event, state)
	}

	if state.Event.Type != "" {
		s.listeners.notifyEvent(state.Event)
	}
	s.listeners.notifyTransition(state)

	var prevContext any
	if state.History != nil {
		prevContext = state.History.Context
	}
	s.listeners.notifyChange(state.Context, prevContext)

	if state.Tree.Done {
		var doneData any
		if state.Tree.GetDoneData != nil {
			doneData = state.Tree.GetDoneData(state.Context, state.Event)
		}
		doneEvent := machine.NewEvent(machine.DoneInvokeEvent(s.id), doneData)
		s.listeners.notifyDone(doneEvent)
		s.Stop()
	}
}

// Stop empties every listener set (firing stop-listeners exactly once),
// stops every child, cancels every outstanding timer, and marks the service
// uninitialized. Idempotent.
func (s *Service) Stop() {
	s.listeners.stopAll()
	s.supervisor.stopAll()
	s.timers.CancelAll()
	s.initialized.Store(false)
}

// Listener registration, delegated to the six sets.
func (s *Service) OnTransition(fn TransitionListener) ListenerHandle { return s.listeners.onTransition(fn) }
func (s *Service) OnEvent(fn EventListener) ListenerHandle           { return s.listeners.onEvent(fn) }
func (s *Service) OnSend(fn SendListener) ListenerHandle             { return s.listeners.onSend(fn) }
func (s *Service) OnChange(fn ContextListener) ListenerHandle        { return s.listeners.onChange(fn) }
func (s *Service) OnDone(fn DoneListener) ListenerHandle             { return s.listeners.onDone(fn) }
func (s *Service) OnStop(fn StopListener) ListenerHandle             { return s.listeners.onStop(fn) }

// Off removes handle from every listener set it belongs to.
func (s *Service) Off(handle ListenerHandle) { s.listeners.off(handle) }
