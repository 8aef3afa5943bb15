package xstate

import (
	"sync"

	"github.com/joeblynch/xstate/machine"
)

// ListenerHandle identifies a registered listener for Off, since Go
// function values are not comparable the way JS closures are.
type ListenerHandle uint64

type (
	TransitionListener func(state machine.State)
	EventListener      func(event machine.Event)
	SendListener       func(event machine.Event)
	ContextListener    func(context any, prevContext any)
	DoneListener       func(event machine.Event)
	StopListener       func()
)

type entry[T any] struct {
	handle ListenerHandle
	fn     T
}

// listenerSets holds the service's transition/event/send/context-change/
// done/stop listener sets, each iterated in insertion order.
type listenerSets struct {
	mu   sync.Mutex
	next uint64

	transition []entry[TransitionListener]
	event      []entry[EventListener]
	send       []entry[SendListener]
	change     []entry[ContextListener]
	done       []entry[DoneListener]
	stop       []entry[StopListener]
}

func newListenerSets() *listenerSets {
	return &listenerSets{}
}

func (l *listenerSets) handle() ListenerHandle {
	l.next++
	return ListenerHandle(l.next)
}

func (l *listenerSets) onTransition(fn TransitionListener) ListenerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.handle()
	l.transition = append(l.transition, entry[TransitionListener]{h, fn})
	return h
}

func (l *listenerSets) onEvent(fn EventListener) ListenerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.handle()
	l.event = append(l.event, entry[EventListener]{h, fn})
	return h
}

func (l *listenerSets) onSend(fn SendListener) ListenerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.handle()
	l.send = append(l.send, entry[SendListener]{h, fn})
	return h
}

func (l *listenerSets) onChange(fn ContextListener) ListenerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.handle()
	l.change = append(l.change, entry[ContextListener]{h, fn})
	return h
}

func (l *listenerSets) onDone(fn DoneListener) ListenerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.handle()
	l.done = append(l.done, entry[DoneListener]{h, fn})
	return h
}

func (l *listenerSets) onStop(fn StopListener) ListenerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.handle()
	l.stop = append(l.stop, entry[StopListener]{h, fn})
	return h
}

// off removes handle from whichever set it belongs to.
func (l *listenerSets) off(handle ListenerHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transition = removeHandle(l.transition, handle)
	l.event = removeHandle(l.event, handle)
	l.send = removeHandle(l.send, handle)
	l.change = removeHandle(l.change, handle)
	l.done = removeHandle(l.done, handle)
	l.stop = removeHandle(l.stop, handle)
}

func removeHandle[T any](entries []entry[T], handle ListenerHandle) []entry[T] {
	for i, e := range entries {
		if e.handle == handle {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}

func (l *listenerSets) notifyTransition(state machine.State) {
	l.mu.Lock()
	snapshot := append([]entry[TransitionListener]{}, l.transition...)
	l.mu.Unlock()
	for _, e := range snapshot {
		e.fn(state)
	}
}

func (l *listenerSets) notifyEvent(event machine.Event) {
	l.mu.Lock()
	snapshot := append([]entry[EventListener]{}, l.event...)
	l.mu.Unlock()
	for _, e := range snapshot {
		e.fn(event)
	}
}

func (l *listenerSets) notifySend(event machine.Event) {
	l.mu.Lock()
	snapshot := append([]entry[SendListener]{}, l.send...)
	l.mu.Unlock()
	for _, e := range snapshot {
		e.fn(event)
	}
}

func (l *listenerSets) notifyChange(context, prevContext any) {
	l.mu.Lock()
	snapshot := append([]entry[ContextListener]{}, l.change...)
	l.mu.Unlock()
	for _, e := range snapshot {
		e.fn(context, prevContext)
	}
}

func (l *listenerSets) notifyDone(event machine.Event) {
	l.mu.Lock()
	snapshot := append([]entry[DoneListener]{}, l.done...)
	l.mu.Unlock()
	for _, e := range snapshot {
		e.fn(event)
	}
}

// stopAll empties every set, then calls each stop listener that was
// registered exactly once.
func (l *listenerSets) stopAll() {
	l.mu.Lock()
	snapshot := append([]entry[StopListener]{}, l.stop...)
	l.transition = nil
	l.event = nil
	l.send = nil
	l.change = nil
	l.done = nil
	l.stop = nil
	l.mu.Unlock()
	for _, e := range snapshot {
		e.fn()
	}
}
