package xstate

import (
	"sync"

	"github.com/joeblynch/xstate/machine"
	"github.com/joeblynch/xstate/pkg/set"
)

// Actor is the uniform child handle: {send, stop}. send is nil for
// input-less children (promises, activities); Send/Stop are no-ops when
// the corresponding closure is nil.
type Actor struct {
	ID   string
	send func(machine.Event)
	stop func()
}

// Send forwards event to the child, if the child accepts input.
func (a *Actor) Send(event machine.Event) {
	if a != nil && a.send != nil {
		a.send(event)
	}
}

// Stop tears the child down, if it has teardown behavior.
func (a *Actor) Stop() {
	if a != nil && a.stop != nil {
		a.stop()
	}
}

// supervisor owns a service's children map and forwardTo set and implements
// sendTo/forward/stopChild.
type supervisor struct {
	owner *Service

	mu        sync.Mutex
	children  map[string]*Actor
	order     []string
	forwardTo set.Set[string]
}

func newSupervisor(owner *Service) *supervisor {
	return &supervisor{
		owner:     owner,
		children:  map[string]*Actor{},
		forwardTo: set.New[string](),
	}
}

func (sup *supervisor) insert(a *Actor, autoForward bool) {
	sup.mu.Lock()
	defer sup.mu.Unlock()
	sup.children[a.ID] = a
	sup.order = append(sup.order, a.ID)
	if autoForward {
		sup.forwardTo.Add(a.ID)
	}
}

// sendTo routes the parent sentinel to self.parent (dev warning if absent,
// since there is no invariant that a service has a parent); a named target
// must exist in children (usage-error panic if not).
func (sup *supervisor) sendTo(event machine.Event, target string) {
	if target == machine.ParentTarget {
		if sup.owner.parent == nil {
			sup.owner.devWarn("sendTo(parent): %q has no parent", sup.owner.id)
			return
		}
		sup.owner.parent.Send(event)
		return
	}
	sup.mu.Lock()
	child, ok := sup.children[target]
	sup.mu.Unlock()
	if !ok {
		panicUsage("sendTo", "unknown child %q", target)
	}
	child.Send(event)
}

// forward delivers event to every child in forwardTo, in the order those
// ids were inserted. A missing entry violates the forwardTo ⊆ children
// invariant and is a usage-error panic.
func (sup *supervisor) forward(event machine.Event) {
	sup.mu.Lock()
	ids := make([]string, 0, sup.forwardTo.Size())
	for _, id := range sup.order {
		if sup.forwardTo.Contains(id) {
			ids = append(ids, id)
		}
	}
	sup.mu.Unlock()

	for _, id := range ids {
		sup.mu.Lock()
		child, ok := sup.children[id]
		sup.mu.Unlock()
		if !ok {
			panicUsage("forward", "forwardTo contains missing child %q", id)
		}
		child.Send(event)
	}
}

// stopChild stops and removes the child, if present, keeping the
// forwardTo ⊆ children invariant intact.
func (sup *supervisor) stopChild(id string) {
	sup.mu.Lock()
	child, ok := sup.children[id]
	if ok {
		delete(sup.children, id)
		sup.forwardTo.Remove(id)
		for i, cid := range sup.order {
			if cid == id {
				sup.order = append(sup.order[:i:i], sup.order[i+1:]...)
				break
			}
		}
	}
	sup.mu.Unlock()
	if ok {
		child.Stop()
	}
}

// stopAll stops every remaining child, in insertion order.
func (sup *supervisor) stopAll() {
	sup.mu.Lock()
	ids := append([]string{}, sup.order...)
	sup.mu.Unlock()
	for _, id := range ids {
		sup.stopChild(id)
	}
}
