package xstate

import (
	"sync"

	"github.com/joeblynch/xstate/machine"
)

// spawnContext is the process-wide stack of services currently computing a
// transition. Safe under the single-threaded-cooperative model the
// interpreter assumes; a multi-threaded rework would make this thread-local
// instead.
var spawnContext struct {
	mu    sync.Mutex
	stack []*Service
}

func pushSpawnContext(s *Service) {
	spawnContext.mu.Lock()
	spawnContext.stack = append(spawnContext.stack, s)
	spawnContext.mu.Unlock()
}

func popSpawnContext() {
	spawnContext.mu.Lock()
	if n := len(spawnContext.stack); n > 0 {
		spawnContext.stack = spawnContext.stack[:n-1]
	}
	spawnContext.mu.Unlock()
}

func currentSpawnContext() *Service {
	spawnContext.mu.Lock()
	defer spawnContext.mu.Unlock()
	if n := len(spawnContext.stack); n > 0 {
		return spawnContext.stack[n-1]
	}
	return nil
}

// SpawnDescriptor is the lightweight {id, parent, send} handle the
// package-level Spawn helper returns.
type SpawnDescriptor struct {
	ID     string
	Parent *Service
	send   func(machine.Event)
}

// Send forwards event to the spawned child, if Spawn actually created one.
func (d SpawnDescriptor) Send(event machine.Event) {
	if d.send != nil {
		d.send(event)
	}
}

// Spawn consults the top of the spawn-context stack to find the service
// currently computing a transition and spawns a subscribed child on it.
// If the stack is empty (no transition is in progress), Spawn is a no-op —
// this lets action code create children without an explicit Service
// handle.
func Spawn(m machine.Machine, id string) SpawnDescriptor {
	s := currentSpawnContext()
	if s == nil {
		return SpawnDescriptor{}
	}
	child := s.spawnChildService(m, SpawnOptions{ID: id, Subscribe: true})
	return SpawnDescriptor{
		ID:     child.ID(),
		Parent: s,
		send:   func(e machine.Event) { child.Send(e) },
	}
}
