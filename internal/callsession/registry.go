package callsession

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks the runners of calls currently in progress so command
// surfaces (HTTP hangup, WebSocket controls) can reach them.
type Registry struct {
	mu      sync.RWMutex
	runners map[uuid.UUID]*activeCall
}

type activeCall struct {
	runner *Runner
	cancel context.CancelFunc
}

func NewRegistry() *Registry {
	return &Registry{runners: make(map[uuid.UUID]*activeCall)}
}

// Add registers a runner and starts it on a derived context. The entry is
// removed when the runner returns.
func (reg *Registry) Add(id uuid.UUID, r *Runner) {
	ctx, cancel := context.WithCancel(context.Background())

	reg.mu.Lock()
	reg.runners[id] = &activeCall{runner: r, cancel: cancel}
	reg.mu.Unlock()

	go func() {
		r.Run(ctx)
		reg.Remove(id)
	}()
}

// Get returns the runner for an in-progress call.
func (reg *Registry) Get(id uuid.UUID) (*Runner, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.runners[id]
	if !ok {
		return nil, false
	}
	return c.runner, true
}

// Remove drops a call and releases its context.
func (reg *Registry) Remove(id uuid.UUID) {
	reg.mu.Lock()
	c, ok := reg.runners[id]
	delete(reg.runners, id)
	reg.mu.Unlock()

	if ok {
		c.cancel()
	}
}

// Count returns the number of calls in progress.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.runners)
}

// Shutdown hangs up every in-progress call.
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	calls := make([]*activeCall, 0, len(reg.runners))
	for _, c := range reg.runners {
		calls = append(calls, c)
	}
	reg.mu.Unlock()

	for _, c := range calls {
		c.runner.Hangup()
		c.cancel()
	}
}
