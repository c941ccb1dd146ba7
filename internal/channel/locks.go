package channel

import (
	"sync"
	"time"
)

// lockTable serializes UI automation per agent. Only one in-flight
// automation sequence may touch an agent's panes at a time; waiters block
// with a bounded timeout so a wedged automation run cannot deadlock the
// worker pool.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]chan struct{})}
}

// get returns the token channel for an agent, creating it on first use.
func (lt *lockTable) get(agentID string) chan struct{} {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	l, ok := lt.locks[agentID]
	if !ok {
		l = make(chan struct{}, 1)
		lt.locks[agentID] = l
	}
	return l
}

// acquire takes the agent's lock, waiting up to wait. Returns false if the
// lock could not be acquired in time; the caller treats that as a channel
// failure, not a deadlock.
func (lt *lockTable) acquire(agentID string, wait time.Duration) bool {
	l := lt.get(agentID)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case l <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// release frees the agent's lock. Must only be called after a successful
// acquire.
func (lt *lockTable) release(agentID string) {
	<-lt.get(agentID)
}
