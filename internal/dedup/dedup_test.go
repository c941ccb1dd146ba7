package dedup

import (
	"sync"
	"testing"
	"time"
)

// fixedClock lets tests step time manually.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestGuard(window time.Duration) (*Guard, *fixedClock) {
	clock := &fixedClock{t: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}
	g := NewGuard(window)
	g.now = clock.now
	return g, clock
}

func TestCheck_SuppressesWithinWindow(t *testing.T) {
	g, _ := newTestGuard(5 * time.Second)

	if g.Check("orch", "agent-3", "ping", false) {
		t.Fatal("first send should not be a duplicate")
	}
	if !g.Check("orch", "agent-3", "ping", false) {
		t.Fatal("second identical send within window should be a duplicate")
	}
}

func TestCheck_ExpiresAfterWindow(t *testing.T) {
	g, clock := newTestGuard(5 * time.Second)

	g.Check("orch", "agent-3", "ping", false)
	clock.advance(6 * time.Second)
	if g.Check("orch", "agent-3", "ping", false) {
		t.Fatal("send after window expiry should not be a duplicate")
	}
}

func TestCheck_NormalizedBody(t *testing.T) {
	g, _ := newTestGuard(5 * time.Second)

	g.Check("orch", "agent-3", "Ping  the\tservice", false)
	if !g.Check("orch", "agent-3", "ping the service", false) {
		t.Fatal("whitespace/case variants should collapse to one hash")
	}
}

func TestCheck_DistinctRecipients(t *testing.T) {
	g, _ := newTestGuard(5 * time.Second)

	g.Check("orch", "agent-1", "ping", false)
	if g.Check("orch", "agent-2", "ping", false) {
		t.Fatal("same body to a different recipient is not a duplicate")
	}
	if g.Check("reviewer", "agent-1", "ping", false) {
		t.Fatal("same body from a different sender is not a duplicate")
	}
}

func TestCheck_UrgentOverride(t *testing.T) {
	g, _ := newTestGuard(5 * time.Second)

	g.Check("orch", "agent-3", "evacuate", false)
	if g.Check("orch", "agent-3", "evacuate", true) {
		t.Fatal("urgent override must bypass suppression")
	}
	// The override still refreshes the record.
	if !g.Check("orch", "agent-3", "evacuate", false) {
		t.Fatal("non-urgent repeat after override should be suppressed")
	}
}

func TestCheck_LazyPrune(t *testing.T) {
	g, clock := newTestGuard(time.Second)

	g.Check("orch", "agent-1", "a", false)
	g.Check("orch", "agent-2", "b", false)
	clock.advance(2 * time.Second)
	g.Check("orch", "agent-3", "c", false)

	g.mu.Lock()
	n := len(g.seen)
	g.mu.Unlock()
	if n != 1 {
		t.Errorf("seen entries = %d, want 1 (expired entries pruned)", n)
	}
}

func TestCheck_ConcurrentSamePair(t *testing.T) {
	g, _ := newTestGuard(5 * time.Second)

	var wg sync.WaitGroup
	accepted := make(chan struct{}, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.Check("orch", "agent-1", "race", false) {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	n := 0
	for range accepted {
		n++
	}
	if n != 1 {
		t.Errorf("accepted = %d, want exactly 1", n)
	}
}

func TestNewGuard_DefaultWindow(t *testing.T) {
	g := NewGuard(0)
	if g.Window() != DefaultWindow {
		t.Errorf("window = %s, want %s", g.Window(), DefaultWindow)
	}
}
