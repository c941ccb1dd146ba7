// Package dedup suppresses repeated sends of the same content to the same
// recipient within a sliding time window.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DefaultWindow is the duplicate-suppression window when none is configured.
const DefaultWindow = 5 * time.Second

// Guard tracks recent (sender, recipient, body) hashes. Entries older than
// the window are pruned lazily on each check; the guard is safe for
// concurrent use.
type Guard struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time // dedup hash -> last accepted send
}

// NewGuard creates a Guard with the given window. A non-positive window
// falls back to DefaultWindow.
func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// Hash computes the dedup hash for one (sender, recipient, body) triple.
// The body is normalized first so whitespace and case differences don't
// defeat suppression.
func Hash(sender, recipient, body string) string {
	h := sha256.New()
	h.Write([]byte(sender))
	h.Write([]byte{0})
	h.Write([]byte(recipient))
	h.Write([]byte{0})
	h.Write([]byte(Normalize(body)))
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize lower-cases the body and collapses runs of whitespace.
func Normalize(body string) string {
	return strings.ToLower(strings.Join(strings.Fields(body), " "))
}

// Check reports whether a send is a duplicate of one accepted within the
// window. A non-duplicate is recorded as accepted. urgentOverride bypasses
// suppression entirely for operator-issued emergency resends, but still
// records the send so later non-urgent repeats are suppressed against it.
func (g *Guard) Check(sender, recipient, body string, urgentOverride bool) bool {
	hash := Hash(sender, recipient, body)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.prune(now)

	if !urgentOverride {
		if last, ok := g.seen[hash]; ok && now.Sub(last) < g.window {
			return true
		}
	}
	g.seen[hash] = now
	return false
}

// prune drops entries older than the window. Caller holds g.mu.
func (g *Guard) prune(now time.Time) {
	for hash, last := range g.seen {
		if now.Sub(last) >= g.window {
			delete(g.seen, hash)
		}
	}
}

// Window returns the configured suppression window.
func (g *Guard) Window() time.Duration { return g.window }
