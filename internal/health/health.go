// Package health tracks per-agent delivery health from terminal delivery
// outcomes and exposes read-only snapshots for status queries.
package health

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zulandar/switchboard/internal/models"
	"gorm.io/gorm"
)

// Status thresholds: consecutive failures at or past UnreachableAfter mark
// an agent unreachable; anything between 1 and that is degraded.
const UnreachableAfter = 3

// Aggregator owns AgentHealth state. Status transitions happen only here,
// driven by Record calls; nothing mutates health directly.
type Aggregator struct {
	mu     sync.Mutex
	agents map[string]*models.AgentHealth
	now    func() time.Time
}

// NewAggregator creates an Aggregator seeded with the given roster, all
// healthy.
func NewAggregator(roster []string) *Aggregator {
	a := &Aggregator{
		agents: make(map[string]*models.AgentHealth, len(roster)),
		now:    time.Now,
	}
	for _, id := range roster {
		a.agents[id] = &models.AgentHealth{AgentID: id, Status: models.StatusHealthy}
	}
	return a
}

// Record applies one terminal delivery outcome for an agent. Success
// resets the failure counter and refreshes LastSeen; failure increments it.
func (a *Aggregator) Record(agentID string, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, ok := a.agents[agentID]
	if !ok {
		h = &models.AgentHealth{AgentID: agentID}
		a.agents[agentID] = h
	}

	if success {
		h.ConsecutiveFailures = 0
		h.LastSeen = a.now()
	} else {
		h.ConsecutiveFailures++
	}
	h.Status = derive(h.ConsecutiveFailures)
}

// derive maps a consecutive-failure count to a status.
func derive(failures int) models.HealthStatus {
	switch {
	case failures == 0:
		return models.StatusHealthy
	case failures < UnreachableAfter:
		return models.StatusDegraded
	default:
		return models.StatusUnreachable
	}
}

// Get returns a copy of one agent's health.
func (a *Aggregator) Get(agentID string) (models.AgentHealth, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.agents[agentID]
	if !ok {
		return models.AgentHealth{}, false
	}
	return *h, true
}

// Snapshot is a read-only view of all agent health plus aggregate counts.
type Snapshot struct {
	Agents      []models.AgentHealth
	Healthy     int
	Degraded    int
	Unreachable int
}

// Snapshot returns the current health of every tracked agent, sorted by id.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{Agents: make([]models.AgentHealth, 0, len(a.agents))}
	for _, h := range a.agents {
		snap.Agents = append(snap.Agents, *h)
		switch h.Status {
		case models.StatusHealthy:
			snap.Healthy++
		case models.StatusDegraded:
			snap.Degraded++
		case models.StatusUnreachable:
			snap.Unreachable++
		}
	}
	sort.Slice(snap.Agents, func(i, j int) bool {
		return snap.Agents[i].AgentID < snap.Agents[j].AgentID
	})
	return snap
}

// Rebuild reconstructs an Aggregator from the persisted delivery log by
// replaying terminal records in order. Used by status queries in processes
// that did not perform the deliveries themselves.
func Rebuild(db *gorm.DB, roster []string) (*Aggregator, error) {
	if db == nil {
		return nil, fmt.Errorf("health: db is required")
	}

	var records []models.DeliveryRecord
	if err := db.Where("final = ?", true).
		Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("health: rebuild: %w", err)
	}

	a := NewAggregator(roster)
	for _, rec := range records {
		a.Record(rec.AgentID, rec.Success)
	}
	return a, nil
}
