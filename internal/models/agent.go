package models

import "time"

// HealthStatus is the derived reachability of an agent.
type HealthStatus string

const (
	StatusHealthy     HealthStatus = "healthy"
	StatusDegraded    HealthStatus = "degraded"
	StatusUnreachable HealthStatus = "unreachable"
)

// Agent is one entry in the static roster. Agents are loaded at startup
// from the coordinate registry and never removed at runtime.
type Agent struct {
	ID           string
	Capabilities []string
	LastSeen     time.Time
}

// HasCapability reports whether the agent carries the given tag.
func (a Agent) HasCapability(tag string) bool {
	for _, c := range a.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

// AgentHealth is the per-agent delivery health tracked by the aggregator.
type AgentHealth struct {
	AgentID             string
	ConsecutiveFailures int
	Status              HealthStatus
	LastSeen            time.Time
}
