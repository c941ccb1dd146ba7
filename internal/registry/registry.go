// Package registry loads and validates the per-agent UI coordinate map.
//
// The registry is immutable after load and is passed explicitly to the
// router and the automated channel; missing agents are reported through
// an ok-bool, never an error, since absence only means the automated
// channel is unavailable for that agent.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Point is a screen coordinate.
type Point struct {
	X int
	Y int
}

// Target is the UI destination for one agent. Input is optional; when nil
// the focus point doubles as the input point.
type Target struct {
	Focus Point
	Input *Point
}

// InputPoint returns the point text should be committed at.
func (t Target) InputPoint() Point {
	if t.Input != nil {
		return *t.Input
	}
	return t.Focus
}

// Issue is one validation finding for an agent's target.
type Issue struct {
	AgentID string
	Problem string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.AgentID, i.Problem)
}

// Registry is the immutable agent-id to UI-target map plus per-agent
// capability tags from the same config file.
type Registry struct {
	targets      map[string]Target
	capabilities map[string][]string
	maxX, maxY   int // zero disables the upper-bound check
}

type entryJSON struct {
	Focus        []int    `json:"focus"`
	Input        []int    `json:"input"`
	Capabilities []string `json:"capabilities"`
}

// Load reads the coordinate config from path. Bounds (maxX, maxY) cap
// valid coordinates; pass zeros to disable the upper-bound check.
func Load(path string, maxX, maxY int) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return Parse(data, maxX, maxY)
}

// Parse builds a Registry from raw JSON bytes.
func Parse(data []byte, maxX, maxY int) (*Registry, error) {
	var raw map[string]entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("registry: parse: %w", err)
	}

	r := &Registry{
		targets:      make(map[string]Target, len(raw)),
		capabilities: make(map[string][]string, len(raw)),
		maxX:         maxX,
		maxY:         maxY,
	}
	for id, e := range raw {
		if id == "" {
			return nil, fmt.Errorf("registry: empty agent id")
		}
		t := Target{}
		if len(e.Focus) == 2 {
			t.Focus = Point{X: e.Focus[0], Y: e.Focus[1]}
		} else if len(e.Focus) != 0 {
			return nil, fmt.Errorf("registry: agent %q: focus must be [x,y]", id)
		}
		if len(e.Input) == 2 {
			t.Input = &Point{X: e.Input[0], Y: e.Input[1]}
		} else if len(e.Input) != 0 {
			return nil, fmt.Errorf("registry: agent %q: input must be [x,y]", id)
		}
		// An entry with no focus point is a roster-only agent: it is
		// addressable via the mailbox but has no resolvable UI target.
		if len(e.Focus) == 0 {
			r.capabilities[id] = e.Capabilities
			continue
		}
		r.targets[id] = t
		r.capabilities[id] = e.Capabilities
	}
	return r, nil
}

// Get returns the UI target for an agent. ok is false when the agent has
// no resolvable target; callers must branch rather than expect an error.
func (r *Registry) Get(agentID string) (Target, bool) {
	t, ok := r.targets[agentID]
	return t, ok
}

// Capabilities returns the tag set for an agent.
func (r *Registry) Capabilities(agentID string) []string {
	return r.capabilities[agentID]
}

// AgentIDs returns every registered agent id, sorted. This is the static
// roster used for broadcast fan-out.
func (r *Registry) AgentIDs() []string {
	ids := make([]string, 0, len(r.capabilities))
	for id := range r.capabilities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateAll returns diagnostics for every agent with a missing or
// malformed target: out-of-range coordinates, focus or input points shared
// between agents, or no target at all. The result is a diagnostic,
// not a delivery error; delivery falls back to the mailbox regardless.
func (r *Registry) ValidateAll() []Issue {
	var issues []Issue

	seen := make(map[Point]string) // point -> first agent using it
	for _, id := range r.AgentIDs() {
		t, ok := r.targets[id]
		if !ok {
			issues = append(issues, Issue{AgentID: id, Problem: "no UI target configured"})
			continue
		}

		points := []Point{t.Focus}
		if in := t.InputPoint(); in != t.Focus {
			points = append(points, in)
		}
		for _, p := range points {
			if !r.inRange(p) {
				issues = append(issues, Issue{
					AgentID: id,
					Problem: fmt.Sprintf("coordinate (%d,%d) out of range", p.X, p.Y),
				})
			}
			if prev, dup := seen[p]; dup {
				issues = append(issues, Issue{
					AgentID: id,
					Problem: fmt.Sprintf("point (%d,%d) duplicates agent %s", p.X, p.Y, prev),
				})
			} else {
				seen[p] = id
			}
		}
	}
	return issues
}

func (r *Registry) inRange(p Point) bool {
	if p.X < 0 || p.Y < 0 {
		return false
	}
	if r.maxX > 0 && p.X >= r.maxX {
		return false
	}
	if r.maxY > 0 && p.Y >= r.maxY {
		return false
	}
	return true
}
