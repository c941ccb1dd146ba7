// Package router orchestrates delivery channels for one (message,
// recipient) pair: automated input first, one immediate retry, then the
// mailbox fallback. The retry and fallback policy lives here and only
// here; channels never retry themselves.
package router

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/health"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
	"gorm.io/gorm"
)

// MaxAttempts caps total channel attempts per recipient: one automated,
// one automated retry, one mailbox.
const MaxAttempts = 3

// Result is the terminal per-recipient outcome surfaced to the caller.
type Result struct {
	MessageID string
	AgentID   string
	State     models.MessageState
	Channel   string // channel that produced the terminal outcome
	Reason    channel.Reason
	Detail    string
}

// Delivered reports whether the message reached the agent.
func (r Result) Delivered() bool { return r.State == models.StateDelivered }

// Router routes messages through channels and records every attempt.
type Router struct {
	registry  *registry.Registry
	automated channel.Channel
	mailbox   channel.Channel
	db        *gorm.DB
	health    *health.Aggregator
	retries   int
}

// Opts holds parameters for creating a Router.
type Opts struct {
	Registry  *registry.Registry
	Automated channel.Channel
	Mailbox   channel.Channel
	DB        *gorm.DB           // delivery-record store
	Health    *health.Aggregator // updated with each terminal outcome
	// AutomatedRetries is the number of immediate retries after a failed
	// automated attempt. Defaults to 1; capped so the mailbox attempt
	// always fits within MaxAttempts.
	AutomatedRetries int
}

// New creates a Router.
func New(opts Opts) (*Router, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("router: registry is required")
	}
	if opts.Automated == nil {
		return nil, fmt.Errorf("router: automated channel is required")
	}
	if opts.Mailbox == nil {
		return nil, fmt.Errorf("router: mailbox channel is required")
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("router: db is required")
	}
	if opts.Health == nil {
		return nil, fmt.Errorf("router: health aggregator is required")
	}
	retries := opts.AutomatedRetries
	if retries <= 0 {
		retries = 1
	}
	if retries > MaxAttempts-2 {
		retries = MaxAttempts - 2
	}
	return &Router{
		registry:  opts.Registry,
		automated: opts.Automated,
		mailbox:   opts.Mailbox,
		db:        opts.DB,
		health:    opts.Health,
		retries:   retries,
	}, nil
}

// Deliver runs the full channel sequence for one recipient and returns the
// terminal outcome. Agents without a resolvable UI target skip straight to
// the mailbox without paying the automated channel's timeout.
func (r *Router) Deliver(ctx context.Context, msg *models.Message, agentID string) Result {
	target, hasTarget := r.registry.Get(agentID)

	if hasTarget {
		// First automated attempt plus immediate retries on channel error.
		for try := 0; try <= r.retries; try++ {
			out := r.automated.Attempt(ctx, msg, agentID, target)
			if out.Success {
				return r.finish(msg, agentID, r.automated.Name(), out)
			}
			r.record(msg, agentID, r.automated.Name(), out, false)
		}
	}

	out := r.mailbox.Attempt(ctx, msg, agentID, registry.Target{})
	return r.finish(msg, agentID, r.mailbox.Name(), out)
}

// finish records the terminal attempt, updates agent health, and builds
// the caller-facing result.
func (r *Router) finish(msg *models.Message, agentID, channelName string, out channel.Outcome) Result {
	r.record(msg, agentID, channelName, out, true)
	r.health.Record(agentID, out.Success)

	res := Result{
		MessageID: msg.ID,
		AgentID:   agentID,
		Channel:   channelName,
		Reason:    out.Reason,
		Detail:    out.Detail,
	}
	if out.Success {
		res.State = models.StateDelivered
	} else {
		res.State = models.StateFailed
	}
	return res
}

// record appends one DeliveryRecord. A failed write loses audit data but
// never fails the delivery itself.
func (r *Router) record(msg *models.Message, agentID, channelName string, out channel.Outcome, final bool) {
	msg.Attempts++
	rec := models.DeliveryRecord{
		MessageID: msg.ID,
		AgentID:   agentID,
		Channel:   channelName,
		Success:   out.Success,
		Reason:    string(out.Reason),
		Detail:    out.Detail,
		Final:     final,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(&rec).Error; err != nil {
		log.Printf("router: record attempt for %s/%s: %v", msg.ID, agentID, err)
	}
}

// Duplicate builds the terminal result for a send rejected by the dedup
// guard before any channel attempt.
func Duplicate(msg *models.Message, agentID string) Result {
	return Result{
		MessageID: msg.ID,
		AgentID:   agentID,
		State:     models.StateDuplicate,
		Detail:    "suppressed by dedup guard",
	}
}
