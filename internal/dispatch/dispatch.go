// Package dispatch wires the delivery pipeline together: submissions enter
// the priority scheduler, pass the dedup guard, and are routed through
// delivery channels, with agent health updated per terminal outcome.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/dedup"
	"github.com/zulandar/switchboard/internal/health"
	"github.com/zulandar/switchboard/internal/mailbox"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
	"github.com/zulandar/switchboard/internal/router"
	"github.com/zulandar/switchboard/internal/scheduler"
	"gorm.io/gorm"
)

// Result codes surfaced to the command layer as process exit codes.
const (
	CodeOK             = 0
	CodePartialFailure = 2
	CodeInvalidConfig  = 3
)

// Service is the delivery front door: Send, Broadcast, Status.
type Service struct {
	registry *registry.Registry
	guard    *dedup.Guard
	queue    *scheduler.Queue
	pool     *scheduler.Pool
	health   *health.Aggregator
	out      io.Writer
}

// ServiceOpts holds parameters for creating a Service.
type ServiceOpts struct {
	Config   *config.Config
	Registry *registry.Registry
	DB       *gorm.DB
	// Automator overrides the UI automation backend; nil uses the
	// package default (the real xdotool-backed implementation).
	Automator channel.Automator
	Out       io.Writer // defaults to os.Stdout
}

// NewService builds and starts the delivery pipeline. Callers must Stop it
// to drain in-flight jobs.
func NewService(ctx context.Context, opts ServiceOpts) (*Service, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("dispatch: config is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("dispatch: registry is required")
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("dispatch: db is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	cfg := opts.Config
	agg := health.NewAggregator(opts.Registry.AgentIDs())

	automated := channel.NewAutomated(channel.AutomatedOpts{
		Automator: opts.Automator,
		Timeout:   cfg.Channel.Timeout.Std(),
		LockWait:  cfg.Channel.LockWait.Std(),
	})
	mbox := mailbox.NewChannel(cfg.InboxRoot)

	rt, err := router.New(router.Opts{
		Registry:         opts.Registry,
		Automated:        automated,
		Mailbox:          mbox,
		DB:               opts.DB,
		Health:           agg,
		AutomatedRetries: cfg.Channel.AutomatedRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	guard := dedup.NewGuard(cfg.Dedup.Window.Std())
	queue := scheduler.NewQueue()

	handler := func(ctx context.Context, job *scheduler.Job) router.Result {
		m := job.Message
		if guard.Check(m.Sender, job.AgentID, m.Body, m.UrgentOverride) {
			log.Printf("dispatch: duplicate from %s to %s suppressed (message %s)",
				m.Sender, job.AgentID, m.ID)
			return router.Duplicate(m, job.AgentID)
		}
		return rt.Deliver(ctx, m, job.AgentID)
	}

	pool, err := scheduler.NewPool(cfg.Workers, queue, handler)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	pool.Start(ctx)

	return &Service{
		registry: opts.Registry,
		guard:    guard,
		queue:    queue,
		pool:     pool,
		health:   agg,
		out:      out,
	}, nil
}

// SendOpts holds optional parameters for sending a message.
type SendOpts struct {
	Sender         string // defaults to "operator"
	Priority       models.Priority
	Tags           []string
	UrgentOverride bool // bypass the dedup guard for emergency resends
}

// Send submits one message to one agent and blocks until its terminal
// outcome, or until ctx is cancelled.
func (s *Service) Send(ctx context.Context, agentID, body string, opts SendOpts) (router.Result, error) {
	if agentID == "" {
		return router.Result{}, fmt.Errorf("dispatch: agentID is required")
	}
	results, err := s.submit(ctx, []string{agentID}, body, opts)
	if err != nil {
		return router.Result{}, err
	}
	return results[0], nil
}

// Broadcast fans one message out to every registered agent as independent
// per-recipient deliveries. One recipient's failure never blocks or alters
// the others; the returned slice holds one result per agent, roster order.
func (s *Service) Broadcast(ctx context.Context, body string, opts SendOpts) ([]router.Result, error) {
	roster := s.registry.AgentIDs()
	if len(roster) == 0 {
		return nil, fmt.Errorf("dispatch: no agents registered")
	}
	return s.submit(ctx, roster, body, opts)
}

// submit enqueues one job per recipient and waits for every result.
func (s *Service) submit(ctx context.Context, recipients []string, body string, opts SendOpts) ([]router.Result, error) {
	if body == "" {
		return nil, fmt.Errorf("dispatch: body is required")
	}
	sender := opts.Sender
	if sender == "" {
		sender = "operator"
	}
	// Sender and tags land in mailbox header lines; a newline would break
	// the record and a comma would split a tag on read-back.
	if strings.ContainsAny(sender, "\r\n") {
		return nil, fmt.Errorf("dispatch: sender must not contain newlines")
	}
	for _, tag := range opts.Tags {
		if strings.ContainsAny(tag, ",\r\n") {
			return nil, fmt.Errorf("dispatch: tag %q must not contain commas or newlines", tag)
		}
	}

	msg := &models.Message{
		ID:             uuid.NewString(),
		Sender:         sender,
		Recipients:     recipients,
		Body:           body,
		Priority:       opts.Priority,
		Tags:           opts.Tags,
		CreatedAt:      time.Now(),
		UrgentOverride: opts.UrgentOverride,
	}

	jobs := make([]*scheduler.Job, 0, len(recipients))
	for _, agentID := range recipients {
		// Each job gets its own copy so per-recipient attempt counters
		// never race across broadcast workers.
		m := *msg
		job := scheduler.NewJob(&m, agentID)
		if err := s.queue.Enqueue(job); err != nil {
			return nil, fmt.Errorf("dispatch: enqueue for %s: %w", agentID, err)
		}
		jobs = append(jobs, job)
	}

	results := make([]router.Result, 0, len(jobs))
	for _, job := range jobs {
		select {
		case res := <-job.Result:
			results = append(results, res)
		case <-ctx.Done():
			return nil, fmt.Errorf("dispatch: wait for %s: %w", job.AgentID, ctx.Err())
		}
	}
	return results, nil
}

// Status returns the read-only health snapshot for all agents.
func (s *Service) Status() health.Snapshot {
	return s.health.Snapshot()
}

// Stop drains the queue and shuts the worker pool down.
func (s *Service) Stop() {
	s.pool.Stop()
}

// CodeFor maps a set of per-recipient results to a process result code.
func CodeFor(results []router.Result) int {
	failed := 0
	for _, r := range results {
		if r.State == models.StateFailed {
			failed++
		}
	}
	if failed == 0 {
		return CodeOK
	}
	return CodePartialFailure
}
