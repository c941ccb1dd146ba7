// Package channel defines the delivery-channel contract and the automated
// UI-input channel. A channel makes exactly one delivery attempt and must
// complete or time out within a bounded duration.
package channel

import (
	"context"

	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
)

// Reason classifies a failed attempt.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonChannelError Reason = "channel_error" // automation failure or timeout, retryable
	ReasonMailboxWrite Reason = "mailbox_write" // mailbox write failed, terminal
)

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Success bool
	Reason  Reason
	Detail  string
}

// Succeeded returns a successful Outcome.
func Succeeded() Outcome {
	return Outcome{Success: true}
}

// Failed returns a failed Outcome with a reason and human-readable detail.
func Failed(reason Reason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// Channel executes one delivery attempt for a message to a single agent.
type Channel interface {
	// Name identifies the channel in delivery records.
	Name() string
	// Attempt delivers msg to the agent. The target carries the agent's
	// UI coordinates where applicable; mailbox-style channels ignore it.
	Attempt(ctx context.Context, msg *models.Message, agentID string, target registry.Target) Outcome
}
