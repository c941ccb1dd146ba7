package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
)

// Default bounds for one automated attempt.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultLockWait = 2 * time.Second
)

// Automated delivers messages by simulating user input at the agent's UI
// target: focus the agent's pane, then commit the message text at its
// input point. The sequence is serialized per agent so overlapping
// deliveries cannot interleave focus and typing.
type Automated struct {
	auto     Automator
	locks    *lockTable
	timeout  time.Duration
	lockWait time.Duration
}

// AutomatedOpts holds parameters for creating an Automated channel.
type AutomatedOpts struct {
	Automator Automator     // defaults to DefaultAutomator
	Timeout   time.Duration // per-attempt bound, defaults to DefaultTimeout
	LockWait  time.Duration // per-agent lock wait, defaults to DefaultLockWait
}

// NewAutomated creates an Automated channel.
func NewAutomated(opts AutomatedOpts) *Automated {
	auto := opts.Automator
	if auto == nil {
		auto = DefaultAutomator
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	lockWait := opts.LockWait
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Automated{
		auto:     auto,
		locks:    newLockTable(),
		timeout:  timeout,
		lockWait: lockWait,
	}
}

// Name implements Channel.
func (a *Automated) Name() string { return models.ChannelAutomated }

// Attempt implements Channel. Any automation error or timeout maps to a
// ChannelError outcome; an unconfirmed commit is a failure, never a
// partial delivery.
func (a *Automated) Attempt(ctx context.Context, msg *models.Message, agentID string, target registry.Target) Outcome {
	if !a.locks.acquire(agentID, a.lockWait) {
		return Failed(ReasonChannelError, fmt.Sprintf("agent %s lock wait exceeded %s", agentID, a.lockWait))
	}
	defer a.locks.release(agentID)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.auto.Focus(ctx, target.Focus.X, target.Focus.Y); err != nil {
		return Failed(ReasonChannelError, err.Error())
	}

	in := target.InputPoint()
	if err := a.auto.Commit(ctx, in.X, in.Y, renderText(msg)); err != nil {
		return Failed(ReasonChannelError, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return Failed(ReasonChannelError, err.Error())
	}
	return Succeeded()
}

// renderText flattens the message into the single line committed at the
// input point. Newlines collapse to spaces since the commit keystroke is
// the only line terminator the target sees.
func renderText(msg *models.Message) string {
	body := strings.Join(strings.Fields(msg.Body), " ")
	return fmt.Sprintf("[%s] %s", msg.Sender, body)
}
