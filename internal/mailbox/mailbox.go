// Package mailbox implements the file-based fallback delivery channel and
// the read side of per-agent inboxes.
//
// Each delivered message is one file under <root>/<agent_id>/, written
// temp-then-rename so readers never observe a partial file. Filenames
// embed the delivery timestamp and message id, giving uniqueness and
// append-only lexicographic ordering.
package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
)

// Suffix is the extension for delivered mailbox files.
const Suffix = ".msg"

// tmpPrefix marks in-progress writes; readers and the watcher skip these.
const tmpPrefix = ".tmp-"

// Channel is the mailbox delivery channel rooted at a directory.
type Channel struct {
	Root string
}

// NewChannel creates a mailbox channel. Root is created lazily per agent.
func NewChannel(root string) *Channel {
	return &Channel{Root: root}
}

// Name implements channel.Channel.
func (c *Channel) Name() string { return models.ChannelMailbox }

// Attempt implements channel.Channel. The UI target is ignored; the write
// either lands atomically or fails terminally, there is no further
// fallback behind the mailbox.
func (c *Channel) Attempt(ctx context.Context, msg *models.Message, agentID string, _ registry.Target) channel.Outcome {
	if err := c.Write(msg, agentID); err != nil {
		return channel.Failed(channel.ReasonMailboxWrite, err.Error())
	}
	return channel.Succeeded()
}

// Write delivers msg into the agent's inbox directory atomically.
func (c *Channel) Write(msg *models.Message, agentID string) error {
	if agentID == "" {
		return fmt.Errorf("mailbox: agentID is required")
	}
	dir := filepath.Join(c.Root, agentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mailbox: create inbox %s: %w", dir, err)
	}

	name := Filename(msg.ID, time.Now())
	tmp := filepath.Join(dir, tmpPrefix+name)
	final := filepath.Join(dir, name)

	if err := os.WriteFile(tmp, encode(msg, agentID), 0o644); err != nil {
		return fmt.Errorf("mailbox: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("mailbox: commit %s: %w", final, err)
	}
	return nil
}

// Filename builds the unique, time-ordered file name for a message.
func Filename(messageID string, ts time.Time) string {
	return fmt.Sprintf("%s-%s%s", ts.UTC().Format("20060102T150405.000000000"), messageID, Suffix)
}

// encode renders the on-disk record: header fields, blank line, body.
func encode(msg *models.Message, agentID string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Message-Id: %s\n", msg.ID)
	fmt.Fprintf(&b, "From: %s\n", msg.Sender)
	fmt.Fprintf(&b, "To: %s\n", agentID)
	fmt.Fprintf(&b, "Priority: %s\n", msg.Priority)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(msg.Tags, ","))
	fmt.Fprintf(&b, "Date: %s\n", msg.CreatedAt.UTC().Format(time.RFC3339Nano))
	b.WriteString("\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
