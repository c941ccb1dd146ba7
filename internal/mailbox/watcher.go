package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch follows an agent's inbox directory and invokes handler with each
// newly delivered entry until ctx is cancelled. The directory is created
// if it does not exist yet. Only completed writes are reported: the
// channel's temp-then-rename protocol means a rename/create of a *.msg
// file is always a whole message.
func (c *Channel) Watch(ctx context.Context, agentID string, handler func(*Entry)) error {
	if agentID == "" {
		return fmt.Errorf("mailbox: agentID is required")
	}
	if handler == nil {
		return fmt.Errorf("mailbox: handler is required")
	}

	dir := filepath.Join(c.Root, agentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mailbox: create inbox %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("mailbox: watch %s: %w", dir, err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("mailbox: watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, Suffix) || strings.HasPrefix(name, tmpPrefix) {
				continue
			}
			entry, err := Read(event.Name)
			if err != nil {
				// The rename target may race a concurrent reader; skip
				// anything that doesn't parse as a complete record.
				continue
			}
			handler(entry)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("mailbox: watch %s: %w", dir, err)
		}
	}
}
