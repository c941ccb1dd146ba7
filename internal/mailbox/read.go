package mailbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/switchboard/internal/models"
)

// Entry is one parsed mailbox file.
type Entry struct {
	MessageID string
	From      string
	To        string
	Priority  models.Priority
	Tags      []string
	Date      time.Time
	Body      string
	Path      string
}

// Read parses a single mailbox file.
func Read(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mailbox: read %s: %w", path, err)
	}

	header, body, found := strings.Cut(string(data), "\n\n")
	if !found {
		return nil, fmt.Errorf("mailbox: %s: missing header separator", path)
	}

	e := &Entry{Body: body, Path: path}
	for _, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("mailbox: %s: malformed header line %q", path, line)
		}
		switch key {
		case "Message-Id":
			e.MessageID = value
		case "From":
			e.From = value
		case "To":
			e.To = value
		case "Priority":
			e.Priority = models.ParsePriority(value)
		case "Tags":
			if value != "" {
				e.Tags = strings.Split(value, ",")
			}
		case "Date":
			ts, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return nil, fmt.Errorf("mailbox: %s: bad date %q: %w", path, value, err)
			}
			e.Date = ts
		}
	}
	if e.MessageID == "" {
		return nil, fmt.Errorf("mailbox: %s: missing Message-Id header", path)
	}
	return e, nil
}

// List returns all delivered entries in an agent's inbox, oldest first.
// A missing inbox directory is an empty inbox, not an error.
func (c *Channel) List(agentID string) ([]*Entry, error) {
	if agentID == "" {
		return nil, fmt.Errorf("mailbox: agentID is required")
	}
	dir := filepath.Join(c.Root, agentID)
	names, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mailbox: list %s: %w", dir, err)
	}

	var paths []string
	for _, d := range names {
		if d.IsDir() || !strings.HasSuffix(d.Name(), Suffix) || strings.HasPrefix(d.Name(), tmpPrefix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, d.Name()))
	}
	sort.Strings(paths) // filename prefix is the delivery timestamp

	entries := make([]*Entry, 0, len(paths))
	for _, p := range paths {
		e, err := Read(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
