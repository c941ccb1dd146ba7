package mailbox

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
)

func newTestMessage(id, body string) *models.Message {
	return &models.Message{
		ID:        id,
		Sender:    "orchestrator",
		Body:      body,
		Priority:  models.PriorityHigh,
		Tags:      []string{"deploy", "alerts"},
		CreatedAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	c := NewChannel(t.TempDir())
	msg := newTestMessage("msg-1", "restart the indexer\nwhen idle")

	if err := c.Write(msg, "agent-3"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := c.List("agent-3")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	e := entries[0]
	if e.MessageID != "msg-1" {
		t.Errorf("MessageID = %q", e.MessageID)
	}
	if e.From != "orchestrator" {
		t.Errorf("From = %q", e.From)
	}
	if e.To != "agent-3" {
		t.Errorf("To = %q", e.To)
	}
	if e.Priority != models.PriorityHigh {
		t.Errorf("Priority = %v", e.Priority)
	}
	if !reflect.DeepEqual(e.Tags, []string{"deploy", "alerts"}) {
		t.Errorf("Tags = %v", e.Tags)
	}
	if !e.Date.Equal(msg.CreatedAt) {
		t.Errorf("Date = %v, want %v", e.Date, msg.CreatedAt)
	}
	if e.Body != "restart the indexer\nwhen idle" {
		t.Errorf("Body = %q", e.Body)
	}
}

func TestWrite_UniqueFilenames(t *testing.T) {
	c := NewChannel(t.TempDir())
	for i, id := range []string{"msg-a", "msg-b", "msg-c"} {
		msg := newTestMessage(id, "body")
		if err := c.Write(msg, "agent-1"); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	entries, err := c.List("agent-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
}

func TestWrite_ConcurrentSameAgent(t *testing.T) {
	c := NewChannel(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := newTestMessage("msg-"+strings.Repeat("x", i+1), "body")
			if err := c.Write(msg, "agent-1"); err != nil {
				t.Errorf("Write: %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := c.List("agent-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 8 {
		t.Errorf("entries = %d, want 8", len(entries))
	}
}

func TestList_SkipsTempAndForeignFiles(t *testing.T) {
	c := NewChannel(t.TempDir())
	msg := newTestMessage("msg-1", "body")
	if err := c.Write(msg, "agent-1"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dir := filepath.Join(c.Root, "agent-1")
	os.WriteFile(filepath.Join(dir, tmpPrefix+"partial.msg"), []byte("incomplete"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a message"), 0o644)

	entries, err := c.List("agent-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestList_MissingInbox(t *testing.T) {
	c := NewChannel(t.TempDir())
	entries, err := c.List("nobody")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil", entries)
	}
}

func TestAttempt_MapsWriteFailure(t *testing.T) {
	// Root is a file, so the per-agent MkdirAll fails.
	rootFile := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(rootFile, []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewChannel(rootFile)

	out := c.Attempt(context.Background(), newTestMessage("msg-1", "body"), "agent-1", registry.Target{})
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Reason != "mailbox_write" {
		t.Errorf("reason = %q", out.Reason)
	}
}

func TestFilename_Ordering(t *testing.T) {
	t1 := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)
	if Filename("b", t1) >= Filename("a", t2) {
		t.Error("earlier delivery should sort first regardless of id")
	}
}

func TestWatch_SeesNewDeliveries(t *testing.T) {
	c := NewChannel(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Entry, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, "agent-1", func(e *Entry) {
			select {
			case got <- e:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond) // let the watcher attach
	if err := c.Write(newTestMessage("msg-w", "watched"), "agent-1"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case e := <-got:
		if e.MessageID != "msg-w" {
			t.Errorf("MessageID = %q", e.MessageID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the delivery")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
