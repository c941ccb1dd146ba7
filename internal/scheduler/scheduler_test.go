package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/router"
)

func job(id string, p models.Priority) *Job {
	return NewJob(&models.Message{ID: id, Sender: "s", Body: "b", Priority: p}, "agent-1")
}

func TestQueue_LaneOrder(t *testing.T) {
	q := NewQueue()
	// Submit out of priority order.
	q.Enqueue(job("normal", models.PriorityNormal))
	q.Enqueue(job("urgent", models.PriorityUrgent))
	q.Enqueue(job("high", models.PriorityHigh))

	want := []string{"urgent", "high", "normal"}
	for _, id := range want {
		j, ok := q.Dequeue()
		if !ok {
			t.Fatal("queue closed early")
		}
		if j.Message.ID != id {
			t.Errorf("dequeued %q, want %q", j.Message.ID, id)
		}
	}
}

func TestQueue_FIFOWithinLane(t *testing.T) {
	q := NewQueue()
	q.Enqueue(job("first", models.PriorityNormal))
	q.Enqueue(job("second", models.PriorityNormal))

	j, _ := q.Dequeue()
	if j.Message.ID != "first" {
		t.Errorf("dequeued %q, want first", j.Message.ID)
	}
}

func TestQueue_CloseDrains(t *testing.T) {
	q := NewQueue()
	q.Enqueue(job("pending", models.PriorityNormal))
	q.Close()

	if _, ok := q.Dequeue(); !ok {
		t.Fatal("pending job should still drain after close")
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("drained closed queue should report done")
	}
	if err := q.Enqueue(job("late", models.PriorityNormal)); err == nil {
		t.Fatal("enqueue after close should fail")
	}
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewQueue()
	got := make(chan *Job, 1)
	go func() {
		j, _ := q.Dequeue()
		got <- j
	}()

	time.Sleep(30 * time.Millisecond)
	q.Enqueue(job("late-arrival", models.PriorityHigh))

	select {
	case j := <-got:
		if j.Message.ID != "late-arrival" {
			t.Errorf("dequeued %q", j.Message.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dequeue never woke up")
	}
}

func TestPool_ProcessesAllJobs(t *testing.T) {
	q := NewQueue()
	var mu sync.Mutex
	handled := make(map[string]bool)

	pool, err := NewPool(3, q, func(ctx context.Context, j *Job) router.Result {
		mu.Lock()
		handled[j.Message.ID] = true
		mu.Unlock()
		return router.Result{MessageID: j.Message.ID, AgentID: j.AgentID, State: models.StateDelivered}
	})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	pool.Start(context.Background())

	jobs := []*Job{
		job("a", models.PriorityNormal),
		job("b", models.PriorityUrgent),
		job("c", models.PriorityHigh),
	}
	for _, j := range jobs {
		if err := q.Enqueue(j); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	for _, j := range jobs {
		select {
		case res := <-j.Result:
			if res.State != models.StateDelivered {
				t.Errorf("job %s state = %v", j.Message.ID, res.State)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("job %s never completed", j.Message.ID)
		}
	}

	pool.Stop()
	if len(handled) != 3 {
		t.Errorf("handled = %d, want 3", len(handled))
	}
}

func TestNewPool_Validation(t *testing.T) {
	if _, err := NewPool(1, nil, nil); err == nil {
		t.Fatal("expected error for nil queue")
	}
	if _, err := NewPool(1, NewQueue(), nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
