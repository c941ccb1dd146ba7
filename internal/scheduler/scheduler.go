// Package scheduler orders pending sends into priority lanes and runs a
// bounded worker pool over them. Dequeue order is strict lane priority
// (URGENT, HIGH, NORMAL), FIFO within a lane.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/router"
)

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 4

// Job is one per-recipient delivery unit. Broadcast fan-out produces N
// independent jobs sharing the same message.
type Job struct {
	Message *models.Message
	AgentID string
	// Result receives the terminal outcome; buffered so workers never
	// block on a caller that stopped waiting.
	Result chan router.Result
}

// NewJob pairs a message with one recipient.
func NewJob(msg *models.Message, agentID string) *Job {
	return &Job{
		Message: msg,
		AgentID: agentID,
		Result:  make(chan router.Result, 1),
	}
}

const laneCount = 3

// Queue holds pending jobs in three priority lanes.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lanes  [laneCount][]*Job
	closed bool
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a job to its message's priority lane.
func (q *Queue) Enqueue(j *Job) error {
	if j == nil || j.Message == nil {
		return fmt.Errorf("scheduler: job message is required")
	}
	lane := laneFor(j.Message.Priority)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("scheduler: queue is closed")
	}
	q.lanes[lane] = append(q.lanes[lane], j)
	q.cond.Signal()
	return nil
}

// Dequeue blocks until a job is available or the queue is closed and
// drained. The highest-priority non-empty lane always wins.
func (q *Queue) Dequeue() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		for lane := 0; lane < laneCount; lane++ {
			if len(q.lanes[lane]) > 0 {
				j := q.lanes[lane][0]
				q.lanes[lane] = q.lanes[lane][1:]
				return j, true
			}
		}
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}
}

// Close stops accepting jobs. Workers drain what remains, then exit.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of pending jobs across all lanes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, lane := range q.lanes {
		n += len(lane)
	}
	return n
}

func laneFor(p models.Priority) int {
	switch p {
	case models.PriorityUrgent:
		return 0
	case models.PriorityHigh:
		return 1
	default:
		return 2
	}
}

// Handler processes one dequeued job and returns its terminal result.
type Handler func(ctx context.Context, job *Job) router.Result

// Pool is a bounded set of workers draining a Queue.
type Pool struct {
	queue   *Queue
	handler Handler
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a Pool. workers defaults to DefaultWorkers when
// non-positive.
func NewPool(workers int, queue *Queue, handler Handler) (*Pool, error) {
	if queue == nil {
		return nil, fmt.Errorf("scheduler: queue is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("scheduler: handler is required")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{queue: queue, handler: handler, workers: workers}, nil
}

// Start launches the workers. Each worker loops until the queue is closed
// and drained.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				job, ok := p.queue.Dequeue()
				if !ok {
					return
				}
				job.Result <- p.handler(ctx, job)
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.queue.Close()
	p.wg.Wait()
}
