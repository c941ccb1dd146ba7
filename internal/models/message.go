package models

import "time"

// Priority orders messages into scheduler lanes. Urgent drains first.
type Priority int

const (
	PriorityUrgent Priority = iota
	PriorityHigh
	PriorityNormal
)

// String returns the canonical upper-case name used in mailbox headers
// and CLI output.
func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "URGENT"
	case PriorityHigh:
		return "HIGH"
	default:
		return "NORMAL"
	}
}

// ParsePriority maps a case-insensitive priority name to a Priority.
// Unknown or empty names default to NORMAL.
func ParsePriority(s string) Priority {
	switch s {
	case "URGENT", "urgent", "Urgent":
		return PriorityUrgent
	case "HIGH", "high", "High":
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// MessageState tracks a message through the delivery pipeline.
type MessageState string

const (
	StateCreated    MessageState = "created"
	StateQueued     MessageState = "queued"
	StateDelivering MessageState = "delivering"
	StateDelivered  MessageState = "delivered"
	StateFailed     MessageState = "failed"
	StateDuplicate  MessageState = "duplicate"
)

// Message is a single submission. The body is immutable after creation;
// only the attempt counter changes as the router works through channels.
// Messages live in memory for the duration of delivery; the mailbox file
// is the durable record when that channel is used.
type Message struct {
	ID             string
	Sender         string
	Recipients     []string
	Body           string
	Priority       Priority
	Tags           []string
	CreatedAt      time.Time
	UrgentOverride bool // bypasses the dedup guard for operator resends
	Attempts       int
}
