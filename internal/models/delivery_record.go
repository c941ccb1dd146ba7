package models

import "time"

// Channel names recorded per delivery attempt.
const (
	ChannelAutomated = "automated"
	ChannelMailbox   = "mailbox"
)

// DeliveryRecord is one channel attempt for one (message, recipient) pair.
// Records are append-only; Final marks the attempt that produced the
// terminal per-recipient outcome.
type DeliveryRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	MessageID string `gorm:"size:64;not null;index"`
	AgentID   string `gorm:"size:64;not null;index"`
	Channel   string `gorm:"size:16;not null"`
	Success   bool
	Reason    string `gorm:"size:64"`
	Detail    string `gorm:"size:512"`
	Final     bool   `gorm:"index"`
	CreatedAt time.Time
}
