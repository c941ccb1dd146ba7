package dashboard

import (
	"time"

	"github.com/zulandar/switchboard/internal/models"
	"gorm.io/gorm"
)

// DeliveryRow holds delivery-record data for display.
type DeliveryRow struct {
	MessageID string    `json:"message_id"`
	AgentID   string    `json:"agent_id"`
	Channel   string    `json:"channel"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
	Final     bool      `json:"final"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentDeliveries returns the newest delivery records, optionally
// filtered to one agent.
func RecentDeliveries(db *gorm.DB, agentID string, limit int) ([]DeliveryRow, error) {
	q := db.Model(&models.DeliveryRecord{}).Order("created_at DESC, id DESC").Limit(limit)
	if agentID != "" {
		q = q.Where("agent_id = ?", agentID)
	}

	var records []models.DeliveryRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	rows := make([]DeliveryRow, len(records))
	for i, r := range records {
		rows[i] = DeliveryRow{
			MessageID: r.MessageID,
			AgentID:   r.AgentID,
			Channel:   r.Channel,
			Success:   r.Success,
			Reason:    r.Reason,
			Final:     r.Final,
			CreatedAt: r.CreatedAt,
		}
	}
	return rows, nil
}
