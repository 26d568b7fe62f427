package models

import (
	"time"

	"github.com/google/uuid"
)

// Metric entity kinds.
const (
	MetricEntityCampaign    = "campaign"
	MetricEntityFlow        = "flow"
	MetricEntityFlowMessage = "flow_message"
)

// MetricSnapshot is a time-bounded aggregate attached to a campaign, flow or
// flow message. One row exists per (client, entity, timeframe); sync updates
// the row for the current window rather than appending duplicates.
type MetricSnapshot struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ClientID    uuid.UUID `json:"client_id" db:"client_id"`
	EntityKind  string    `json:"entity_kind" db:"entity_kind"`
	EntityID    string    `json:"entity_id" db:"entity_id"` // the platform's own ID
	Timeframe   string    `json:"timeframe" db:"timeframe"`
	WindowStart time.Time `json:"window_start" db:"window_start"`
	WindowEnd   time.Time `json:"window_end" db:"window_end"`
	Delivered   int64     `json:"delivered" db:"delivered"`
	OpenRate    float64   `json:"open_rate" db:"open_rate"`
	ClickRate   float64   `json:"click_rate" db:"click_rate"`
	Revenue     float64   `json:"revenue" db:"revenue"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
