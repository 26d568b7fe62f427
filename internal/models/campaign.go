package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign mirrors a Klaviyo campaign for historical reporting. Rows are
// refreshed idempotently on each sync, keyed by the platform's own ID.
type Campaign struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ClientID  uuid.UUID  `json:"client_id" db:"client_id"`
	KlaviyoID string     `json:"klaviyo_id" db:"klaviyo_id"`
	Name      string     `json:"name" db:"name"`
	Status    string     `json:"status" db:"status"`
	Channel   string     `json:"channel" db:"channel"` // email or sms
	SendTime  *time.Time `json:"send_time" db:"send_time"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
