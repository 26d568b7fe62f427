package models

import (
	"time"

	"github.com/google/uuid"
)

type Flow struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ClientID    uuid.UUID `json:"client_id" db:"client_id"`
	KlaviyoID   string    `json:"klaviyo_id" db:"klaviyo_id"`
	Name        string    `json:"name" db:"name"`
	Status      string    `json:"status" db:"status"`
	TriggerType string    `json:"trigger_type" db:"trigger_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FlowMessage is a single email or SMS inside a flow.
type FlowMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ClientID  uuid.UUID `json:"client_id" db:"client_id"`
	FlowID    uuid.UUID `json:"flow_id" db:"flow_id"`
	KlaviyoID string    `json:"klaviyo_id" db:"klaviyo_id"`
	Name      string    `json:"name" db:"name"`
	Channel   string    `json:"channel" db:"channel"`
	Subject   string    `json:"subject" db:"subject"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
