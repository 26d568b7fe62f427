package models

import (
	"time"

	"github.com/google/uuid"
)

type OpsForm struct {
	ID        uuid.UUID              `json:"id" db:"id"`
	ClientID  uuid.UUID              `json:"client_id" db:"client_id"`
	FormType  string                 `json:"form_type" db:"form_type"`
	Status    string                 `json:"status" db:"status"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}
