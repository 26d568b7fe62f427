package models

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	AgencyID       uuid.UUID  `json:"agency_id" db:"agency_id"`
	Name           string     `json:"name" db:"name"`
	Slug           string     `json:"slug" db:"slug"`
	APICredential  string     `json:"-" db:"api_credential"` // encrypted blob, never serialized
	PrimaryColor   string     `json:"primary_color" db:"primary_color"`
	SecondaryColor string     `json:"secondary_color" db:"secondary_color"`
	LogoURL        string     `json:"logo_url" db:"logo_url"`
	Active         bool       `json:"active" db:"active"`
	LastSyncedAt   *time.Time `json:"last_synced_at" db:"last_synced_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
