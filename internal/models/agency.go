package models

import (
	"time"

	"github.com/google/uuid"
)

type Agency struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Slug               string     `json:"slug" db:"slug"`
	PrimaryColor       string     `json:"primary_color" db:"primary_color"`
	SecondaryColor     string     `json:"secondary_color" db:"secondary_color"`
	LogoURL            string     `json:"logo_url" db:"logo_url"`
	CustomDomain       string     `json:"custom_domain" db:"custom_domain"`
	OpsShareToken      *string    `json:"-" db:"ops_share_token"`
	OpsShareEnabled    bool       `json:"ops_share_enabled" db:"ops_share_enabled"`
	OpsShareViewCount  int        `json:"ops_share_view_count" db:"ops_share_view_count"`
	OpsShareLastAccess *time.Time `json:"ops_share_last_access" db:"ops_share_last_access"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}
