package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAgencyAdmin = "agency_admin"
	RoleClientUser  = "client_user"
)

// UserProfile associates an identity-provider account with an agency or
// client. The ID is the identity provider's account ID; deleting a profile
// cascades to the provider account.
type UserProfile struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	AgencyID  *uuid.UUID `json:"agency_id" db:"agency_id"`
	ClientID  *uuid.UUID `json:"client_id" db:"client_id"`
	Email     string     `json:"email" db:"email"`
	Role      string     `json:"role" db:"role"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
