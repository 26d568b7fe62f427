package common

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	AgencyIDKey contextKey = "agency_id"
	RoleKey     contextKey = "role"
)

// GetUserIDFromContext extracts the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetAgencyIDFromContext extracts the tenant agency ID from the request context.
func GetAgencyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	agencyID, ok := ctx.Value(AgencyIDKey).(uuid.UUID)
	return agencyID, ok
}

// WithIdentity attaches the authenticated user and agency to the context.
func WithIdentity(ctx context.Context, userID, agencyID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, AgencyIDKey, agencyID)
}

// ValidateUUID parses and validates a UUID path or query parameter.
func ValidateUUID(idStr, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s has invalid UUID format", fieldName)
	}
	return id, nil
}

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateSlug validates slug parameters: lowercase letters, digits and hyphens.
func ValidateSlug(slug, fieldName string) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%s may only contain lowercase letters, digits and hyphens", fieldName)
		}
	}
	return nil
}

// Timeframes accepted by metric queries and analytics proxy calls,
// mapped to their lookback duration.
var Timeframes = map[string]time.Duration{
	"last-7-days":   7 * 24 * time.Hour,
	"last-30-days":  30 * 24 * time.Hour,
	"last-90-days":  90 * 24 * time.Hour,
	"last-365-days": 365 * 24 * time.Hour,
}

// ValidateTimeframe checks a timeframe key and returns its window bounds
// ending now.
func ValidateTimeframe(timeframe string) (start, end time.Time, err error) {
	lookback, ok := Timeframes[timeframe]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("timeframe must be one of: last-7-days, last-30-days, last-90-days, last-365-days")
	}
	end = time.Now().UTC()
	return end.Add(-lookback), end, nil
}

// ValidatePaginationParams clamps pagination parameters to sane bounds.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// SafeString safely dereferences string pointer fields.
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
