package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the caller identity extracted from a bearer token. The
// organization and user ids feed rate limiting and feature flag evaluation.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	OrgID  uuid.UUID `json:"org_id"`
	Email  string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}
