package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopcartlabs/shopcart-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Role    enums.UserRole
	IsStaff bool
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID      `json:"user_id"`
	Role    enums.UserRole `json:"role"`
	IsStaff bool           `json:"is_staff,omitempty"`
	jwt.RegisteredClaims
}

// IsContentManager reports whether the claims grant catalog write access.
func (c *AccessTokenClaims) IsContentManager() bool {
	if c == nil {
		return false
	}
	return c.Role == enums.UserRoleSystemAdmin ||
		c.Role == enums.UserRoleContentManager ||
		c.IsStaff
}
