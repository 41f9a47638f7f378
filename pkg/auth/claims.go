package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims are the typed claims embedded in every access token.
type AccessTokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	IsStaff bool      `json:"is_staff"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input used to mint an access token.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	IsStaff bool
	JTI     string
}
