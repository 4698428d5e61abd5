package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin represents the authenticated administrator resolved from a token
type Admin struct {
	Username string `json:"username"`
}

// InitRequest represents the request payload for one-time admin setup
type InitRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the request payload for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the response payload for admin login
type LoginResponse struct {
	Token string `json:"token"`
}

// AccountUpdateRequest represents the request payload for credential update
type AccountUpdateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenClaims represents the JWT token claims
type TokenClaims struct {
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.Username, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
