package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopperssay/backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      int64
	Email       string
	AccountType enums.AccountType
	IsAdmin     bool
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      int64             `json:"user_id"`
	Email       string            `json:"email"`
	AccountType enums.AccountType `json:"account_type"`
	IsAdmin     bool              `json:"is_admin"`
	jwt.RegisteredClaims
}
