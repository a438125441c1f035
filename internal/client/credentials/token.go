package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the console can read from an access token without
// verifying it. It is for display only; the remote service remains the sole
// judge of validity.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Describe decodes the unverified claims of a JWT access token. ok is false
// for opaque (non-JWT) tokens.
func Describe(accessToken string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return TokenInfo{}, false
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if info.Subject == "" {
		if uid, ok := claims["UserID"].(string); ok {
			info.Subject = uid
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
