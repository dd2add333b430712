package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the full claim set of an issued session token. The
// license key rides along so the revocation list can be consulted without
// a database read on authenticated requests.
type SessionClaims struct {
	UserID     string `json:"uid"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	DeviceID   string `json:"did"`
	LicenseKey string `json:"lic"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, userID string, email string, role string, deviceID string, licenseKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:     userID,
		Email:      email,
		Role:       role,
		DeviceID:   deviceID,
		LicenseKey: licenseKey,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseToken(tokenStr string, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
