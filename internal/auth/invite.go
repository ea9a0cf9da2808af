package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InviteClaims is the payload of a signed co-organizer invite link.
type InviteClaims struct {
	EventID int64  `json:"event_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// NewInviteToken signs an invite for email to help organize the given event.
func NewInviteToken(secret []byte, eventID int64, email string, ttl time.Duration) (string, error) {
	claims := InviteClaims{
		EventID: eventID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign invite: %w", err)
	}
	return signed, nil
}

// ParseInviteToken validates a token and returns its claims.
func ParseInviteToken(secret []byte, tokenString string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InviteClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse invite: %w", err)
	}
	claims, ok := token.Claims.(*InviteClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid invite token")
	}
	return claims, nil
}
