package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by an admin token. SessionID references the persisted
// admin session; deleting that row on logout invalidates the token early.
type Claims struct {
	SessionID uuid.UUID `json:"session_id"`
	Username  string    `json:"username"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret      []byte
	expiryHours int
}

func NewJWTService(secret string, expiryHours int) *JWTService {
	return &JWTService{
		secret:      []byte(secret),
		expiryHours: expiryHours,
	}
}

// Expiry returns the token lifetime.
func (s *JWTService) Expiry() time.Duration {
	return time.Duration(s.expiryHours) * time.Hour
}

// GenerateToken creates a signed token bound to a session
func (s *JWTService) GenerateToken(sessionID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Expiry())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a token, returning its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	// Other token kinds share the signing scheme but never reference a
	// session row; only real admin tokens carry one.
	if claims.SessionID == uuid.Nil {
		return nil, fmt.Errorf("token carries no session")
	}

	return claims, nil
}
