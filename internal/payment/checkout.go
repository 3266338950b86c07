// Package payment covers the boundary with the hosted third-party checkout
// page. There is no verification leg against the provider; the return
// parameters are exchanged for a short-lived signed grant, which is the
// documented trust gap of the storefront.
package payment

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/callstream/backend/internal/models"
)

var ErrInvalidReturn = fmt.Errorf("invalid payment return")

// grantSubject marks grant tokens so they can never pass for admin tokens
// signed with the same secret, and vice versa.
const grantSubject = "call-grant"

// Checkout builds plan-specific URLs for the hosted payment page.
type Checkout struct {
	baseURL string
}

func NewCheckout(baseURL string) *Checkout {
	return &Checkout{baseURL: baseURL}
}

// URL returns the hosted checkout address for a plan duration.
func (c *Checkout) URL(minutes int) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	q := u.Query()
	q.Set("duration", strconv.Itoa(minutes))
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseReturn validates the query parameters the checkout page redirects
// back with and yields the paid plan duration.
func ParseReturn(payment, duration string) (int, error) {
	if payment != "success" {
		return 0, fmt.Errorf("payment status %q: %w", payment, ErrInvalidReturn)
	}
	minutes, err := strconv.Atoi(duration)
	if err != nil || !models.IsPlanDuration(minutes) {
		return 0, fmt.Errorf("duration %q: %w", duration, ErrInvalidReturn)
	}
	return minutes, nil
}

// GrantClaims scope a paid checkout return to one plan duration.
type GrantClaims struct {
	Minutes int `json:"minutes"`
	jwt.RegisteredClaims
}

// GrantService issues and validates the short-lived call grants handed out
// after a checkout return.
type GrantService struct {
	secret []byte
	ttl    time.Duration
}

func NewGrantService(secret string, ttl time.Duration) *GrantService {
	return &GrantService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a grant for one call of the given plan duration.
func (g *GrantService) Issue(minutes int) (string, error) {
	now := time.Now()
	claims := GrantClaims{
		Minutes: minutes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grantSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Validate checks a grant and confirms it covers the requested duration.
func (g *GrantService) Validate(tokenString string, minutes int) error {
	token, err := jwt.ParseWithClaims(tokenString, &GrantClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse grant: %w", err)
	}

	claims, ok := token.Claims.(*GrantClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid grant")
	}
	if claims.Subject != grantSubject {
		return fmt.Errorf("not a call grant")
	}
	if claims.Minutes != minutes {
		return fmt.Errorf("grant covers %d minutes, not %d", claims.Minutes, minutes)
	}
	return nil
}
