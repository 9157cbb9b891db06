// Package telemetry re-publishes the device link's event traffic to
// external dashboards over a websocket, guarded by bearer-token auth. It
// is a read side-channel: nothing here can command the machine unless the
// token carries the control scope.
package telemetry

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// Scope is the capability a token grants.
type Scope string

const (
	// ScopeRead allows watching status and event traffic.
	ScopeRead Scope = "read"
	// ScopeControl additionally allows hold/resume real-time commands.
	ScopeControl Scope = "control"
)

// Claims is the JWT payload carried by telemetry tokens.
type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// IssueToken signs a token with the given scope and lifetime.
func IssueToken(secret []byte, scope Scope, ttl time.Duration) (string, error) {
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   core.NewOpaqueID(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", core.Wrap(core.KindCommunication, "telemetry.IssueToken", err)
	}
	return signed, nil
}

// VerifyToken validates signature and expiry and returns the claims.
func VerifyToken(secret []byte, tokenString string) (*Claims, error) {
	const op = "telemetry.VerifyToken"
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, core.New(core.KindCommunication, op, "unexpected signing method", nil)
		}
		return secret, nil
	})
	if err != nil {
		return nil, core.Wrap(core.KindCommunication, op, err)
	}
	if !token.Valid {
		return nil, core.New(core.KindCommunication, op, "invalid token", nil)
	}
	return claims, nil
}

// Allows reports whether a token scope covers the required scope: control
// implies read.
func (s Scope) Allows(required Scope) bool {
	if s == ScopeControl {
		return true
	}
	return s == required
}
