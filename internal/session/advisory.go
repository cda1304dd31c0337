package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdvisoryStatus is the client's view of a token it cannot verify. The
// signature is never checked here; the services remain the authority.
type AdvisoryStatus struct {
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Inspect decodes raw without verifying its signature and checks that it
// carries an email and an exp in the future.
func Inspect(raw string, now time.Time) AdvisoryStatus {
	if raw == "" {
		return AdvisoryStatus{Reason: "no token"}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return AdvisoryStatus{Reason: "undecodable token"}
	}
	email, _ := claims["email"].(string)
	exp, err := claims.GetExpirationTime()
	if email == "" || err != nil || exp == nil {
		return AdvisoryStatus{Reason: "missing email or exp", Email: email}
	}
	status := AdvisoryStatus{Email: email, ExpiresAt: exp.Time.UTC()}
	if !now.Before(exp.Time) {
		status.Reason = "expired"
		return status
	}
	status.Valid = true
	return status
}
