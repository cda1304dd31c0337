package auth

import "time"

// User represents a persisted account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenInfo is a readable summary of the claims inside a freshly issued token.
type TokenInfo struct {
	Subject   int64  `json:"subject"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

// RegisterResponse is returned with 201 after account creation.
type RegisterResponse struct {
	Token     string    `json:"token"`
	User      UserView  `json:"user"`
	TokenInfo TokenInfo `json:"token_info"`
}

// TokenResponse is returned by login and refresh. ExpiresIn is in seconds.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// EventType names an entry in the auth event log.
type EventType string

const (
	EventRegistered EventType = "registered"
	EventLoggedIn   EventType = "logged_in"
	EventRefreshed  EventType = "token_refreshed"
	EventLoggedOut  EventType = "logged_out"
)

// Event is an audit record of an authentication action.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	TokenID    string    `json:"token_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
