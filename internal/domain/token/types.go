package token

import "time"

// Config controls token lifetimes.
type Config struct {
	// TTL is the lifetime of a freshly issued token.
	TTL time.Duration
	// RefreshGrace is how long after expiry a token may still be exchanged.
	RefreshGrace time.Duration
	// Issuer is written to the iss claim when non-empty.
	Issuer string
}

// Claims is the typed payload carried inside a token.
type Claims struct {
	Subject   int64
	Name      string
	Email     string
	Issuer    string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// NotBefore is zero when the token carries no nbf claim.
	NotBefore time.Time
}

// Principal is the account a token is minted for.
type Principal struct {
	ID    int64
	Name  string
	Email string
}

// IssuedToken is the result of Issue and Refresh.
type IssuedToken struct {
	Token     string
	Claims    Claims
	ExpiresIn time.Duration
}

// Identity is attached to a request after successful verification.
type Identity struct {
	Subject int64
	Claims  Claims
}
