package token

import "errors"

var (
	// ErrNoToken means no bearer token was presented.
	ErrNoToken = errors.New("token missing")
	// ErrMalformed covers structural problems: segments, encoding, required claims.
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature means the HMAC did not match or the algorithm is not HS256.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrExpired means now >= exp.
	ErrExpired = errors.New("token expired")
	// ErrNotYetValid means now < nbf.
	ErrNotYetValid = errors.New("token not yet valid")
	// ErrRefreshWindowExpired means the token expired longer ago than the refresh grace.
	ErrRefreshWindowExpired = errors.New("token refresh window expired")
	// ErrMissingSubject rejects claim sets without a positive subject.
	ErrMissingSubject = errors.New("token subject missing")
	// ErrInvalidLifetime rejects claim sets where exp is not after iat.
	ErrInvalidLifetime = errors.New("token expiry must be after issue time")
	// ErrNoKey is returned when the key source has no secret configured.
	ErrNoKey = errors.New("token signing key not configured")
)
