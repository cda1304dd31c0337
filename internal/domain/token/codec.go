package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and parses HS256 tokens. It checks structure and signature only;
// time based checks live in Validate so refresh can inspect expired tokens.
type Codec struct {
	keys   KeySource
	parser *jwt.Parser
}

// NewCodec builds a Codec bound to a key source.
func NewCodec(keys KeySource) *Codec {
	return &Codec{
		keys: keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}
}

// Encode signs claims into a compact token.
func (c *Codec) Encode(claims Claims) (string, error) {
	if claims.Subject <= 0 {
		return "", ErrMissingSubject
	}
	if claims.ExpiresAt.IsZero() || !claims.ExpiresAt.After(claims.IssuedAt) {
		return "", ErrInvalidLifetime
	}
	key, err := c.keys.Key()
	if err != nil {
		return "", err
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, toWire(claims)).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the typed claims. Claims are only
// inspected once the signature has been accepted.
func (c *Codec) Decode(raw string) (Claims, error) {
	key, err := c.keys.Key()
	if err != nil {
		return Claims{}, err
	}
	var wire wireClaims
	_, err = c.parser.ParseWithClaims(raw, &wire, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	return wire.claims()
}

// Validate applies the time based checks to already decoded claims.
func Validate(claims Claims, now time.Time) error {
	if !now.Before(claims.ExpiresAt) {
		return ErrExpired
	}
	if !claims.NotBefore.IsZero() && now.Before(claims.NotBefore) {
		return ErrNotYetValid
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}

// wireClaims is the JSON shape of the payload segment. sub is accepted either as
// a number or a numeric string, since both appear in tokens minted elsewhere.
type wireClaims struct {
	Subject   json.Number      `json:"sub,omitempty"`
	Name      string           `json:"name,omitempty"`
	Email     string           `json:"email,omitempty"`
	Issuer    string           `json:"iss,omitempty"`
	ID        string           `json:"jti,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
	NotBefore *jwt.NumericDate `json:"nbf,omitempty"`
}

func toWire(c Claims) wireClaims {
	wire := wireClaims{
		Subject:   json.Number(strconv.FormatInt(c.Subject, 10)),
		Name:      c.Name,
		Email:     c.Email,
		Issuer:    c.Issuer,
		ID:        c.ID,
		IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	}
	if !c.NotBefore.IsZero() {
		wire.NotBefore = jwt.NewNumericDate(c.NotBefore)
	}
	return wire
}

func (w wireClaims) claims() (Claims, error) {
	subject, err := w.Subject.Int64()
	if err != nil || subject <= 0 {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, ErrMissingSubject)
	}
	if w.ExpiresAt == nil || w.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: iat and exp are required", ErrMalformed)
	}
	claims := Claims{
		Subject:   subject,
		Name:      w.Name,
		Email:     w.Email,
		Issuer:    w.Issuer,
		ID:        w.ID,
		IssuedAt:  w.IssuedAt.Time.UTC(),
		ExpiresAt: w.ExpiresAt.Time.UTC(),
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, ErrInvalidLifetime)
	}
	if w.NotBefore != nil {
		claims.NotBefore = w.NotBefore.Time.UTC()
	}
	return claims, nil
}

func (w wireClaims) GetExpirationTime() (*jwt.NumericDate, error) { return w.ExpiresAt, nil }
func (w wireClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return w.IssuedAt, nil }
func (w wireClaims) GetNotBefore() (*jwt.NumericDate, error)      { return w.NotBefore, nil }
func (w wireClaims) GetIssuer() (string, error)                   { return w.Issuer, nil }
func (w wireClaims) GetSubject() (string, error)                  { return w.Subject.String(), nil }
func (w wireClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
