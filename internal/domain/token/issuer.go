package token

import (
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/taskhub/pkg/util"
)

// Issuer mints tokens for register, login and refresh flows. It is stateless.
type Issuer struct {
	codec *Codec
	cfg   Config
	now   util.Clock
}

// NewIssuer constructs an Issuer. A nil clock falls back to util.NowUTC.
func NewIssuer(codec *Codec, cfg Config, now util.Clock) *Issuer {
	if now == nil {
		now = util.NowUTC
	}
	return &Issuer{codec: codec, cfg: cfg, now: now}
}

// TTL reports the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.cfg.TTL
}

// Issue mints a token for principal.
func (i *Issuer) Issue(principal Principal) (IssuedToken, error) {
	if principal.ID <= 0 {
		return IssuedToken{}, ErrMissingSubject
	}
	return i.sign(principal, i.now().Truncate(time.Second))
}

// Refresh exchanges a correctly signed token for a new one with the same subject.
// Expired tokens are accepted until exp+RefreshGrace. The old token is untouched.
func (i *Issuer) Refresh(raw string) (IssuedToken, error) {
	claims, err := i.codec.Decode(raw)
	if err != nil {
		return IssuedToken{}, err
	}
	now := i.now()
	if now.After(claims.ExpiresAt.Add(i.cfg.RefreshGrace)) {
		return IssuedToken{}, ErrRefreshWindowExpired
	}
	issuedAt := now.Truncate(time.Second)
	if !issuedAt.After(claims.IssuedAt) {
		// iat has second precision; keep it strictly increasing across refreshes.
		issuedAt = claims.IssuedAt.Add(time.Second)
	}
	return i.sign(Principal{ID: claims.Subject, Name: claims.Name, Email: claims.Email}, issuedAt)
}

func (i *Issuer) sign(principal Principal, issuedAt time.Time) (IssuedToken, error) {
	claims := Claims{
		Subject:   principal.ID,
		Name:      principal.Name,
		Email:     principal.Email,
		Issuer:    i.cfg.Issuer,
		ID:        uuid.NewString(),
		IssuedAt:  issuedAt.UTC(),
		ExpiresAt: issuedAt.Add(i.cfg.TTL).UTC(),
	}
	signed, err := i.codec.Encode(claims)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, Claims: claims, ExpiresIn: i.cfg.TTL}, nil
}
