package token

import (
	"context"
	"errors"
	"strings"

	"github.com/yanqian/taskhub/pkg/util"
)

// Outcome is the terminal state of a verification attempt.
type Outcome string

const (
	OutcomeValid        Outcome = "valid"
	OutcomeNoToken      Outcome = "no_token"
	OutcomeMalformed    Outcome = "malformed"
	OutcomeBadSignature Outcome = "bad_signature"
	OutcomeExpired      Outcome = "expired"
	OutcomeNotYetValid  Outcome = "not_yet_valid"
)

// Verifier authenticates a presented token from scratch on every call.
type Verifier struct {
	codec *Codec
	now   util.Clock
}

// NewVerifier constructs a Verifier. A nil clock falls back to util.NowUTC.
func NewVerifier(codec *Codec, now util.Clock) *Verifier {
	if now == nil {
		now = util.NowUTC
	}
	return &Verifier{codec: codec, now: now}
}

// Verify decodes raw and checks its time window.
func (v *Verifier) Verify(raw string) (Identity, Outcome, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, OutcomeNoToken, ErrNoToken
	}
	claims, err := v.codec.Decode(raw)
	if err != nil {
		return Identity{}, OutcomeOf(err), err
	}
	if err := Validate(claims, v.now()); err != nil {
		return Identity{}, OutcomeOf(err), err
	}
	return Identity{Subject: claims.Subject, Claims: claims}, OutcomeValid, nil
}

// OutcomeOf maps a verification error to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeValid
	case errors.Is(err, ErrNoToken):
		return OutcomeNoToken
	case errors.Is(err, ErrBadSignature):
		return OutcomeBadSignature
	case errors.Is(err, ErrExpired):
		return OutcomeExpired
	case errors.Is(err, ErrNotYetValid):
		return OutcomeNotYetValid
	default:
		return OutcomeMalformed
	}
}

type identityKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the verified identity stored on ctx.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
