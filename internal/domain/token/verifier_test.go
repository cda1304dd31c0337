package token

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifier_Outcomes(t *testing.T) {
	clock := &manualClock{t: baseTime}
	codec := newTestCodec()
	verifier := NewVerifier(codec, clock.Now)

	valid, err := codec.Encode(sampleClaims(4))
	require.NoError(t, err)

	id, outcome, err := verifier.Verify(valid)
	require.NoError(t, err)
	require.Equal(t, OutcomeValid, outcome)
	require.Equal(t, int64(4), id.Subject)
	require.Equal(t, "ana@example.com", id.Claims.Email)

	_, outcome, err = verifier.Verify("  ")
	require.ErrorIs(t, err, ErrNoToken)
	require.Equal(t, OutcomeNoToken, outcome)

	_, outcome, err = verifier.Verify("abc.def")
	require.ErrorIs(t, err, ErrMalformed)
	require.Equal(t, OutcomeMalformed, outcome)

	forged, err := NewCodec(NewStaticKey("other")).Encode(sampleClaims(4))
	require.NoError(t, err)
	_, outcome, err = verifier.Verify(forged)
	require.ErrorIs(t, err, ErrBadSignature)
	require.Equal(t, OutcomeBadSignature, outcome)

	future := sampleClaims(4)
	future.NotBefore = baseTime.Add(time.Minute)
	notYet, err := codec.Encode(future)
	require.NoError(t, err)
	_, outcome, err = verifier.Verify(notYet)
	require.ErrorIs(t, err, ErrNotYetValid)
	require.Equal(t, OutcomeNotYetValid, outcome)
}

func TestVerifier_ExpiredTokenKeepsValidSignature(t *testing.T) {
	clock := &manualClock{t: baseTime}
	codec := newTestCodec()
	verifier := NewVerifier(codec, clock.Now)

	raw, err := codec.Encode(sampleClaims(4))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, outcome, err := verifier.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
	require.Equal(t, OutcomeExpired, outcome)

	_, err = codec.Decode(raw)
	require.NoError(t, err)
}

func TestOutcomeOf(t *testing.T) {
	require.Equal(t, OutcomeValid, OutcomeOf(nil))
	require.Equal(t, OutcomeExpired, OutcomeOf(fmt.Errorf("wrapped: %w", ErrExpired)))
	require.Equal(t, OutcomeMalformed, OutcomeOf(errors.New("anything else")))
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	require.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{Subject: 3})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	require.Equal(t, int64(3), id.Subject)
}
