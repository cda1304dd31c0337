package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "codec-test-secret"

var baseTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestCodec() *Codec {
	return NewCodec(NewStaticKey(testSecret))
}

func sampleClaims(subject int64) Claims {
	return Claims{
		Subject:   subject,
		Name:      "Ana",
		Email:     "ana@example.com",
		Issuer:    "taskhub-auth",
		ID:        "jti-1",
		IssuedAt:  baseTime,
		ExpiresAt: baseTime.Add(time.Hour),
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec()
	for _, subject := range []int64{1, 42, 1 << 40} {
		claims := sampleClaims(subject)
		claims.NotBefore = baseTime

		raw, err := codec.Encode(claims)
		require.NoError(t, err)
		require.Len(t, strings.Split(raw, "."), 3)

		decoded, err := codec.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, claims, decoded)
	}
}

func TestCodec_EncodeRejectsIncompleteClaims(t *testing.T) {
	codec := newTestCodec()

	_, err := codec.Encode(sampleClaims(0))
	require.ErrorIs(t, err, ErrMissingSubject)

	claims := sampleClaims(3)
	claims.ExpiresAt = claims.IssuedAt
	_, err = codec.Encode(claims)
	require.ErrorIs(t, err, ErrInvalidLifetime)

	_, err = NewCodec(StaticKey(nil)).Encode(sampleClaims(3))
	require.ErrorIs(t, err, ErrNoKey)
}

func TestCodec_FlippedSignatureByteIsBadSignature(t *testing.T) {
	codec := newTestCodec()
	raw, err := codec.Encode(sampleClaims(7))
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range sig {
		tampered := append([]byte(nil), sig...)
		tampered[i] ^= 0x01
		forged := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(tampered)

		_, err := codec.Decode(forged)
		require.ErrorIs(t, err, ErrBadSignature, "byte %d", i)
	}
}

func TestCodec_SwappedPayloadIsBadSignature(t *testing.T) {
	codec := newTestCodec()
	victim, err := codec.Encode(sampleClaims(7))
	require.NoError(t, err)
	attacker, err := codec.Encode(sampleClaims(8))
	require.NoError(t, err)

	v := strings.Split(victim, ".")
	a := strings.Split(attacker, ".")
	_, err = codec.Decode(v[0] + "." + a[1] + "." + v[2])
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestCodec_ForeignSecretIsBadSignature(t *testing.T) {
	raw, err := NewCodec(NewStaticKey("another-secret")).Encode(sampleClaims(7))
	require.NoError(t, err)

	_, err = newTestCodec().Decode(raw)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestCodec_UnsignedAlgorithmIsBadSignature(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": 7,
		"iat": baseTime.Unix(),
		"exp": baseTime.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestCodec().Decode(unsigned)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestCodec_Malformed(t *testing.T) {
	codec := newTestCodec()
	valid, err := codec.Encode(sampleClaims(7))
	require.NoError(t, err)
	parts := strings.Split(valid, ".")

	cases := map[string]string{
		"two segments":   parts[0] + "." + parts[1],
		"four segments":  valid + ".extra",
		"bad header b64": "!!!." + parts[1] + "." + parts[2],
		"bad claims b64": parts[0] + ".%%%." + parts[2],
		"padded claims":  parts[0] + "." + parts[1] + "==." + parts[2],
		"empty":          "..",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(raw)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestCodec_RequiredClaimsCheckedAfterSignature(t *testing.T) {
	codec := newTestCodec()
	sign := func(claims jwt.MapClaims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return raw
	}

	_, err := codec.Decode(sign(jwt.MapClaims{"email": "a@x.com", "iat": baseTime.Unix(), "exp": baseTime.Add(time.Hour).Unix()}))
	require.ErrorIs(t, err, ErrMalformed)
	require.ErrorIs(t, err, ErrMissingSubject)

	_, err = codec.Decode(sign(jwt.MapClaims{"sub": 5, "iat": baseTime.Unix()}))
	require.ErrorIs(t, err, ErrMalformed)

	_, err = codec.Decode(sign(jwt.MapClaims{"sub": 5, "iat": baseTime.Unix(), "exp": baseTime.Unix()}))
	require.ErrorIs(t, err, ErrInvalidLifetime)
}

func TestCodec_SubjectAcceptsNumberOrNumericString(t *testing.T) {
	codec := newTestCodec()
	for _, sub := range []any{1, "1"} {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   sub,
			"name":  "Usuário Teste",
			"email": "teste@example.com",
			"iat":   baseTime.Unix(),
			"exp":   baseTime.Add(time.Hour).Unix(),
			"nbf":   baseTime.Unix(),
			"iss":   "http://localhost:8000",
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		claims, err := codec.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, int64(1), claims.Subject)
		require.Equal(t, "http://localhost:8000", claims.Issuer)
		require.Equal(t, baseTime, claims.NotBefore)
	}
}

func TestValidate(t *testing.T) {
	claims := sampleClaims(1)

	require.NoError(t, Validate(claims, baseTime))
	require.NoError(t, Validate(claims, claims.ExpiresAt.Add(-time.Second)))
	require.ErrorIs(t, Validate(claims, claims.ExpiresAt), ErrExpired)
	require.ErrorIs(t, Validate(claims, claims.ExpiresAt.Add(time.Minute)), ErrExpired)

	claims.NotBefore = baseTime.Add(10 * time.Minute)
	require.ErrorIs(t, Validate(claims, baseTime), ErrNotYetValid)
	require.NoError(t, Validate(claims, claims.NotBefore))
}
