package token

// KeySource supplies the HMAC secret. Codec resolves the key on every call, so
// a rotating implementation can replace StaticKey without touching callers.
type KeySource interface {
	Key() ([]byte, error)
}

// StaticKey is a single process-wide secret, immutable after startup.
type StaticKey []byte

// NewStaticKey copies secret into a StaticKey.
func NewStaticKey(secret string) StaticKey {
	return StaticKey([]byte(secret))
}

// Key implements KeySource.
func (k StaticKey) Key() ([]byte, error) {
	if len(k) == 0 {
		return nil, ErrNoKey
	}
	return k, nil
}
