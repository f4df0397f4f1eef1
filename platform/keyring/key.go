package keyring

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// KeySize is the length in bytes of key material (AES-256).
	KeySize = 32
	// MaxClockSkew is how far in the future a key's CreatedAt may lie and the
	// key still count as active, so replicas with drifting clocks share it.
	MaxClockSkew = 5 * time.Minute
)

var (
	// ErrInvalidKey is returned when a stored key cannot be used.
	ErrInvalidKey = errors.New("invalid data-protection key")
	// ErrKeyGeneration is returned when a new key cannot be minted.
	ErrKeyGeneration = errors.New("generate data-protection key")
)

// Key is one data-protection key.
type Key struct {
	ID        uuid.UUID `json:"id"`
	Material  []byte    `json:"material"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newKey(now time.Time, lifetime time.Duration) (Key, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Key{}, fmt.Errorf("%w: id: %w", ErrKeyGeneration, err)
	}

	material := make([]byte, KeySize)
	if _, err := rand.Read(material); err != nil {
		return Key{}, fmt.Errorf("%w: material: %w", ErrKeyGeneration, err)
	}

	now = now.UTC()

	return Key{
		ID:        id,
		Material:  material,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}, nil
}

// Encoded returns the material as standard base64, the format cookie
// encryption middleware expects.
func (k Key) Encoded() string {
	return base64.StdEncoding.EncodeToString(k.Material)
}

// ActiveAt reports whether the key may encrypt new payloads at t. A key
// created up to MaxClockSkew after t is already active.
func (k Key) ActiveAt(t time.Time) bool {
	return !t.Add(MaxClockSkew).Before(k.CreatedAt) && t.Before(k.ExpiresAt)
}

func (k Key) validate() error {
	if k.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidKey)
	}

	if len(k.Material) != KeySize {
		return fmt.Errorf("%w: key %s has %d bytes of material", ErrInvalidKey, k.ID, len(k.Material))
	}

	if !k.ExpiresAt.After(k.CreatedAt) {
		return fmt.Errorf("%w: key %s expires before it is created", ErrInvalidKey, k.ID)
	}

	return nil
}
