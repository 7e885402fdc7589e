package certification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer computes the integrity marker over a canonical payload. The marker
// must be recomputable by any verifier holding the payload.
type Signer interface {
	Sign(payload []byte) (digest string, err error)
	Algorithm() string
}

// SHA256Signer is the default signer: a plain SHA-256 digest, hex encoded.
type SHA256Signer struct{}

func (SHA256Signer) Sign(payload []byte) (string, error) {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func (SHA256Signer) Algorithm() string { return "sha256" }

// HMACSigner keys the digest so only holders of the key can produce valid
// seals. Verification still recomputes from the payload.
type HMACSigner struct {
	key []byte
}

func NewHMACSigner(key []byte) *HMACSigner { return &HMACSigner{key: key} }

func (s *HMACSigner) Sign(payload []byte) (string, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func (s *HMACSigner) Algorithm() string { return "hmac-sha256" }
