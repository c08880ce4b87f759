// Package confirm gates destructive actions behind a shared confirmation secret.
package confirm

import (
	"errors"

	"github.com/dalemusser/ejchub/internal/app/system/authutil"
)

var (
	// ErrRejected is returned when the supplied secret does not match.
	ErrRejected = errors.New("confirmation secret rejected")
	// ErrNoSecret is returned by NewGate for an empty secret.
	ErrNoSecret = errors.New("confirmation secret is empty")
)

// Gate holds only a hash of the configured secret.
type Gate struct {
	hash   string
	hasher authutil.Hasher
}

// NewGate hashes secret with h.
func NewGate(secret string, h authutil.Hasher) (*Gate, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	hash, err := h.Hash(secret)
	if err != nil {
		return nil, err
	}
	return &Gate{hash: hash, hasher: h}, nil
}

// Check returns nil when supplied matches the configured secret.
// A nil gate rejects everything.
func (g *Gate) Check(supplied string) error {
	if g == nil || supplied == "" || !g.hasher.Verify(supplied, g.hash) {
		return ErrRejected
	}
	return nil
}
