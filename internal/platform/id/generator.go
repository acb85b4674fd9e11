package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque document ids.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator yields "<prefix>_<32 hex chars>", or bare hex when prefix is empty.
type RandomGenerator struct {
	prefix string
}

func NewRandomGenerator(prefix string) *RandomGenerator {
	return &RandomGenerator{prefix: prefix}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	raw := hex.EncodeToString(buf)
	if g == nil || g.prefix == "" {
		return raw, nil
	}
	return g.prefix + "_" + raw, nil
}
