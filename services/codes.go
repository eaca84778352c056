package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet omits 0/O, 1/I and other glyphs easy to misread when a
// customer types the code at a counter instead of scanning the QR.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// codePrefix brands every redemption code.
const codePrefix = "RK"

// CodeGenerator produces human-typeable redemption codes of the form
// RK-XXX-XXXX. Uniqueness is not guaranteed here; the entitlement store's
// unique index is authoritative and the issuance workflow retries collisions.
type CodeGenerator struct{}

// NewCodeGenerator returns a generator using crypto/rand.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// Generate returns a fresh candidate code.
func (g *CodeGenerator) Generate() (string, error) {
	first, err := randomChunk(3)
	if err != nil {
		return "", err
	}
	second, err := randomChunk(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", codePrefix, first, second), nil
}

func randomChunk(n int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	chunk := make([]byte, n)
	for i := range chunk {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random source failed: %w", err)
		}
		chunk[i] = codeAlphabet[idx.Int64()]
	}
	return string(chunk), nil
}
