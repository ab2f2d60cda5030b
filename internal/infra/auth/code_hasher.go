package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"

	"pentrack/internal/domain/service"

	"github.com/pkg/errors"
)

// sha256Hasher is a concrete implementation of the CodeHasher interface.
// One-time codes are looked up by stored digest, so the hash must be
// deterministic; brute force is handled by the attempt cap, not salting.
type sha256Hasher struct{}

// NewSHA256Hasher is the constructor for sha256Hasher.
func NewSHA256Hasher() service.CodeHasher {
	return &sha256Hasher{}
}

// Hash produces the hex digest of a plaintext code.
func (h *sha256Hasher) Hash(code string) string {
	sum := sha256.Sum256([]byte(code))

	return hex.EncodeToString(sum[:])
}

// Check compares a plaintext code with a stored digest in constant time.
func (h *sha256Hasher) Check(code, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(code)), []byte(hash)) == 1
}

// numericGenerator is a concrete implementation of the CodeGenerator interface.
type numericGenerator struct {
	length int
}

// NewNumericGenerator builds a generator producing codes of the given length.
func NewNumericGenerator(length int) service.CodeGenerator {
	return &numericGenerator{length: length}
}

// Generate returns a numeric code drawn digit by digit from crypto/rand,
// preserving leading zeros.
func (g *numericGenerator) Generate() (string, error) {
	digits := make([]byte, g.length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", errors.Wrap(err, "rand.Int")
		}
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits), nil
}
