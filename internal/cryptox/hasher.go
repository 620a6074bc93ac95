package cryptox

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

var ErrMalformedHash = errors.New("malformed credential hash")

// Hasher turns a raw password into an encoded one-way hash and checks
// passwords against encoded hashes.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
}

// NewHasher returns the hasher for algorithm. An empty name selects argon2id.
func NewHasher(algorithm string, argon Argon2Params, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmArgon2id:
		return NewArgon2idHasher(argon), nil
	case AlgorithmBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
}

// Verify checks password against an encoded hash of either supported
// algorithm. A false result with nil error means the password is wrong.
func Verify(encoded, password string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2id(encoded, password)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
	default:
		return false, ErrMalformedHash
	}
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(encoded, password string) (bool, error) {
	return Verify(encoded, password)
}
