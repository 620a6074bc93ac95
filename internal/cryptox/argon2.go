package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/cybersib/cybersib/internal/common"
)

// Argon2Params are the argon2id cost settings. MemoryKiB is in kibibytes.
type Argon2Params struct {
	Time      uint32 `json:"time" yaml:"time"`
	MemoryKiB uint32 `json:"memory_kib" yaml:"memory_kib"`
	Threads   uint8  `json:"threads" yaml:"threads"`
	KeyLen    uint32 `json:"key_len" yaml:"key_len"`
	SaltLen   uint32 `json:"salt_len" yaml:"salt_len"`
}

// DefaultArgon2Params: 1 pass over 64 MiB with 4 lanes, 32-byte key.
var DefaultArgon2Params = Argon2Params{
	Time:      1,
	MemoryKiB: 64 * 1024,
	Threads:   4,
	KeyLen:    32,
	SaltLen:   16,
}

// DeriveKey runs argon2id over password and salt.
func DeriveKey(password, salt []byte, p Argon2Params) []byte {
	return argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
}

type Argon2idHasher struct {
	Params Argon2Params
}

func NewArgon2idHasher(p Argon2Params) *Argon2idHasher {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 || p.KeyLen == 0 {
		p = DefaultArgon2Params
	}
	if p.SaltLen == 0 {
		p.SaltLen = DefaultArgon2Params.SaltLen
	}
	return &Argon2idHasher{Params: p}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(int(h.Params.SaltLen))
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key := DeriveKey(pw, salt, h.Params)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Params.MemoryKiB, h.Params.Time, h.Params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(encoded, password string) (bool, error) {
	return Verify(encoded, password)
}

func verifyArgon2id(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}
	p.KeyLen = uint32(len(want))

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	got := DeriveKey(pw, salt, p)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
