// Package argon hashes the stub backend's passwords with argon2id.
package argon

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32
)

var ErrMalformedHash = errors.New("malformed argon2id hash")

var b64 = base64.RawStdEncoding

// Hasher holds the argon2id cost settings written into every hash.
type Hasher struct {
	Memory  uint32
	Time    uint32
	Threads uint8
}

// Light keeps hashing fast enough for in-memory stores and tests.
var Light = Hasher{Memory: 8 * 1024, Time: 1, Threads: 1}

// Hash returns password as $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (h Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify re-derives the key with the settings stored in encoded.
func Verify(password, encoded string) (bool, error) {
	h, salt, key, err := parse(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, got) == 1, nil
}

func parse(encoded string) (Hasher, []byte, []byte, error) {
	fields := strings.Split(strings.TrimPrefix(encoded, "$"), "$")
	if len(fields) != 5 || fields[0] != "argon2id" || fields[1] != fmt.Sprintf("v=%d", argon2.Version) {
		return Hasher{}, nil, nil, ErrMalformedHash
	}
	var h Hasher
	if _, err := fmt.Sscanf(fields[2], "m=%d,t=%d,p=%d", &h.Memory, &h.Time, &h.Threads); err != nil {
		return Hasher{}, nil, nil, ErrMalformedHash
	}
	salt, err := b64.DecodeString(fields[3])
	if err != nil {
		return Hasher{}, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(fields[4])
	if err != nil || len(key) == 0 {
		return Hasher{}, nil, nil, ErrMalformedHash
	}
	return h, salt, key, nil
}
