// Package crypto provides password hashing for the credential store.
//
// Two schemes are supported. The sha256 scheme is a single unsalted
// deterministic digest and is kept only because the existing user table was
// written with it; it offers no protection against offline dictionary
// attacks. New installs should run with the argon2id scheme (per-record salt,
// memory-hard KDF). The scheme is chosen in server configuration.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrPasswordMismatch indicates the password does not match the digest.
	ErrPasswordMismatch = errors.New("password does not match digest")

	// ErrInvalidDigestFormat indicates a stored digest cannot be parsed.
	ErrInvalidDigestFormat = errors.New("invalid digest format")
)

// Hasher produces and verifies one-way password digests.
type Hasher interface {
	// Digest returns the digest to store for a plaintext password.
	Digest(password string) (string, error)

	// Verify compares a plaintext password with a stored digest.
	// Returns ErrPasswordMismatch when they do not match.
	Verify(password, digest string) error
}

// SHA256Hasher is the legacy deterministic scheme: lowercase hex SHA-256 of
// the UTF-8 password bytes. Unsalted and single-round; see package comment.
type SHA256Hasher struct{}

// Digest returns the lowercase hex SHA-256 digest of the password.
func (SHA256Hasher) Digest(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest and compares in constant time.
func (h SHA256Hasher) Verify(password, digest string) error {
	computed, err := h.Digest(password)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// Argon2Hasher is the argon2id scheme with per-record random salt, stored in
// PHC string format: $argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>.
type Argon2Hasher struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// NewArgon2Hasher returns an Argon2Hasher with recommended parameters.
func NewArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Digest hashes the password with a fresh random salt.
func (h Argon2Hasher) Digest(password string) (string, error) {
	salt := make([]byte, h.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.Iterations, h.Memory, h.Parallelism, h.KeyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.Memory,
		h.Iterations,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// Verify recomputes the hash with the stored salt and parameters and
// compares in constant time.
func (h Argon2Hasher) Verify(password, digest string) error {
	params, salt, hash, err := decodeArgon2Digest(digest)
	if err != nil {
		return err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	if subtle.ConstantTimeCompare(hash, candidate) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// decodeArgon2Digest parses a PHC-formatted argon2id digest.
func decodeArgon2Digest(digest string) (Argon2Hasher, []byte, []byte, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2Hasher{}, nil, nil, ErrInvalidDigestFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Argon2Hasher{}, nil, nil, ErrInvalidDigestFormat
	}
	if version != argon2.Version {
		return Argon2Hasher{}, nil, nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrInvalidDigestFormat, version)
	}

	var params Argon2Hasher
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return Argon2Hasher{}, nil, nil, ErrInvalidDigestFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Hasher{}, nil, nil, ErrInvalidDigestFormat
	}
	params.SaltLength = uint32(len(salt))

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Hasher{}, nil, nil, ErrInvalidDigestFormat
	}
	params.KeyLength = uint32(len(hash))

	return params, salt, hash, nil
}
