// Package commit defines the commitment scheme binding an order's secret to
// the hash committed at creation. The scheme is pluggable, the coordinator
// only relies on Commit/Verify agreeing with each other.
package commit

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

type Committer interface {
	// Commit derives the committed hash from a secret.
	Commit(secret []byte) string

	// Verify reports whether the secret is the preimage of the committed hash.
	Verify(secret []byte, hash string) bool
}

type sha256Committer struct{}

func NewSHA256() Committer {
	return sha256Committer{}
}

func (sha256Committer) Commit(secret []byte) string {
	hash := sha256.Sum256(secret)
	return hex.EncodeToString(hash[:])
}

func (c sha256Committer) Verify(secret []byte, hash string) bool {
	computed := c.Commit(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(hash))) == 1
}
