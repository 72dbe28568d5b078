// Package noteid generates and validates note identifiers.
//
// A note id is "cm." followed by a fixed-length lowercase alphanumeric hash
// (6 characters by default). Uniqueness is enforced by the store, not here.
package noteid

import (
	"crypto/rand"
	"regexp"
)

// Prefix is the canonical note id prefix.
const Prefix = "cm."

// HashLen is the default hash length after the prefix.
const HashLen = 6

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var idRe = regexp.MustCompile(`^cm\.[a-z0-9]+$`)

// Generator produces candidate note ids. The store retries a Generator until
// it yields an id not present in the graph.
type Generator func() string

// New returns a random note id in canonical form.
func New() string {
	buf := make([]byte, HashLen)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return Prefix + string(buf)
}

// Valid reports whether s is a well-formed note id.
func Valid(s string) bool {
	return idRe.MatchString(s)
}
