// Package change decides whether a command's output differs from what is
// currently on screen.
package change

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 fingerprint of a byte sequence. It is only compared
// for equality.
type Digest [sha256.Size]byte

// Sum returns the digest of b.
func Sum(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// SumString returns the digest of the UTF-8 bytes of s.
func SumString(s string) Digest {
	return Sum([]byte(s))
}

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Changed reports whether next differs from the displayed text.
// A true result means the highlighted view must be recomputed.
func Changed(next []byte, displayed string) bool {
	return Sum(next) != SumString(displayed)
}
