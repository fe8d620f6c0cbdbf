package logic

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainAssignment = "verity/assignment/v1"
	DomainWorld      = "verity/world/v1"
)

// HashWithDomain computes SHA256(domain + 0x00 + data) as hex.
// The null separator prevents domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint is the content hash of a's name/value pairs. Insertion order
// does not matter: structurally equal assignments share a fingerprint.
//
// A graph node's fingerprint changes when a previously unknown name is filled
// in, so fingerprints identify a state at a point in time, not a node.
func Fingerprint(a *Assignment) (string, error) {
	canonical, err := MarshalCanonical(a)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return HashWithDomain(DomainAssignment, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Assignments hold only strings and bools, so this cannot fail for a non-nil a.
func MustFingerprint(a *Assignment) string {
	fp, err := Fingerprint(a)
	if err != nil {
		panic(err)
	}
	return fp
}
