package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainBoard   = "chipwire/board/v1"
	DomainOutputs = "chipwire/outputs/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BoardHash computes the content hash of a board.
// Two boards hash identically iff their canonical forms are identical, so
// node and wire order matter but map iteration order does not.
func BoardHash(b *Board) (string, error) {
	canonical, err := MarshalCanonical(b.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("BoardHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBoard, canonical), nil
}

// OutputsHash fingerprints a sample matrix, e.g. to compare two runs.
func OutputsHash(values [][]float64) (string, error) {
	canonical, err := MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("OutputsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutputs, canonical), nil
}

// MustBoardHash is like BoardHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBoardHash(b *Board) string {
	h, err := BoardHash(b)
	if err != nil {
		panic(err)
	}
	return h
}
