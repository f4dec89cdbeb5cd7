package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

// Fingerprint returns the hex SHA-256 of data. The schema watcher compares
// fingerprints to tell its own saves from external edits.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FingerprintJSON fingerprints the JSON encoding of v. Map keys are encoded
// in sorted order, so equal documents share a fingerprint.
func FingerprintJSON(v any) (string, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return Fingerprint(data), nil
}

// Short trims a fingerprint for log lines
func Short(hash string) string {
	if len(hash) < 8 {
		return hash
	}
	return hash[:8]
}
