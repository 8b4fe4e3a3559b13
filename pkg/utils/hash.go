package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// FingerprintBytes returns a short stable hash used to identify input
// payloads across runs. Not cryptographic.
func FingerprintBytes(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

func FingerprintString(s string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(s))
}

// FingerprintFile streams the file through the hasher so large scan
// reports do not need to be held in memory twice.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for fingerprinting: %w", err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
