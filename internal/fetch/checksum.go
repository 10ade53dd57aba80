package fetch

import (
	"crypto/md5" //nolint:gosec // the publisher only provides an MD5 digest
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ComputeChecksumReader returns the hex MD5 digest of everything read from r.
func ComputeChecksumReader(r io.Reader) (string, error) {
	//nolint:gosec // integrity check against the published digest, not a security boundary
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeChecksumFile returns the hex MD5 digest of the file at path.
func ComputeChecksumFile(path string) (string, error) {
	//nolint:gosec // G304: path is inside the configured data directory
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ComputeChecksumReader(f)
}

// ValidateChecksum compares a computed digest against the expected one.
// An empty expected digest disables the check.
func ValidateChecksum(computed, expected string) error {
	if expected == "" {
		return nil
	}
	if !strings.EqualFold(computed, expected) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, computed, expected)
	}
	return nil
}
