package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Service errors
var (
	ErrPageNotBuilt = errors.New("dashboard page not built")
)

// pageETag is a weak validator derived from the page bytes. It stays weak
// because the same page may be sent gzip-encoded or as identity.
func pageETag(html []byte) string {
	sum := sha256.Sum256(html)
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}
