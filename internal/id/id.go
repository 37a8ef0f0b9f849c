// Package id generates the 24-character hex identifiers used for every
// entity. The format matches the document ids clients already store, so
// ids from earlier deployments remain valid.
package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Length is the number of characters in an identifier.
const Length = 24

// New returns a fresh identifier built from the first 12 bytes of a UUIDv4.
func New() string {
	u := uuid.New()
	return hex.EncodeToString(u[:Length/2])
}

// Valid reports whether s has the identifier shape.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
