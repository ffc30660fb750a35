// Package id generates prefixed, URL-safe entity identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. An ID reads as "<prefix>-<nanoid>", e.g. "activity-V1StGXR8_Z5jdHi6B-myT".
const (
	PrefixCompany  = "company"
	PrefixActivity = "activity"
	PrefixTarget   = "target"
	PrefixSession  = "session"
	PrefixToken    = "token"
	PrefixClient   = "client"
)

// Generate creates a prefixed unique ID using NanoID.
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// HasPrefix reports whether v was generated with the given prefix.
func HasPrefix(v, prefix string) bool {
	return len(v) > len(prefix)+1 && v[:len(prefix)] == prefix && v[len(prefix)] == '-'
}
