// Package idgen generates short, URL-safe node and edge IDs backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used by the editor when a client creates an item without an ID.
const (
	NodePrefix = "rm-"
	EdgePrefix = "dep-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// NodeID returns a new node ID.
func NodeID() (string, error) {
	return GenerateWithPrefix(NodePrefix)
}

// EdgeID returns a new edge ID.
func EdgeID() (string, error) {
	return GenerateWithPrefix(EdgePrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
