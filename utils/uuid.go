package utils

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// SortableID returns a new ULID string. Lexicographic order follows creation
// time, which keeps bid history stable when timestamps collide.
func SortableID() string {
	return ulid.Make().String()
}
