package aafmodel

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MobID is the unique identity of a mob, serialized as a URN.
type MobID string

const mobIDPrefix = "urn:uuid:"

// NewMobID synthesizes a fresh, meaningless mob identity.
func NewMobID() MobID {
	return MobID(mobIDPrefix + uuid.NewString())
}

// ParseMobID validates a mob identity string. Bare UUIDs are accepted and
// normalized to URN form.
func ParseMobID(s string) (MobID, error) {
	trimmed := strings.TrimSpace(s)
	raw := strings.TrimPrefix(trimmed, mobIDPrefix)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse mob id %q: %w", s, err)
	}
	return MobID(mobIDPrefix + id.String()), nil
}

// IsZero reports whether the identity is unset.
func (id MobID) IsZero() bool { return id == "" }

func (id MobID) String() string { return string(id) }
