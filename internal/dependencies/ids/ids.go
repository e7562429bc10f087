package ids

import "github.com/google/uuid"

// Generator produces unique opaque identifiers that can be mocked for testing
type Generator interface {
	New() string
}

// UUIDGenerator implements Generator with random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// New returns a fresh UUID string
func (g *UUIDGenerator) New() string {
	return uuid.NewString()
}
