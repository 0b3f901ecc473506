package services

import "github.com/google/uuid"

// IdentityGenerator produces the stable, collision-resistant identifiers
// assigned to questions and options at creation. It is injected so tests
// can use deterministic ids.
type IdentityGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns the production UUIDv4 generator.
func NewUUIDGenerator() IdentityGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}
