package utils

import (
	"github.com/google/uuid"
)

// GenerateAPIKey generates a UUID string to be used as an API key.
func GenerateAPIKey() string {
	return uuid.NewString()
}

// GenerateCorrelationID generates a fresh correlation id for a request that
// did not carry one.
func GenerateCorrelationID() string {
	return uuid.NewString()
}
