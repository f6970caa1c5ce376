package services

import "errors"

// Validation errors shared across services. More specific sentinels live next
// to the service that owns them.
var (
	ErrValidation = errors.New("validation error")
)
