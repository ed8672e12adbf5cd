package profile

import "errors"

// Sentinel kinds for profile errors.
var (
	ErrInvalidStyle = errors.New("invalid style preference")
)
