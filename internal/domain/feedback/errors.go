package feedback

import "errors"

// Sentinel kinds for feedback errors.
var (
	ErrInvalidKind = errors.New("invalid feedback type")
	ErrMissingID   = errors.New("user_id and item_id are required")
)
