package badge

import "errors"

var (
	ErrWeakSecret       = errors.New("badge: secret must be at least 32 bytes")
	ErrEmptyNaturalKey  = errors.New("badge: natural key is required")
	ErrEmptyDisplayName = errors.New("badge: display name is required")
)
