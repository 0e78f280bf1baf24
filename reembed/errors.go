package reembed

import "errors"

// ErrInvalidMaxAttempts is returned when a retry is requested with zero
// or negative attempts.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
