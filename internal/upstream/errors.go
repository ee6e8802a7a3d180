package upstream

import "errors"

// Typed failures shared by the provider clients. Handlers map these onto
// HTTP statuses at the boundary; nothing here is retried.
var (
	ErrNotConfigured    = errors.New("provider API key not configured")
	ErrUnavailable      = errors.New("provider unavailable")
	ErrRateLimited      = errors.New("provider rate limited")
	ErrLocationNotFound = errors.New("location not found")
)
