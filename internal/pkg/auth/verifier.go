package auth

import "time"

// Verifier validates a bearer token and returns its raw claims.
type Verifier interface {
	Verify(token string) (map[string]any, error)
	Name() string
}

type Options struct {
	Issuer string
	Leeway time.Duration
}
