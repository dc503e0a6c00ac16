package test

import (
	"context"

	"github.com/luisbfsousa/mect-sub001/internal/identity"
	pkgAuth "github.com/luisbfsousa/mect-sub001/internal/pkg/auth"
)

// VerifierStub returns preset claims for any non-empty token.
type VerifierStub struct {
	Claims   map[string]any
	Err      error
	VerifyFn func(string) (map[string]any, error)
}

// Verify delegates to VerifyFn or returns the preset result.
func (s VerifierStub) Verify(token string) (map[string]any, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(token)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if token == "" {
		return nil, pkgAuth.ErrInvalidToken
	}
	return s.Claims, nil
}

// Name returns the verifier identifier used in tests.
func (s VerifierStub) Name() string { return "stub" }

// AuthenticatorStub implements the middleware authentication contract.
type AuthenticatorStub struct {
	Identity identity.Identity
	Err      error
	Tokens   map[string]identity.Identity
}

// Authenticate resolves token through Tokens first, then the preset identity.
func (s AuthenticatorStub) Authenticate(_ context.Context, token string) (identity.Identity, error) {
	if s.Err != nil {
		return identity.Identity{}, s.Err
	}
	if id, ok := s.Tokens[token]; ok {
		return id, nil
	}
	if len(s.Tokens) > 0 {
		return identity.Identity{}, pkgAuth.ErrInvalidToken
	}
	return s.Identity, nil
}

var (
	_ pkgAuth.Verifier = VerifierStub{}
)
