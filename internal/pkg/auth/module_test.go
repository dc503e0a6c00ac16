package auth

import (
	"testing"

	"github.com/luisbfsousa/mect-sub001/internal/config"
)

func TestNewVerifier(t *testing.T) {
	verifier := newVerifier(verifierParams{Config: &config.Config{JWTSecret: "top-secret"}})
	jwtVerifier, ok := verifier.(*JWTVerifier)
	if !ok {
		t.Fatalf("expected *JWTVerifier, got %T", verifier)
	}
	if string(jwtVerifier.secret) != "top-secret" {
		t.Fatalf("unexpected secret: %q", string(jwtVerifier.secret))
	}
}
