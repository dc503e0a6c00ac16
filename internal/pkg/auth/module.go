package auth

import (
	"github.com/luisbfsousa/mect-sub001/internal/config"
	"go.uber.org/fx"
)

// Module provides token verification via fx.
var Module = fx.Provide(newVerifier)

type verifierParams struct {
	fx.In

	Config *config.Config
}

func newVerifier(p verifierParams) Verifier {
	return NewJWTVerifier(p.Config.JWTSecret, Options{})
}
