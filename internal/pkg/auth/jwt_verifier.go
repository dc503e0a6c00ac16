package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid auth token")

// JWTVerifier validates HMAC-signed identity tokens issued by the external identity provider.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier builds JWTVerifier with provided secret and options.
func NewJWTVerifier(secret string, opts Options) *JWTVerifier {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(opts.Leeway))
	}
	return &JWTVerifier{secret: []byte(secret), parser: jwt.NewParser(parserOpts...)}
}

// Verify checks signature and registered claims and returns the claim payload.
func (v *JWTVerifier) Verify(token string) (map[string]any, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Sign issues an HS256 token for claims. Used by local tooling and tests.
func (v *JWTVerifier) Sign(claims map[string]any) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString(v.secret)
}

func (v *JWTVerifier) Name() string {
	return "jwt-hmac"
}
