package identity

import (
	"errors"
	"strings"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

// ErrMissingSubject indicates the claim payload has no usable subject.
var ErrMissingSubject = errors.New("identity subject claim is missing")

// Identity is the typed view of a caller's claims.
type Identity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Roles      RoleSet
	Role       model.Role
}

// Extract builds an Identity from raw token claims. Only the subject is mandatory;
// string claims of the wrong type are treated as absent.
func Extract(raw map[string]any, clientID string, policy Policy) (Identity, error) {
	subject := stringClaim(raw, "sub")
	if subject == "" {
		return Identity{}, ErrMissingSubject
	}
	roles := ParseRoles(raw, clientID)
	return Identity{
		Subject:    subject,
		Email:      stringClaim(raw, "email"),
		GivenName:  stringClaim(raw, "given_name"),
		FamilyName: stringClaim(raw, "family_name"),
		Roles:      roles,
		Role:       policy.Resolve(roles),
	}, nil
}

// User maps the identity to a local user record.
func (i Identity) User() model.User {
	return model.User{
		ID:        i.Subject,
		Email:     i.Email,
		FirstName: i.GivenName,
		LastName:  i.FamilyName,
		Role:      i.Role,
	}
}

func stringClaim(raw map[string]any, key string) string {
	v, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
