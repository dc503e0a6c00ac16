package identity

import (
	"sort"
	"strings"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

const (
	realmAccessClaim    = "realm_access"
	resourceAccessClaim = "resource_access"
	rolesKey            = "roles"
)

// RoleSet is a deduplicated set of recognised role classes.
type RoleSet map[model.Role]struct{}

// Has reports whether role is present.
func (s RoleSet) Has(role model.Role) bool {
	_, ok := s[role]
	return ok
}

// Sorted returns roles in lexical order.
func (s RoleSet) Sorted() []model.Role {
	out := make([]model.Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var roleAliases = map[string]model.Role{
	"administrator":   model.RoleAdministrator,
	"admin":           model.RoleAdministrator,
	"warehouse-staff": model.RoleWarehouseStaff,
	"warehouse":       model.RoleWarehouseStaff,
	"content-manager": model.RoleContentManager,
	"customer":        model.RoleCustomer,
}

// NormalizeRole lowercases a raw role token and folds underscores into hyphens.
func NormalizeRole(raw string) (model.Role, bool) {
	token := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	role, ok := roleAliases[token]
	return role, ok
}

// ParseRoles collects roles from the realm-wide claim group and the per-client group keyed by
// clientID. Unknown tokens are ignored. Any structurally unexpected group yields an empty set.
func ParseRoles(raw map[string]any, clientID string) RoleSet {
	set := RoleSet{}
	if raw == nil {
		return set
	}

	var groups []any
	if realm, ok := raw[realmAccessClaim]; ok {
		groups = append(groups, realm)
	}
	if resources, ok := raw[resourceAccessClaim]; ok {
		byClient, ok := resources.(map[string]any)
		if !ok {
			return RoleSet{}
		}
		if client, ok := byClient[clientID]; ok {
			groups = append(groups, client)
		}
	}

	for _, group := range groups {
		tokens, ok := roleTokens(group)
		if !ok {
			return RoleSet{}
		}
		for _, token := range tokens {
			if role, ok := NormalizeRole(token); ok {
				set[role] = struct{}{}
			}
		}
	}
	return set
}

func roleTokens(group any) ([]string, bool) {
	obj, ok := group.(map[string]any)
	if !ok {
		return nil, false
	}
	rawRoles, ok := obj[rolesKey]
	if !ok {
		return nil, true
	}
	list, ok := rawRoles.([]any)
	if !ok {
		if strs, isStrings := rawRoles.([]string); isStrings {
			return strs, true
		}
		return nil, false
	}
	tokens := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		tokens = append(tokens, s)
	}
	return tokens, true
}
