package identity

import "github.com/luisbfsousa/mect-sub001/internal/domain/model"

// Policy holds the role priority order and fan-out recipient classes.
// It is built once and shared read-only.
type Policy struct {
	priority        []model.Role
	alertRecipients []model.Role
	staffRecipients []model.Role
}

// DefaultPolicy returns administrator > warehouse-staff > content-manager > customer, stock
// alerts to administrators and delivery notices to warehouse staff and administrators.
func DefaultPolicy() Policy {
	return NewPolicy(
		[]model.Role{model.RoleAdministrator, model.RoleWarehouseStaff, model.RoleContentManager, model.RoleCustomer},
		[]model.Role{model.RoleAdministrator},
		[]model.Role{model.RoleWarehouseStaff, model.RoleAdministrator},
	)
}

// NewPolicy copies the supplied role lists. priority is ordered highest first.
func NewPolicy(priority, alertRecipients, staffRecipients []model.Role) Policy {
	return Policy{
		priority:        append([]model.Role(nil), priority...),
		alertRecipients: append([]model.Role(nil), alertRecipients...),
		staffRecipients: append([]model.Role(nil), staffRecipients...),
	}
}

// Rank returns a larger number for more privileged roles and -1 for unknown roles.
func (p Policy) Rank(role model.Role) int {
	for i, r := range p.priority {
		if r == role {
			return len(p.priority) - i
		}
	}
	return -1
}

// Resolve picks the highest priority role in set, defaulting to customer.
func (p Policy) Resolve(set RoleSet) model.Role {
	for _, r := range p.priority {
		if set.Has(r) {
			return r
		}
	}
	return model.RoleCustomer
}

// AtLeast reports whether role ranks at or above min.
func (p Policy) AtLeast(role, min model.Role) bool {
	rank := p.Rank(role)
	return rank >= 0 && rank >= p.Rank(min)
}

// Higher reports whether candidate strictly outranks current.
func (p Policy) Higher(candidate, current model.Role) bool {
	return p.Rank(candidate) > p.Rank(current)
}

// Below lists the known roles ranked strictly under role.
func (p Policy) Below(role model.Role) []model.Role {
	rank := p.Rank(role)
	var lower []model.Role
	for _, r := range p.priority {
		if p.Rank(r) < rank {
			lower = append(lower, r)
		}
	}
	return lower
}

// AlertRecipientRoles lists roles that receive stock alerts.
func (p Policy) AlertRecipientRoles() []model.Role {
	return append([]model.Role(nil), p.alertRecipients...)
}

// StaffRecipientRoles lists roles that receive delivery notices.
func (p Policy) StaffRecipientRoles() []model.Role {
	return append([]model.Role(nil), p.staffRecipients...)
}
