package model

import "time"

// Role is a priority-ordered capability tier.
type Role string

const (
	RoleAdministrator  Role = "administrator"
	RoleWarehouseStaff Role = "warehouse-staff"
	RoleContentManager Role = "content-manager"
	RoleCustomer       Role = "customer"
)

// User is the local record of an external identity.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      Role
	CreatedAt time.Time
}

// DisplayName joins first and last names, falling back to email.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}
