package entity

// Role is the sole authorization signal. The set is closed: every switch over
// Role must list all constants.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
)

// DefaultRole is granted when the profile row is missing or unreadable.
const DefaultRole = RoleCustomer

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMerchant:
		return true
	}
	return false
}

// ParseRole maps unknown values to the least privileged role.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return DefaultRole
	}
	return r
}
