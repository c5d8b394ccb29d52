package entity

// Role is the authorization level of an account.
// Only administrative flows change it; every new account starts as RoleUser.
type Role string

const (
	RoleUser   Role = "user"
	RoleAgency Role = "agency"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgency, RoleAdmin:
		return true
	}
	return false
}
