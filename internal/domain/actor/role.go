package actor

import "rentpay/internal/pkg/errs"

// Role is the caller's authorization level. Customers act on their own
// bookings; admins act on any booking and on manual payments.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var roleLevels = map[Role]int{
	RoleCustomer: 1,
	RoleAdmin:    2,
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleLevels[r]; !ok {
		return "", errs.Newf("unknown role: %q", s)
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) AtLeast(other Role) bool {
	return roleLevels[r] >= roleLevels[other]
}
