package rbac

// Role names. Keep these stable; they are part of auth contracts.
//
// owner: a business user who owns (at most) one Client and its leads.
// admin: operator role; the only role allowed to mutate clients after creation.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
