package access

import "lessons-api/internal/domain/users"

// Policy is the read-only entitlement view of an account.
type Policy struct {
	Role         string
	State        AccessState
	IsPremium    bool
	Capabilities []string
}

func ComputePolicy(u users.User) Policy {
	state := AccessFree
	if u.IsPremium {
		state = AccessPremium
	}

	role := u.Role
	if role == "" {
		role = users.RoleUser
	}

	return Policy{
		Role:         role,
		State:        state,
		IsPremium:    u.IsPremium,
		Capabilities: CapabilitiesFor(state, u.IsAdmin()),
	}
}
