package domain

// Principal is the request-scoped view of who is calling. It is derived
// from a validated access token and lives for one request only.
type Principal struct {
	Authenticated bool
	Subject       string
	Roles         []Role
}

// HasAnyRole reports whether p holds at least one of roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
