// Package access enforces row-level visibility over retrieval results.
// Two independent gates apply: a data-driven gate against the roles a
// chunk was ingested with, and a convention-based gate on document names
// containing "restricted". Both must pass for a result to be shown.
package access

// Role names. The hierarchy is fixed and small: admin subsumes legal,
// legal subsumes staff.
const (
	RoleAdmin = "admin"
	RoleLegal = "legal"
	RoleStaff = "staff"
)

// Hierarchy maps a role to its effective role set: the role itself plus
// every role it subsumes. Used only to widen a requester's access before
// filtering, never to narrow it.
var Hierarchy = map[string][]string{
	RoleAdmin: {RoleAdmin, RoleLegal, RoleStaff},
	RoleLegal: {RoleLegal, RoleStaff},
	RoleStaff: {RoleStaff},
}

// AllRoles is the full role universe, used as the default gate for chunks
// ingested without explicit roles.
var AllRoles = []string{RoleStaff, RoleLegal, RoleAdmin}

// privilegedRoles may view documents whose name carries the "restricted"
// marker. Checked against the requester's declared roles, not the widened
// set: the naming gate is a defense-in-depth backstop and deliberately
// does not inherit through the hierarchy.
var privilegedRoles = map[string]struct{}{
	RoleLegal: {},
	RoleAdmin: {},
}

// EffectiveRoles returns the union of the subsumption sets of the declared
// roles. Unknown roles are kept as-is (they widen nothing but still match
// chunks that name them explicitly).
func EffectiveRoles(declared []string) map[string]struct{} {
	effective := make(map[string]struct{}, len(declared)*2)
	for _, role := range declared {
		if subsumed, ok := Hierarchy[role]; ok {
			for _, r := range subsumed {
				effective[r] = struct{}{}
			}
			continue
		}
		effective[role] = struct{}{}
	}
	return effective
}

// intersects reports whether any element of roles is in set.
func intersects(roles []string, set map[string]struct{}) bool {
	for _, r := range roles {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
