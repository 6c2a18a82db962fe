package access

import "strings"

// restrictedMarker flags documents gated by naming convention regardless
// of their ingested role metadata.
const restrictedMarker = "restricted"

// Subject is a requester's identity for filtering purposes: the roles the
// auth layer handed us, and the widened set derived from the hierarchy.
type Subject struct {
	// Declared is the requester's role set as issued, non-widened.
	Declared []string

	// effective is Declared widened through the hierarchy.
	effective map[string]struct{}
}

// NewSubject builds a Subject from declared roles, precomputing the
// effective set once per query.
func NewSubject(declared []string) Subject {
	return Subject{
		Declared:  declared,
		effective: EffectiveRoles(declared),
	}
}

// Admit reports whether a subject may view a chunk. Both gates must pass:
//
//  1. Declared-role gate: the chunk's role set intersects the subject's
//     effective (widened) roles.
//  2. Naming-pattern gate: if the document name contains "restricted"
//     (case-insensitive), the subject's declared roles must intersect the
//     privileged set; otherwise the gate is always satisfied.
//
// Pure predicate over immutable inputs.
func (s Subject) Admit(chunkRoles []string, docName string) bool {
	if !intersects(chunkRoles, s.effective) {
		return false
	}
	if strings.Contains(strings.ToLower(docName), restrictedMarker) {
		return intersects(s.Declared, privilegedRoles)
	}
	return true
}

// RestrictedName reports whether a document name carries the restricted
// marker. Exposed for display (the CLI flags hidden restricted hits).
func RestrictedName(docName string) bool {
	return strings.Contains(strings.ToLower(docName), restrictedMarker)
}
