package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveRoles_WidensNeverNarrows(t *testing.T) {
	tests := []struct {
		name     string
		declared []string
		want     []string
	}{
		{"staff stays staff", []string{RoleStaff}, []string{RoleStaff}},
		{"legal subsumes staff", []string{RoleLegal}, []string{RoleLegal, RoleStaff}},
		{"admin subsumes all", []string{RoleAdmin}, []string{RoleAdmin, RoleLegal, RoleStaff}},
		{"union of declared", []string{RoleStaff, RoleLegal}, []string{RoleLegal, RoleStaff}},
		{"unknown role kept", []string{"auditor"}, []string{"auditor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveRoles(tt.declared)
			assert.Len(t, got, len(tt.want))
			for _, r := range tt.want {
				assert.Contains(t, got, r)
			}
			// Widening only: every declared role survives.
			for _, r := range tt.declared {
				assert.Contains(t, got, r)
			}
		})
	}
}

func TestSubject_Admit(t *testing.T) {
	tests := []struct {
		name       string
		declared   []string
		chunkRoles []string
		docName    string
		want       bool
	}{
		{
			name:       "staff sees staff chunk",
			declared:   []string{RoleStaff},
			chunkRoles: []string{RoleStaff, RoleLegal, RoleAdmin},
			docName:    "Civil Liability Law",
			want:       true,
		},
		{
			name:       "staff blocked by role gate",
			declared:   []string{RoleStaff},
			chunkRoles: []string{RoleLegal, RoleAdmin},
			docName:    "Internal Memo",
			want:       false,
		},
		{
			name:       "legal widened to staff chunk",
			declared:   []string{RoleLegal},
			chunkRoles: []string{RoleStaff},
			docName:    "Public Policy",
			want:       true,
		},
		{
			name:       "staff blocked by naming gate even with matching roles",
			declared:   []string{RoleStaff},
			chunkRoles: []string{RoleStaff, RoleLegal},
			docName:    "Restricted Safety Protocol",
			want:       false,
		},
		{
			name:       "legal passes naming gate",
			declared:   []string{RoleLegal},
			chunkRoles: []string{RoleLegal, RoleAdmin},
			docName:    "Restricted Safety Protocol",
			want:       true,
		},
		{
			name:       "admin passes naming gate",
			declared:   []string{RoleAdmin},
			chunkRoles: []string{RoleLegal, RoleAdmin},
			docName:    "confidential RESTRICTED waste plan",
			want:       true,
		},
		{
			name:       "naming gate checks declared not effective",
			declared:   []string{RoleStaff},
			chunkRoles: []string{RoleStaff},
			docName:    "restricted annex",
			want:       false,
		},
		{
			name:       "both gates fail",
			declared:   []string{RoleStaff},
			chunkRoles: []string{RoleLegal, RoleAdmin},
			docName:    "Restricted Nuclear Safety Protocol",
			want:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := NewSubject(tt.declared)
			assert.Equal(t, tt.want, subject.Admit(tt.chunkRoles, tt.docName))
		})
	}
}

func TestRestrictedName(t *testing.T) {
	assert.True(t, RestrictedName("Restricted Nuclear Safety Protocol"))
	assert.True(t, RestrictedName("confidential restricted annex"))
	assert.False(t, RestrictedName("Public Nuclear Energy Policy"))
}
