package service

import (
	"testing"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/stretchr/testify/require"
)

func TestCanRemoveMember(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		requester domain.Role
		target    domain.Role
		isSelf    bool
		allowed   bool
	}{
		{"owner removes manager", domain.RoleOwner, domain.RoleManager, false, true},
		{"owner removes member", domain.RoleOwner, domain.RoleMember, false, true},
		{"owner removes self", domain.RoleOwner, domain.RoleOwner, true, false},
		{"manager removes member", domain.RoleManager, domain.RoleMember, false, true},
		{"manager removes manager", domain.RoleManager, domain.RoleManager, false, false},
		{"manager removes owner", domain.RoleManager, domain.RoleOwner, false, false},
		{"manager removes self", domain.RoleManager, domain.RoleManager, true, true},
		{"member removes member", domain.RoleMember, domain.RoleMember, false, false},
		{"member removes owner", domain.RoleMember, domain.RoleOwner, false, false},
		{"member removes self", domain.RoleMember, domain.RoleMember, true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := CanRemoveMember(tc.requester, tc.target, tc.isSelf)
			require.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				require.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestCanChangeRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		requester domain.Role
		target    domain.Role
		newRole   domain.Role
		allowed   bool
	}{
		{"owner promotes member to manager", domain.RoleOwner, domain.RoleMember, domain.RoleManager, true},
		{"owner demotes manager to member", domain.RoleOwner, domain.RoleManager, domain.RoleMember, true},
		{"owner assigns owner role", domain.RoleOwner, domain.RoleManager, domain.RoleOwner, true},
		{"manager promotes member to manager", domain.RoleManager, domain.RoleMember, domain.RoleManager, true},
		{"manager demotes manager to member", domain.RoleManager, domain.RoleManager, domain.RoleMember, true},
		{"manager assigns owner role", domain.RoleManager, domain.RoleMember, domain.RoleOwner, false},
		{"manager changes owner role", domain.RoleManager, domain.RoleOwner, domain.RoleMember, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := CanChangeRole(tc.requester, tc.target, tc.newRole)
			require.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				require.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestRoleMeets(t *testing.T) {
	t.Parallel()

	require.True(t, domain.RoleOwner.Meets(domain.RoleManager))
	require.True(t, domain.RoleManager.Meets(domain.RoleManager))
	require.True(t, domain.RoleManager.Meets(domain.RoleMember))
	require.False(t, domain.RoleMember.Meets(domain.RoleManager))
	require.False(t, domain.RoleMember.Meets(domain.RoleOwner))
	require.False(t, domain.Role("GUEST").Meets(domain.RoleMember))
}
