package service

import "github.com/crewdesk/crewdesk/internal/collab/domain"

// Decision is the outcome of a role-policy check. Reason is set when the
// action is denied.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// CanRemoveMember decides whether a requester with the given role may remove
// a target with the given role. isSelf marks self-removal, in which case the
// target role equals the requester role.
//
//	            target OWNER  target MANAGER  target MEMBER  self
//	OWNER       deny          allow           allow          deny (owner)
//	MANAGER     deny          deny            allow          allow
//	MEMBER      deny          deny            deny           allow
func CanRemoveMember(requester, target domain.Role, isSelf bool) Decision {
	// The owner is never removable, not even by themselves.
	if target == domain.RoleOwner {
		return deny("the project owner cannot be removed")
	}

	if isSelf {
		return allow()
	}

	switch requester {
	case domain.RoleOwner:
		return allow()
	case domain.RoleManager:
		if target == domain.RoleMember {
			return allow()
		}
		return deny("managers may only remove members")
	default:
		return deny("members may not remove other members")
	}
}

// CanChangeRole decides whether a requester with the given role may set the
// target member's role to newRole. Self-demotion of an owner is rejected by
// the use case before this matrix is consulted.
func CanChangeRole(requester, target, newRole domain.Role) Decision {
	if newRole == domain.RoleOwner && requester != domain.RoleOwner {
		return deny("only the owner may assign the owner role")
	}
	if target == domain.RoleOwner && requester != domain.RoleOwner {
		return deny("only the owner may change an owner's role")
	}
	return allow()
}
