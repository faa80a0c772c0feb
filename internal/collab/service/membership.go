package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/crewdesk/crewdesk/internal/collab/store"
	"github.com/crewdesk/crewdesk/pkg/slogx"
)

// MembershipService covers the member-facing use cases: listing members,
// changing a member's role and removing a member. Mutations are gated by a
// minimum-role check and the role-policy matrices; removal is a soft delete
// so membership history stays queryable.
type MembershipService struct {
	Store store.Store
}

// ListMembers returns the project's active members, newest joiners first.
// The requester must be an active member of the project.
func (s *MembershipService) ListMembers(
	ctx context.Context,
	projectID, requesterID string,
) ([]domain.Member, error) {
	if _, err := s.Store.Projects().GetProjectByID(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if _, err := s.requireRole(ctx, s.Store, projectID, requesterID, domain.RoleMember); err != nil {
		return nil, err
	}

	return s.Store.Memberships().ListActiveMembers(ctx, projectID)
}

// ChangeMemberRole sets a member's role. The requester needs at least the
// MANAGER role; owner-related changes are restricted by the policy matrix and
// an owner can never change their own role.
func (s *MembershipService) ChangeMemberRole(
	ctx context.Context,
	projectID, targetUserID string,
	newRole domain.Role,
	requesterID string,
) error {
	log := slogx.FromContext(ctx)

	if !newRole.Valid() {
		return ErrInvalidRole
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Projects().GetProjectByID(ctx, projectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		requester, err := s.requireRole(ctx, tx, projectID, requesterID, domain.RoleManager)
		if err != nil {
			return err
		}

		target, err := tx.Memberships().GetMembership(ctx, projectID, targetUserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		if !target.IsActive {
			return ErrMembershipNotFound
		}

		if requesterID == targetUserID && target.Role == domain.RoleOwner {
			return ErrOwnerSelfChange
		}

		if d := CanChangeRole(requester.Role, target.Role, newRole); !d.Allowed {
			log.Warn("role change denied",
				slog.String("project_id", projectID),
				slog.String("requester_id", requesterID),
				slog.String("target_user_id", targetUserID),
				slog.String("reason", d.Reason),
			)
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		return tx.Memberships().SetMembershipRole(ctx, target.ID, newRole)
	})
	if err != nil {
		return err
	}

	log.Info("member role changed",
		slog.String("project_id", projectID),
		slog.String("target_user_id", targetUserID),
		slog.String("new_role", string(newRole)),
		slog.String("requester_id", requesterID),
	)
	return nil
}

// RemoveMember deactivates a membership. The row is kept (is_active=false) so
// the project's history survives. The owner is never removable, and only the
// removal matrix decides who may remove whom; any active member may remove
// themselves except the owner.
func (s *MembershipService) RemoveMember(
	ctx context.Context,
	projectID, targetUserID, requesterID string,
) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Projects().GetProjectByID(ctx, projectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		target, err := tx.Memberships().GetMembership(ctx, projectID, targetUserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		if !target.IsActive {
			return ErrMembershipNotFound
		}

		requester, err := tx.Memberships().GetMembership(ctx, projectID, requesterID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPermissionDenied
			}
			return err
		}
		if !requester.IsActive {
			return ErrPermissionDenied
		}

		if d := CanRemoveMember(requester.Role, target.Role, requesterID == targetUserID); !d.Allowed {
			log.Warn("member removal denied",
				slog.String("project_id", projectID),
				slog.String("requester_id", requesterID),
				slog.String("target_user_id", targetUserID),
				slog.String("reason", d.Reason),
			)
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		return tx.Memberships().SetMembershipActive(ctx, target.ID, false)
	})
	if err != nil {
		return err
	}

	log.Info("member removed",
		slog.String("project_id", projectID),
		slog.String("target_user_id", targetUserID),
		slog.String("requester_id", requesterID),
	)
	return nil
}

// requireRole loads the requester's membership and checks it is active with
// at least the required role. st may be the root store or a Tx-scoped store.
func (s *MembershipService) requireRole(
	ctx context.Context,
	st store.Store,
	projectID, userID string,
	required domain.Role,
) (domain.Membership, error) {
	m, err := st.Memberships().GetMembership(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Membership{}, ErrPermissionDenied
		}
		return domain.Membership{}, err
	}
	if !m.IsActive || !m.Role.Meets(required) {
		return domain.Membership{}, ErrPermissionDenied
	}
	return m, nil
}
