package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/crewdesk/crewdesk/internal/collab/store"
	"github.com/crewdesk/crewdesk/pkg/cryptox"
	"github.com/crewdesk/crewdesk/pkg/idx"
	"github.com/crewdesk/crewdesk/pkg/slogx"

	"golang.org/x/time/rate"
)

// InvitationTTL is how long an invitation stays redeemable after creation.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationService drives the invitation lifecycle: create, accept, decline,
// read and delete. Every lifecycle operation runs the lazy expiry sweep
// before inspecting status, so a lapsed PENDING invitation is transitioned to
// EXPIRED before anything can act on it. The sweep commits on its own: its
// self-heal must stick even when the requested operation then fails.
type InvitationService struct {
	Store store.Store

	// anonLimiter throttles token-addressed calls made without a caller
	// identity, to slow down invite-token guessing.
	anonLimiter *rate.Limiter
}

func NewInvitationService(st store.Store) *InvitationService {
	return &InvitationService{
		Store:       st,
		anonLimiter: rate.NewLimiter(rate.Every(time.Second), 30),
	}
}

// CreateInvitation issues an invitation for the invitee to join the project.
// Only the project owner may invite. The invitee's account must exist; the
// invitation is addressed to that account's email.
func (s *InvitationService) CreateInvitation(
	ctx context.Context,
	projectID string,
	inviteeID string,
	inviterID string,
	message string,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// 1. Sweep lapsed invitations so the duplicate pre-check below only sees
	// genuinely pending rows.
	if err := s.sweep(ctx, now); err != nil {
		return domain.Invitation{}, err
	}

	var inv domain.Invitation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. The project must exist and the inviter must own it.
		project, err := tx.Projects().GetProjectByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		if project.OwnerID != inviterID {
			log.Warn("invitation attempted by non-owner",
				slog.String("project_id", projectID),
				slog.String("inviter_id", inviterID),
			)
			return ErrNotProjectOwner
		}

		// 3. Resolve the invitee; the invitation is keyed by their email.
		invitee, err := tx.Users().GetUserByID(ctx, inviteeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		// 4. Reject a second outstanding invitation for the same email.
		_, err = tx.Invitations().GetPendingInvitation(ctx, projectID, invitee.Email)
		if err == nil {
			return ErrDuplicateInvitation
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// 5. Mint the opaque token and persist.
		token, err := newInviteToken()
		if err != nil {
			log.Error("failed to generate invite token", slog.Any("error", err))
			return err
		}

		inv = domain.Invitation{
			ID:           idx.New().String(),
			ProjectID:    projectID,
			InviterID:    inviterID,
			InviteeEmail: invitee.Email,
			InviteeID:    invitee.ID,
			Status:       domain.InvitationPending,
			Token:        token,
			Message:      message,
			ExpiresAt:    now.Add(InvitationTTL),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			// The (project, email) unique index is the authoritative guard;
			// losing a race to it is the same conflict as step 4.
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateInvitation
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Invitation{}, err
	}

	log.Debug("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("project_id", inv.ProjectID),
		slog.String("invitee_email", inv.InviteeEmail),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return inv, nil
}

// AcceptInvitation transitions a PENDING invitation to ACCEPTED. With a known
// userID the invitee becomes a MEMBER of the project; accepting while already
// a member is a no-op on membership, not an error. An anonymous acceptance
// (empty userID) records the response but creates no membership, since that
// needs an account.
//
// Note the responder's email is deliberately not compared against the invitee
// email here; DeclineInvitation does compare. The asymmetry mirrors upstream
// behavior and stays until product confirms a stricter rule.
func (s *InvitationService) AcceptInvitation(ctx context.Context, token, userID string) error {
	log := slogx.FromContext(ctx)

	if userID == "" && !s.allowAnonymousLookup() {
		return ErrTooManyLookups
	}

	now := time.Now().UTC()
	if err := s.sweep(ctx, now); err != nil {
		return err
	}

	var expiredMidOp bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := getPending(ctx, tx, token)
		if err != nil {
			return err
		}
		if inv.Lapsed(now) {
			// Lapsed between the sweep and this read. Expiry wins: persist
			// the transition, fail the acceptance after commit.
			if err := tx.Invitations().UpdateInvitationStatus(
				ctx, inv.ID, domain.InvitationExpired, nil, ""); err != nil {
				return err
			}
			expiredMidOp = true
			return nil
		}

		if userID == "" {
			// Anonymous acceptance: record the response only.
			return tx.Invitations().UpdateInvitationStatus(
				ctx, inv.ID, domain.InvitationAccepted, &now, "")
		}

		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Invitations().UpdateInvitationStatus(
			ctx, inv.ID, domain.InvitationAccepted, &now, user.ID); err != nil {
			return err
		}

		// Membership upsert. Any existing row for the pair, active or
		// historical, leaves membership untouched.
		_, err = tx.Memberships().GetMembership(ctx, inv.ProjectID, user.ID)
		if err == nil {
			log.Debug("invitation accepted by existing member",
				slog.String("invitation_id", inv.ID),
				slog.String("user_id", user.ID),
			)
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		membership := domain.Membership{
			ID:        idx.New().String(),
			ProjectID: inv.ProjectID,
			UserID:    user.ID,
			Role:      domain.RoleMember,
			JoinedAt:  now,
			InvitedBy: inv.InviterID,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			// A concurrent accept inserted the row first; that is still a
			// successful acceptance.
			if errors.Is(err, store.ErrAlreadyExists) {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if expiredMidOp {
		return ErrInvitationExpired
	}

	log.Info("invitation accepted", slog.String("user_id", userID))
	return nil
}

// DeclineInvitation transitions a PENDING invitation to REJECTED. A known
// responder must own the invited email address.
func (s *InvitationService) DeclineInvitation(ctx context.Context, token, userID string) error {
	log := slogx.FromContext(ctx)

	if userID == "" && !s.allowAnonymousLookup() {
		return ErrTooManyLookups
	}

	now := time.Now().UTC()
	if err := s.sweep(ctx, now); err != nil {
		return err
	}

	var expiredMidOp bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := getPending(ctx, tx, token)
		if err != nil {
			return err
		}
		if inv.Lapsed(now) {
			if err := tx.Invitations().UpdateInvitationStatus(
				ctx, inv.ID, domain.InvitationExpired, nil, ""); err != nil {
				return err
			}
			expiredMidOp = true
			return nil
		}

		if userID == "" {
			return tx.Invitations().UpdateInvitationStatus(
				ctx, inv.ID, domain.InvitationRejected, &now, "")
		}

		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if !strings.EqualFold(user.Email, inv.InviteeEmail) {
			log.Warn("invitation declined by wrong account",
				slog.String("invitation_id", inv.ID),
				slog.String("user_id", user.ID),
			)
			return ErrEmailMismatch
		}

		return tx.Invitations().UpdateInvitationStatus(
			ctx, inv.ID, domain.InvitationRejected, &now, user.ID)
	})
	if err != nil {
		return err
	}
	if expiredMidOp {
		return ErrInvitationExpired
	}

	log.Info("invitation declined", slog.String("user_id", userID))
	return nil
}

// GetInvitationByToken returns the invitation addressed by token, with its
// status current as of the expiry sweep that runs first.
func (s *InvitationService) GetInvitationByToken(
	ctx context.Context,
	token string,
) (domain.Invitation, error) {
	if !s.allowAnonymousLookup() {
		return domain.Invitation{}, ErrTooManyLookups
	}

	if err := s.sweep(ctx, time.Now().UTC()); err != nil {
		return domain.Invitation{}, err
	}

	inv, err := s.Store.Invitations().GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}
	return inv, nil
}

// ListProjectInvitations returns every invitation of a project, newest first.
// Owner-only, like issuing and deleting invitations.
func (s *InvitationService) ListProjectInvitations(
	ctx context.Context,
	projectID, requesterID string,
) ([]domain.Invitation, error) {
	if err := s.sweep(ctx, time.Now().UTC()); err != nil {
		return nil, err
	}

	project, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.OwnerID != requesterID {
		return nil, ErrNotProjectOwner
	}

	return s.Store.Invitations().ListProjectInvitations(ctx, projectID)
}

// ListUserInvitations returns invitations addressed to the user's id or
// email, newest first. A nil status returns all statuses.
func (s *InvitationService) ListUserInvitations(
	ctx context.Context,
	userID string,
	status *domain.InvitationStatus,
) ([]domain.Invitation, error) {
	if err := s.sweep(ctx, time.Now().UTC()); err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.Store.Invitations().ListUserInvitations(ctx, user.ID, user.Email, status)
}

// DeleteInvitation hard-deletes an invitation regardless of its status.
// Owner-only.
func (s *InvitationService) DeleteInvitation(ctx context.Context, invitationID, requesterID string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetInvitationByID(ctx, invitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}

		project, err := tx.Projects().GetProjectByID(ctx, inv.ProjectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		if project.OwnerID != requesterID {
			return ErrNotProjectOwner
		}

		return tx.Invitations().DeleteInvitation(ctx, inv.ID)
	})
	if err != nil {
		return err
	}

	log.Info("invitation deleted",
		slog.String("invitation_id", invitationID),
		slog.String("requester_id", requesterID),
	)
	return nil
}

// sweep transitions every lapsed PENDING invitation to EXPIRED in its own
// auto-committing scope.
func (s *InvitationService) sweep(ctx context.Context, now time.Time) error {
	swept, err := s.Store.Invitations().MarkExpiredInvitations(ctx, now)
	if err != nil {
		return err
	}
	if swept > 0 {
		slogx.FromContext(ctx).Debug("expired invitations swept",
			slog.Int64("count", swept),
		)
	}
	return nil
}

// getPending fetches the invitation by token and gates on status. EXPIRED
// reports expired; any other terminal status reports already-processed.
func getPending(ctx context.Context, tx store.Tx, token string) (domain.Invitation, error) {
	inv, err := tx.Invitations().GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}

	switch {
	case inv.Status == domain.InvitationExpired:
		return domain.Invitation{}, ErrInvitationExpired
	case inv.Status.Terminal():
		return domain.Invitation{}, ErrInvitationProcessed
	}
	return inv, nil
}

func (s *InvitationService) allowAnonymousLookup() bool {
	// A zero-value service (struct literal) carries no limiter; that means
	// no throttle rather than a nil dereference.
	return s.anonLimiter == nil || s.anonLimiter.Allow()
}

// newInviteToken mints an opaque invite token: a ULID for the time-ordered
// component plus 256 bits of randomness for unguessability. The unique index
// on the token column is the authoritative collision guard.
func newInviteToken() (string, error) {
	random, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	return idx.New().String() + "." + random, nil
}
