package service

import (
	"context"
	"testing"
	"time"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/crewdesk/crewdesk/internal/collab/store"
	"github.com/crewdesk/crewdesk/internal/collab/store/drivers/sqlite"
	"github.com/crewdesk/crewdesk/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st store.Store, name, email string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:        idx.New().String(),
		Email:     email,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

// seedProject creates a project and seats the owner with an OWNER membership,
// mirroring what ProjectService.CreateProject does.
func seedProject(t *testing.T, st store.Store, owner domain.User) domain.Project {
	t.Helper()

	now := time.Now().UTC()
	p := domain.Project{
		ID:        idx.New().String(),
		OwnerID:   owner.ID,
		Name:      "test-project",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Projects().CreateProject(context.Background(), p))

	seedMember(t, st, p.ID, owner, domain.RoleOwner)
	return p
}

func seedMember(t *testing.T, st store.Store, projectID string, user domain.User, role domain.Role) domain.Membership {
	t.Helper()

	now := time.Now().UTC()
	m := domain.Membership{
		ID:        idx.New().String(),
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
		JoinedAt:  now,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Memberships().CreateMembership(context.Background(), m))
	return m
}

// seedInvitation inserts an invitation row directly, bypassing the service,
// so tests can control the expiry.
func seedInvitation(
	t *testing.T,
	st store.Store,
	projectID, inviterID string,
	invitee domain.User,
	expiresAt time.Time,
) domain.Invitation {
	t.Helper()

	now := time.Now().UTC()
	token, err := newInviteToken()
	require.NoError(t, err)

	inv := domain.Invitation{
		ID:           idx.New().String(),
		ProjectID:    projectID,
		InviterID:    inviterID,
		InviteeEmail: invitee.Email,
		InviteeID:    invitee.ID,
		Status:       domain.InvitationPending,
		Token:        token,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Invitations().CreateInvitation(context.Background(), inv))
	return inv
}
