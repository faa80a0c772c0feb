package service

import (
	"context"
	"testing"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &ProjectService{Store: st}

	owner := seedUser(t, st, "alice", "alice@example.com")

	t.Run("creator becomes the owner", func(t *testing.T) {
		project, err := svc.CreateProject(ctx, owner.ID, "skunkworks", "internal tooling")
		require.NoError(t, err)
		require.Equal(t, owner.ID, project.OwnerID)
		require.Equal(t, "skunkworks", project.Name)

		m, err := st.Memberships().GetMembership(ctx, project.ID, owner.ID)
		require.NoError(t, err)
		require.True(t, m.IsActive)
		require.Equal(t, domain.RoleOwner, m.Role)
	})

	t.Run("unknown creator", func(t *testing.T) {
		_, err := svc.CreateProject(ctx, "nope", "skunkworks", "")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetProject(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &ProjectService{Store: st}

	owner := seedUser(t, st, "alice", "alice@example.com")
	project := seedProject(t, st, owner)

	got, err := svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, project.ID, got.ID)

	_, err = svc.GetProject(ctx, "nope")
	require.ErrorIs(t, err, ErrProjectNotFound)
}
