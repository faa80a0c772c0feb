package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweepsOnStart(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "alice", "alice@example.com")
	invitee := seedUser(t, st, "bob", "bob@example.com")
	project := seedProject(t, st, owner)
	inv := seedInvitation(t, st, project.ID, owner.ID, invitee, time.Now().UTC().Add(-time.Hour))

	hk := NewHousekeepingService(st, slog.New(slog.DiscardHandler), time.Hour)

	// The worker sweeps once on startup before entering its tick loop, so
	// Start/Stop is enough to observe the transition.
	hk.Start()
	hk.Stop()

	got, err := st.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationExpired, got.Status)
}

func TestHousekeepingDefaultsInterval(t *testing.T) {
	st := newTestStore(t)

	hk := NewHousekeepingService(st, slog.New(slog.DiscardHandler), 0)
	require.Equal(t, time.Hour, hk.Interval)
}
