package store

import (
	"context"
	"errors"
	"time"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a Tx/WithTx pair so multi-step operations run in one
// transaction scope with read-your-own-writes semantics.
type Store interface {
	Users() Users
	Projects() Projects
	Memberships() Memberships
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the user directory consumed by the invitation and membership
// use cases.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail returns a user by email (exact match, emails are unique).
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error
}

// Projects is the project directory consumed by the invitation and membership
// use cases.
type Projects interface {
	// GetProjectByID returns a project by id.
	GetProjectByID(ctx context.Context, id string) (domain.Project, error)

	// CreateProject inserts a new project row (id is ULID).
	CreateProject(ctx context.Context, p domain.Project) error
}

type Memberships interface {
	// GetMembership returns the (project, user) membership row regardless of
	// the active flag. When historical inactive rows exist the current row
	// wins.
	GetMembership(ctx context.Context, projectID, userID string) (domain.Membership, error)

	// CreateMembership inserts a new membership row. Returns ErrAlreadyExists
	// when an active row for the same (project, user) pair exists; the unique
	// index is the authoritative guard against racing inserts.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// SetMembershipActive flips the active flag on a membership row.
	SetMembershipActive(ctx context.Context, membershipID string, active bool) error

	// SetMembershipRole changes the role on a membership row.
	SetMembershipRole(ctx context.Context, membershipID string, role domain.Role) error

	// CountActiveMembers returns the number of active members of a project.
	CountActiveMembers(ctx context.Context, projectID string) (int, error)

	// ListActiveMembers returns active memberships joined with user identity,
	// newest joiners first.
	ListActiveMembers(ctx context.Context, projectID string) ([]domain.Member, error)
}

type Invitations interface {
	// GetInvitationByID returns an invitation by id.
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetInvitationByToken returns an invitation by its opaque token.
	GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// GetPendingInvitation returns the PENDING invitation for a
	// (project, invitee email) pair, if any.
	GetPendingInvitation(ctx context.Context, projectID, inviteeEmail string) (domain.Invitation, error)

	// ListProjectInvitations returns every invitation of a project, newest
	// first.
	ListProjectInvitations(ctx context.Context, projectID string) ([]domain.Invitation, error)

	// ListUserInvitations returns invitations addressed to the user's id or
	// email, de-duplicated, newest first. A nil status returns all statuses.
	ListUserInvitations(ctx context.Context, userID, email string, status *domain.InvitationStatus) ([]domain.Invitation, error)

	// CreateInvitation inserts a new invitation. Returns ErrAlreadyExists when
	// the (project, invitee email) pair or the token collides.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// UpdateInvitationStatus transitions an invitation's status. A nil
	// respondedAt and an empty inviteeID leave the stored values untouched.
	UpdateInvitationStatus(ctx context.Context, id string, status domain.InvitationStatus, respondedAt *time.Time, inviteeID string) error

	// DeleteInvitation hard-deletes an invitation row.
	DeleteInvitation(ctx context.Context, id string) error

	// MarkExpiredInvitations transitions every PENDING invitation whose expiry
	// is before now to EXPIRED and returns how many rows changed. Callers run
	// this before any status-dependent read so a lapsed PENDING row is never
	// acted upon.
	MarkExpiredInvitations(ctx context.Context, now time.Time) (int64, error)
}
