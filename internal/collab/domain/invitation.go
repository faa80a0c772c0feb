package domain

import "time"

// InvitationStatus is the lifecycle state of an invitation. PENDING is the
// only non-terminal state; ACCEPTED, REJECTED and EXPIRED are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// Terminal reports whether no further status transition is permitted.
func (s InvitationStatus) Terminal() bool { return s != InvitationPending }

// Invitation is a time-boxed, token-addressable offer for a user to join a
// project. The token is the only credential needed to act on an invitation
// anonymously.
type Invitation struct {
	ID           string
	ProjectID    string
	InviterID    string
	InviteeEmail string
	InviteeID    string // Empty until the invitee account is known
	Status       InvitationStatus
	Token        string
	Message      string
	ExpiresAt    time.Time
	RespondedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Lapsed reports whether the invitation's expiry has passed at the given time.
func (inv Invitation) Lapsed(now time.Time) bool { return now.After(inv.ExpiresAt) }
