package domain

import "time"

// Membership is one user's participation in one project. Removal is modelled
// as IsActive=false rather than deletion so the history stays queryable.
type Membership struct {
	ID        string
	ProjectID string
	UserID    string
	Role      Role
	JoinedAt  time.Time
	InvitedBy string // Empty when the member joined without an invitation
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a membership joined with the user's identity for presentation.
type Member struct {
	Membership

	UserName  string
	UserEmail string
}
