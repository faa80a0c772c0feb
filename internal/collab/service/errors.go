package service

import (
	"errors"
	"fmt"
)

// Failure kinds. Every specific sentinel below wraps exactly one kind so
// callers can classify failures with errors.Is without matching each sentinel.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrProjectNotFound    = fmt.Errorf("%w: project", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrInvitationNotFound = fmt.Errorf("%w: invitation", ErrNotFound)
	ErrMembershipNotFound = fmt.Errorf("%w: membership", ErrNotFound)

	ErrNotProjectOwner  = fmt.Errorf("%w: only the project owner may do this", ErrForbidden)
	ErrPermissionDenied = fmt.Errorf("%w: insufficient role", ErrForbidden)
	ErrEmailMismatch    = fmt.Errorf("%w: invitation was issued to a different email", ErrForbidden)
	ErrOwnerSelfChange  = fmt.Errorf("%w: the owner cannot change their own role", ErrForbidden)

	ErrDuplicateInvitation = fmt.Errorf("%w: a pending invitation already exists for this email", ErrConflict)

	ErrInvitationProcessed = fmt.Errorf("%w: invitation has already been processed", ErrInvalidState)
	ErrInvitationExpired   = fmt.Errorf("%w: invitation has expired", ErrInvalidState)
)

// ErrInvalidRole reports an unknown role value. Input validation is otherwise
// the transport layer's concern; the role enum is domain knowledge so it is
// checked here.
var ErrInvalidRole = errors.New("invalid role")

// ErrTooManyLookups reports that the anonymous token-lookup throttle rejected
// the call.
var ErrTooManyLookups = errors.New("too many invitation lookups")
