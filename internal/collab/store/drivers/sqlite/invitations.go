package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
)

type invitationsRepo struct {
	q dbtx
}

const invitationColumns = `id, project_id, inviter_id, invitee_email, invitee_id, status,
	invite_token, message, expires_at, responded_at, created_at, updated_at`

func (r *invitationsRepo) GetInvitationByID(
	ctx context.Context,
	id string,
) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM project_invitations WHERE id = ?`, id)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByToken(
	ctx context.Context,
	token string,
) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM project_invitations WHERE invite_token = ?`, token)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetPendingInvitation(
	ctx context.Context,
	projectID, inviteeEmail string,
) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+`
		 FROM project_invitations
		 WHERE project_id = ? AND invitee_email = ? AND status = 'PENDING'`,
		projectID, inviteeEmail)
	return scanInvitation(row)
}

func (r *invitationsRepo) ListProjectInvitations(
	ctx context.Context,
	projectID string,
) ([]domain.Invitation, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+invitationColumns+`
		 FROM project_invitations
		 WHERE project_id = ?
		 ORDER BY created_at DESC, id DESC`,
		projectID)
	if err != nil {
		return nil, err
	}
	return collectInvitations(rows)
}

func (r *invitationsRepo) ListUserInvitations(
	ctx context.Context,
	userID, email string,
	status *domain.InvitationStatus,
) ([]domain.Invitation, error) {
	// One row per invitation id, so the id-or-email match is already
	// de-duplicated.
	filter := ""
	if status != nil {
		filter = string(*status)
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+invitationColumns+`
		 FROM project_invitations
		 WHERE (invitee_id = ? OR invitee_email = ?)
		   AND (? = '' OR status = ?)
		 ORDER BY created_at DESC, id DESC`,
		userID, email, filter, filter)
	if err != nil {
		return nil, err
	}
	return collectInvitations(rows)
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO project_invitations
		     (id, project_id, inviter_id, invitee_email, invitee_id, status,
		      invite_token, message, expires_at, responded_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ProjectID, inv.InviterID, inv.InviteeEmail,
		mapStringNull(inv.InviteeID), string(inv.Status), inv.Token, inv.Message,
		inv.ExpiresAt, mapOptionalTime(inv.RespondedAt), inv.CreatedAt, inv.UpdatedAt)
	return mapConstraint(err)
}

func (r *invitationsRepo) UpdateInvitationStatus(
	ctx context.Context,
	id string,
	status domain.InvitationStatus,
	respondedAt *time.Time,
	inviteeID string,
) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE project_invitations
		 SET status = ?,
		     responded_at = COALESCE(?, responded_at),
		     invitee_id = COALESCE(?, invitee_id),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(status), mapOptionalTime(respondedAt), mapStringNull(inviteeID), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM project_invitations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *invitationsRepo) MarkExpiredInvitations(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE project_invitations
		 SET status = 'EXPIRED', updated_at = CURRENT_TIMESTAMP
		 WHERE status = 'PENDING' AND expires_at < ?`,
		now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanInvitation(row *sql.Row) (domain.Invitation, error) {
	var inv domain.Invitation
	var inviteeID sql.NullString
	var respondedAt sql.NullTime
	err := row.Scan(
		&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeEmail, &inviteeID,
		&inv.Status, &inv.Token, &inv.Message, &inv.ExpiresAt, &respondedAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.InviteeID = mapNullString(inviteeID)
	inv.RespondedAt = mapNullTimePtr(respondedAt)
	return inv, nil
}

func collectInvitations(rows *sql.Rows) ([]domain.Invitation, error) {
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		var inviteeID sql.NullString
		var respondedAt sql.NullTime
		if err := rows.Scan(
			&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeEmail, &inviteeID,
			&inv.Status, &inv.Token, &inv.Message, &inv.ExpiresAt, &respondedAt,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		inv.InviteeID = mapNullString(inviteeID)
		inv.RespondedAt = mapNullTimePtr(respondedAt)
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}
