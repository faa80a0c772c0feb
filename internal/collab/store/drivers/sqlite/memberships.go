package sqlite

import (
	"context"
	"database/sql"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/crewdesk/crewdesk/internal/collab/store"
)

type membershipsRepo struct {
	q dbtx
}

const membershipColumns = `id, project_id, user_id, role, joined_at, invited_by, is_active, created_at, updated_at`

func (r *membershipsRepo) GetMembership(
	ctx context.Context,
	projectID, userID string,
) (domain.Membership, error) {
	// Prefer the active row when historical inactive rows exist for the pair.
	row := r.q.QueryRowContext(ctx,
		`SELECT `+membershipColumns+`
		 FROM project_members
		 WHERE project_id = ? AND user_id = ?
		 ORDER BY is_active DESC, joined_at DESC
		 LIMIT 1`,
		projectID, userID)
	return scanMembership(row)
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO project_members
		     (id, project_id, user_id, role, joined_at, invited_by, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.UserID, string(m.Role), m.JoinedAt,
		mapStringNull(m.InvitedBy), m.IsActive, m.CreatedAt, m.UpdatedAt)
	return mapConstraint(err)
}

func (r *membershipsRepo) SetMembershipActive(
	ctx context.Context,
	membershipID string,
	active bool,
) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE project_members
		 SET is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		active, membershipID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *membershipsRepo) SetMembershipRole(
	ctx context.Context,
	membershipID string,
	role domain.Role,
) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE project_members
		 SET role = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(role), membershipID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *membershipsRepo) CountActiveMembers(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_members WHERE project_id = ? AND is_active = 1`,
		projectID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *membershipsRepo) ListActiveMembers(
	ctx context.Context,
	projectID string,
) ([]domain.Member, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT m.id, m.project_id, m.user_id, m.role, m.joined_at, m.invited_by,
		        m.is_active, m.created_at, m.updated_at, u.name, u.email
		 FROM project_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.project_id = ? AND m.is_active = 1
		 ORDER BY m.joined_at DESC, m.id DESC`,
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		var invitedBy sql.NullString
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt, &invitedBy,
			&m.IsActive, &m.CreatedAt, &m.UpdatedAt, &m.UserName, &m.UserEmail,
		); err != nil {
			return nil, err
		}
		m.InvitedBy = mapNullString(invitedBy)
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMembership(row *sql.Row) (domain.Membership, error) {
	var m domain.Membership
	var invitedBy sql.NullString
	err := row.Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt, &invitedBy,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.InvitedBy = mapNullString(invitedBy)
	return m, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
