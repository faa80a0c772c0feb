package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crewdesk/crewdesk/internal/collab/domain"
	"github.com/crewdesk/crewdesk/internal/collab/store"
	"github.com/crewdesk/crewdesk/pkg/idx"
	"github.com/crewdesk/crewdesk/pkg/slogx"
)

// ProjectService owns project creation. Creating a project and seating the
// creator as its OWNER happen in one transaction, which is what establishes
// the every-project-has-an-owner invariant the membership policies then
// protect.
type ProjectService struct {
	Store store.Store
}

func (s *ProjectService) CreateProject(
	ctx context.Context,
	ownerID, name, description string,
) (domain.Project, error) {
	log := slogx.FromContext(ctx)

	var project domain.Project
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()

		owner, err := tx.Users().GetUserByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		project = domain.Project{
			ID:          idx.New().String(),
			OwnerID:     owner.ID,
			Name:        name,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Projects().CreateProject(ctx, project); err != nil {
			return err
		}

		membership := domain.Membership{
			ID:        idx.New().String(),
			ProjectID: project.ID,
			UserID:    owner.ID,
			Role:      domain.RoleOwner,
			JoinedAt:  now,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Memberships().CreateMembership(ctx, membership)
	})
	if err != nil {
		return domain.Project{}, err
	}

	log.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("owner_id", ownerID),
	)
	return project, nil
}

// GetProject returns a project by id.
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	project, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	return project, nil
}
