package space

import (
	"context"
	"log/slog"
	"strings"

	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/db"
	"github.com/habiliai/tutorwise/internal/mylog"
	"gorm.io/gorm"
)

type (
	CreateSpaceRequest struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		OwnerID     string  `json:"owner_id"`
	}

	// UpdateSpaceRequest is a partial update; nil fields are left unchanged.
	UpdateSpaceRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}

	Service struct {
		db     *gorm.DB
		logger *slog.Logger
	}
)

func NewService(gormDB *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = mylog.Discard()
	}
	return &Service{db: gormDB, logger: logger}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "title is required")
	}
	if len(title) > entity.SpaceTitleMaxLen {
		return errors.Wrapf(errors.ErrInvalidParams, "title must be at most %d characters", entity.SpaceTitleMaxLen)
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && len(*description) > entity.SpaceDescriptionMaxLen {
		return errors.Wrapf(errors.ErrInvalidParams, "description must be at most %d characters", entity.SpaceDescriptionMaxLen)
	}
	return nil
}

func (s *Service) CreateSpace(ctx context.Context, req CreateSpaceRequest) (*entity.Space, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "owner_id is required")
	}

	_, tx := db.OpenSession(ctx, s.db)
	space := &entity.Space{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.OwnerID,
	}
	if err := tx.Create(space).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to create space")
	}

	return space, nil
}

// ListSpaces returns spaces newest first, optionally only those of ownerID.
func (s *Service) ListSpaces(ctx context.Context, ownerID string) ([]entity.Space, error) {
	_, tx := db.OpenSession(ctx, s.db)

	query := tx.Order("created_at DESC")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	spaces := []entity.Space{}
	if err := query.Find(&spaces).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list spaces")
	}
	return spaces, nil
}

func (s *Service) GetSpace(ctx context.Context, id string) (*entity.Space, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var space entity.Space
	if err := tx.First(&space, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errors.ErrNotFound, "space %s", id)
		}
		return nil, errors.Wrapf(err, "failed to get space")
	}
	return &space, nil
}

func (s *Service) UpdateSpace(ctx context.Context, id string, req UpdateSpaceRequest) (*entity.Space, error) {
	space, err := s.GetSpace(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, err
		}
		space.Title = *req.Title
	}
	if req.Description != nil {
		if err := validateDescription(req.Description); err != nil {
			return nil, err
		}
		space.Description = req.Description
	}

	_, tx := db.OpenSession(ctx, s.db)
	if err := space.Save(tx); err != nil {
		return nil, err
	}
	return space, nil
}

// DeleteSpace removes the space and its content rows.
func (s *Service) DeleteSpace(ctx context.Context, id string) error {
	space, err := s.GetSpace(ctx, id)
	if err != nil {
		return err
	}

	_, tx := db.OpenSession(ctx, s.db)
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("space_id = ?", space.ID).Delete(&entity.Content{}).Error; err != nil {
			return errors.Wrapf(err, "failed to delete contents of space")
		}
		if err := tx.Delete(space).Error; err != nil {
			return errors.Wrapf(err, "failed to delete space")
		}
		return nil
	})
}
