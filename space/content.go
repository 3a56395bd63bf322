package space

import (
	"context"
	"time"

	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateContent inserts a pending content row for an existing space.
func (s *Service) CreateContent(ctx context.Context, content *entity.Content) error {
	if _, err := s.GetSpace(ctx, content.SpaceID); err != nil {
		return err
	}

	content.Status = entity.ContentStatusPending
	_, tx := db.OpenSession(ctx, s.db)
	if err := tx.Create(content).Error; err != nil {
		return errors.Wrapf(err, "failed to create content")
	}
	return nil
}

func (s *Service) GetContent(ctx context.Context, id string) (*entity.Content, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var content entity.Content
	if err := tx.First(&content, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errors.ErrNotFound, "content %s", id)
		}
		return nil, errors.Wrapf(err, "failed to get content")
	}
	return &content, nil
}

// ListContentsBySpace returns the contents of a space newest first.
func (s *Service) ListContentsBySpace(ctx context.Context, spaceID string) ([]entity.Content, error) {
	_, tx := db.OpenSession(ctx, s.db)

	contents := []entity.Content{}
	if err := tx.Where("space_id = ?", spaceID).Order("created_at DESC").Find(&contents).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list contents")
	}
	return contents, nil
}

// HasContent reports whether the space has at least one content row.
func (s *Service) HasContent(ctx context.Context, spaceID string) (bool, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var count int64
	if err := tx.Model(&entity.Content{}).Where("space_id = ?", spaceID).Limit(1).Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "failed to count contents")
	}
	return count > 0, nil
}

// FinishContent moves a pending content to processed or error. It reports
// false when the row was not pending, so each transition happens at most once.
func (s *Service) FinishContent(ctx context.Context, id string, status entity.ContentStatus, extraction entity.Extraction, failure error) (bool, error) {
	if !status.Terminal() {
		return false, errors.Wrapf(errors.ErrInvalidParams, "status %q is not terminal", status)
	}

	updates := map[string]any{
		"status":     status,
		"extraction": datatypes.NewJSONType(extraction),
	}
	if failure != nil {
		updates["error"] = failure.Error()
	}

	_, tx := db.OpenSession(ctx, s.db)
	result := tx.Model(&entity.Content{}).
		Where("id = ? AND status = ?", id, entity.ContentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "failed to update content status")
	}
	return result.RowsAffected == 1, nil
}

// ListStalePending returns pending contents created before olderThan, oldest first.
func (s *Service) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]entity.Content, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var contents []entity.Content
	if err := tx.Where("status = ? AND created_at < ?", entity.ContentStatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&contents).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list pending contents")
	}
	return contents, nil
}
