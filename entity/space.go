package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/tutorwise/errors"
	"gorm.io/gorm"
)

const (
	SpaceTitleMaxLen       = 255
	SpaceDescriptionMaxLen = 1000
)

type Space struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"size:1000" json:"description"`
	OwnerID     string    `gorm:"index:idx_space_owner;size:36;not null" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Contents []Content `gorm:"foreignKey:SpaceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Space) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Space) Save(db *gorm.DB) error {
	return errors.Wrapf(db.Save(s).Error, "failed to save space")
}
