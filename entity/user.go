package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/tutorwise/errors"
	"gorm.io/gorm"
)

type User struct {
	ID             string `gorm:"primaryKey;size:36"`
	Email          string `gorm:"uniqueIndex;size:255;not null"`
	HashedPassword string `gorm:"size:255;not null"`
	FullName       *string
	IsActive       bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) Save(db *gorm.DB) error {
	return errors.Wrapf(db.Save(u).Error, "failed to save user")
}
