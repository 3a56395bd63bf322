package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/tutorwise/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentStatus string

const (
	ContentStatusPending   ContentStatus = "pending"
	ContentStatusProcessed ContentStatus = "processed"
	ContentStatusError     ContentStatus = "error"
)

// Terminal reports whether no further transition is allowed.
func (s ContentStatus) Terminal() bool {
	return s == ContentStatusProcessed || s == ContentStatusError
}

// Extraction records how the text of a content was obtained.
type Extraction struct {
	Degraded bool   `json:"degraded,omitempty"`
	Cause    string `json:"cause,omitempty"`
	Chars    int    `json:"chars"`
}

type Content struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	SpaceID   string        `gorm:"index:idx_content_space;size:36;not null" json:"space_id"`
	OwnerID   *string       `gorm:"size:36" json:"owner_id"`
	Title     *string       `gorm:"size:255" json:"title"`
	FilePath  string        `gorm:"not null" json:"file_path"`
	MimeType  string        `gorm:"size:255" json:"mime_type"`
	Status    ContentStatus `gorm:"index:idx_content_status;size:16;not null;default:pending" json:"status"`
	CreatedAt time.Time     `gorm:"index:idx_content_status" json:"created_at"`

	Error      string                         `json:"error,omitempty"`
	Extraction datatypes.JSONType[Extraction] `json:"extraction"`
}

func (c *Content) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = ContentStatusPending
	}
	return nil
}

// MemoryOwner is the user id the extracted text is stored under.
func (c *Content) MemoryOwner() string {
	if c.OwnerID == nil || *c.OwnerID == "" {
		return "anon"
	}
	return *c.OwnerID
}

func (c *Content) Save(db *gorm.DB) error {
	return errors.Wrapf(db.Save(c).Error, "failed to save content")
}
