package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Problem is soft-deleted by flipping IsActive, never by removing the row:
// section links keep pointing at inactive problems and sheet reads return
// them as stored.
type Problem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string         `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Difficulty  string         `gorm:"column:difficulty;not null" json:"difficulty"`
	Tags        datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`
	Link        string         `gorm:"column:link" json:"link"`
	Companies   datatypes.JSON `gorm:"column:companies;type:jsonb" json:"companies"`
	// No db-side default: a default tag makes the ORM omit a false value on
	// insert, silently storing true. Services always assign IsActive.
	IsActive    bool           `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Problem) TableName() string { return "problem" }
