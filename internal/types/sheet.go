package types

import (
	"time"

	"github.com/google/uuid"
)

type Sheet struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string          `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Description string          `gorm:"column:description" json:"description"`
	Sections    []*SheetSection `gorm:"foreignKey:SheetID;references:ID" json:"sections,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (Sheet) TableName() string { return "sheet" }
