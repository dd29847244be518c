package types

import (
	"time"

	"github.com/google/uuid"
)

// SheetSection order values are dense and 1-based per sheet under normal
// operation; the composite unique index backs up the append path against
// concurrent writers.
type SheetSection struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	SheetID     uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:uidx_sheet_section_order,priority:1" json:"sheet_id"`
	Sheet       *Sheet            `gorm:"constraint:OnDelete:CASCADE;foreignKey:SheetID;references:ID" json:"sheet,omitempty"`
	Title       string            `gorm:"column:title;not null" json:"title"`
	Description string            `gorm:"column:description" json:"description"`
	Order       int               `gorm:"column:order;not null;uniqueIndex:uidx_sheet_section_order,priority:2" json:"order"`
	Problems    []*SectionProblem `gorm:"foreignKey:SectionID;references:ID" json:"problems,omitempty"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (SheetSection) TableName() string { return "sheet_section" }
