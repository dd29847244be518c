package types

import (
	"time"

	"github.com/google/uuid"
)

// SectionProblem links a problem into a section at a position. The
// (section_id, problem_id) index makes re-attachment a silent skip instead
// of a duplicate row; the (section_id, order) index guards the position
// sequence.
type SectionProblem struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:uidx_section_problem,priority:1;uniqueIndex:uidx_section_problem_order,priority:1" json:"section_id"`
	Section   *SheetSection `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	ProblemID uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:uidx_section_problem,priority:2" json:"problem_id"`
	Problem   *Problem      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProblemID;references:ID" json:"problem,omitempty"`
	Order     int           `gorm:"column:order;not null;uniqueIndex:uidx_section_problem_order,priority:2" json:"order"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}

func (SectionProblem) TableName() string { return "section_problem" }
