package model

import (
	"time"

	"gorm.io/gorm"
)

type AssessmentStatus string

const (
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
	AssessmentAbandoned  AssessmentStatus = "abandoned"
)

// Assessment is one attempt at the full three-section test by a user.
// AttemptNumber is unique per user; at most one in_progress assessment may
// exist per user (partial unique index, see database migration in cmd).
type Assessment struct {
	ID            uint               `gorm:"primarykey" json:"id"`
	UserID        uint               `json:"user_id" gorm:"not null;index;uniqueIndex:uq_assessments_user_attempt,priority:1"`
	AttemptNumber int                `json:"attempt_number" gorm:"not null;uniqueIndex:uq_assessments_user_attempt,priority:2"`
	Status        AssessmentStatus   `json:"status" gorm:"not null;default:'in_progress';index"`
	StartedAt     time.Time          `json:"started_at" gorm:"autoCreateTime"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty" gorm:"index"`
	CurrentKind   *SectionKind       `json:"current_kind,omitempty"`
	CurrentIndex  int                `json:"current_index" gorm:"not null;default:0"`
	TotalSections int                `json:"total_sections" gorm:"not null;default:3"`
	ResultsReady  bool               `json:"results_ready" gorm:"not null;default:false"`
	Sections      []TestSection      `json:"sections,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Results       *AssessmentResults `json:"results,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`
}

// CompletedSectionCount only counts loaded Sections; callers that need it
// must fetch the assessment with its sections preloaded.
func (a *Assessment) CompletedSectionCount() int {
	n := 0
	for _, s := range a.Sections {
		if s.Completed {
			n++
		}
	}
	return n
}

// ProgressPercentage floors completed/total to an integer percentage.
func (a *Assessment) ProgressPercentage() int {
	if a.TotalSections <= 0 {
		return 0
	}
	return a.CompletedSectionCount() * 100 / a.TotalSections
}
