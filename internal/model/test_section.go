package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TestSection is one test kind inside an assessment. The (assessment, kind)
// pair is unique; creation goes through the repository's get-or-create so
// concurrent requests converge on a single row.
//
// Answers is the section's answer sheet: an opaque question_id→value map.
// Saves replace it wholesale; no merging with previously stored keys.
type TestSection struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	AssessmentID   uint            `json:"assessment_id" gorm:"not null;index;uniqueIndex:uq_sections_assessment_kind,priority:1"`
	Assessment     *Assessment     `json:"-" gorm:"foreignKey:AssessmentID"`
	Kind           SectionKind     `json:"kind" gorm:"not null;uniqueIndex:uq_sections_assessment_kind,priority:2"`
	Answers        json.RawMessage `json:"answers" gorm:"type:jsonb;default:'{}'"`
	Cursor         int             `json:"cursor" gorm:"not null;default:0"`
	TotalQuestions int             `json:"total_questions" gorm:"not null;default:0"`
	Completed      bool            `json:"completed" gorm:"not null;default:false"`
	StartedAt      time.Time       `json:"started_at" gorm:"autoCreateTime"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	LastSavedAt    time.Time       `json:"last_saved_at" gorm:"autoUpdateTime"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ProgressPercentage floors cursor/total to an integer percentage and
// returns 0 for an empty section rather than dividing by zero.
func (s *TestSection) ProgressPercentage() int {
	if s.TotalQuestions <= 0 {
		return 0
	}
	return s.Cursor * 100 / s.TotalQuestions
}

// AnswerMap decodes the stored answer sheet. An empty or nil document
// decodes to an empty map.
func (s *TestSection) AnswerMap() (map[string]json.RawMessage, error) {
	m := make(map[string]json.RawMessage)
	if len(s.Answers) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(s.Answers, &m); err != nil {
		return nil, err
	}
	return m, nil
}
