package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// AssessmentResults exists at most once per assessment and its existence is
// the single source of truth for "results are ready to be produced". The
// Analyzed flag tells whether the scoring collaborator has populated the
// score blobs yet; creation never waits for it.
type AssessmentResults struct {
	ID                 uint            `gorm:"primarykey" json:"id"`
	AssessmentID       uint            `json:"assessment_id" gorm:"not null;uniqueIndex"`
	AptitudeScore      json.RawMessage `json:"aptitude_score,omitempty" gorm:"type:jsonb"`
	ValuesScore        json.RawMessage `json:"values_score,omitempty" gorm:"type:jsonb"`
	PersonalScore      json.RawMessage `json:"personal_score,omitempty" gorm:"type:jsonb"`
	RecommendedStreams json.RawMessage `json:"recommended_streams,omitempty" gorm:"type:jsonb"`
	Strengths          json.RawMessage `json:"strengths,omitempty" gorm:"type:jsonb"`
	CareerPaths        json.RawMessage `json:"career_paths,omitempty" gorm:"type:jsonb"`
	Analyzed           bool            `json:"analyzed" gorm:"not null;default:false"`
	GeneratedAt        time.Time       `json:"generated_at" gorm:"autoCreateTime"`
	LastViewedAt       *time.Time      `json:"last_viewed_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}
