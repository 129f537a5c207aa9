package dto

import (
	"encoding/json"
	"time"

	"github.com/Tapananshu17/HCI/internal/model"
)

// StartAssessmentRequest carries the question count for the first section,
// supplied by the question-bank-aware client. Zero means "use the
// server-side default for that kind".
type StartAssessmentRequest struct {
	AptitudeTotalQuestions int `json:"aptitude_total_questions" binding:"omitempty,min=0"`
}

type StartAssessmentResponse struct {
	AssessmentID  uint              `json:"assessment_id"`
	AttemptNumber int               `json:"attempt_number"`
	Status        string            `json:"status"`
	FirstKind     model.SectionKind `json:"first_test_type"`
	Resumed       bool              `json:"resumed"`
}

type AssessmentResponse struct {
	ID                   uint               `json:"id"`
	AttemptNumber        int                `json:"attempt_number"`
	Status               string             `json:"status"`
	StartedAt            time.Time          `json:"started_at"`
	CompletedAt          *time.Time         `json:"completed_at,omitempty"`
	CurrentKind          *model.SectionKind `json:"current_test_type,omitempty"`
	CurrentIndex         int                `json:"current_test_index"`
	TotalSections        int                `json:"total_sections"`
	ResultsReady         bool               `json:"results_ready"`
	CompletionPercentage int                `json:"completion_percentage"`
}

type SectionResponse struct {
	ID                 uint              `json:"id"`
	AssessmentID       uint              `json:"assessment_id"`
	Kind               model.SectionKind `json:"test_type"`
	Answers            json.RawMessage   `json:"answers"`
	Cursor             int               `json:"current_question_index"`
	TotalQuestions     int               `json:"total_questions"`
	Completed          bool              `json:"is_completed"`
	StartedAt          time.Time         `json:"started_at"`
	SubmittedAt        *time.Time        `json:"submitted_at,omitempty"`
	LastSavedAt        time.Time         `json:"last_saved_at"`
	ProgressPercentage int               `json:"progress_percentage"`
}

// SaveProgressRequest replaces the whole answer sheet; the client sends its
// complete current answer set each time, not a delta.
type SaveProgressRequest struct {
	SectionID uint            `json:"test_response_id" binding:"required"`
	Answers   json.RawMessage `json:"answers" binding:"required"`
	Cursor    int             `json:"current_question_index" binding:"omitempty,min=0"`
}

type SaveProgressResponse struct {
	Success bool      `json:"success"`
	SavedAt time.Time `json:"saved_at"`
}

type SubmitSectionRequest struct {
	SectionID uint            `json:"test_response_id" binding:"required"`
	Answers   json.RawMessage `json:"answers" binding:"required"`
	// Question count for the next section, if the client already knows it.
	NextTotalQuestions int `json:"total_questions" binding:"omitempty,min=0"`
}

type SubmitSectionResponse struct {
	Success  bool               `json:"success"`
	Finished bool               `json:"finished"`
	NextKind *model.SectionKind `json:"next_test_type,omitempty"`
}

type SectionAnswersResponse struct {
	Kind    model.SectionKind `json:"test_type"`
	Answers json.RawMessage   `json:"answers"`
}

type AssessmentResponsesResponse struct {
	Assessment AssessmentResponse       `json:"assessment"`
	Sections   []SectionAnswersResponse `json:"test_responses"`
}

type AssessmentHistoryResponse struct {
	CompletedAssessments []AssessmentResponse `json:"completed_assessments"`
}

type ResultsResponse struct {
	AssessmentID       uint            `json:"assessment_id"`
	AptitudeScore      json.RawMessage `json:"aptitude_score,omitempty"`
	ValuesScore        json.RawMessage `json:"values_score,omitempty"`
	PersonalScore      json.RawMessage `json:"personal_score,omitempty"`
	RecommendedStreams json.RawMessage `json:"recommended_streams,omitempty"`
	Strengths          json.RawMessage `json:"strengths,omitempty"`
	CareerPaths        json.RawMessage `json:"career_paths,omitempty"`
	Analyzed           bool            `json:"analyzed"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

type HomeResponse struct {
	UserProfile          UserResponse         `json:"user_profile"`
	SavedAssessment      *AssessmentResponse  `json:"saved_assessment,omitempty"`
	CompletedAssessments []AssessmentResponse `json:"completed_assessments"`
	CompletionStats      CompletionStats      `json:"completion_stats"`
}

type CompletionStats struct {
	TotalAssessments    int     `json:"total_assessments"`
	CompletedPercentage float64 `json:"completed_percentage"`
}
