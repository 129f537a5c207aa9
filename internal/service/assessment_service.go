package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/Tapananshu17/HCI/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AssessmentService owns the assessment state machine: starting (or
// resuming) an attempt, submitting sections in fixed order, abandoning, and
// the read surface on top of it. Every mutating operation runs as one
// transaction; the uniqueness constraints on assessments and sections make
// the check-then-act paths race-safe.
type AssessmentService interface {
	Start(ctx context.Context, userID uint, req dto.StartAssessmentRequest) (*dto.StartAssessmentResponse, error)
	Get(ctx context.Context, userID, assessmentID uint) (*dto.AssessmentResponse, error)
	GetSection(ctx context.Context, userID, assessmentID uint, kind model.SectionKind, totalQuestions int) (*dto.SectionResponse, error)
	SubmitSection(ctx context.Context, userID uint, req dto.SubmitSectionRequest) (*dto.SubmitSectionResponse, error)
	Abandon(ctx context.Context, userID, assessmentID uint) error
	History(ctx context.Context, userID uint) (*dto.AssessmentHistoryResponse, error)
	Responses(ctx context.Context, userID, assessmentID uint) (*dto.AssessmentResponsesResponse, error)
}

type assessmentService struct {
	txm            repository.TxManager
	assessmentRepo repository.AssessmentRepository
	sectionRepo    repository.TestSectionRepository
	sequencer      *SectionSequencer
	questionBank   QuestionBankService
	resultsTrigger ResultsTrigger
}

func NewAssessmentService(
	txm repository.TxManager,
	assessmentRepo repository.AssessmentRepository,
	sectionRepo repository.TestSectionRepository,
	sequencer *SectionSequencer,
	questionBank QuestionBankService,
	resultsTrigger ResultsTrigger,
) AssessmentService {
	return &assessmentService{
		txm:            txm,
		assessmentRepo: assessmentRepo,
		sectionRepo:    sectionRepo,
		sequencer:      sequencer,
		questionBank:   questionBank,
		resultsTrigger: resultsTrigger,
	}
}

// Start returns the user's in-progress assessment unchanged when one
// exists (idempotent resume); otherwise it allocates the next attempt
// number and creates the assessment together with its first section.
func (s *assessmentService) Start(ctx context.Context, userID uint, req dto.StartAssessmentRequest) (*dto.StartAssessmentResponse, error) {
	firstKind := s.sequencer.First()
	total, err := s.questionBank.ResolveTotal(firstKind, req.AptitudeTotalQuestions)
	if err != nil {
		return nil, err
	}

	var resp *dto.StartAssessmentResponse
	txErr := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		existing, err := s.assessmentRepo.FindInProgressByUser(tx, userID, true)
		if err == nil {
			resp = startResponse(existing, s.currentKindOrFirst(existing), true)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		count, err := s.assessmentRepo.CountByUser(tx, userID)
		if err != nil {
			return err
		}

		currentKind := firstKind
		assessment := &model.Assessment{
			UserID:        userID,
			AttemptNumber: int(count) + 1,
			Status:        model.AssessmentInProgress,
			CurrentKind:   &currentKind,
			CurrentIndex:  0,
			TotalSections: s.sequencer.Count(),
		}
		if err := s.assessmentRepo.Create(tx, assessment); err != nil {
			return err
		}
		if _, _, err := s.sectionRepo.GetOrCreate(tx, assessment.ID, firstKind, total); err != nil {
			return err
		}
		resp = startResponse(assessment, firstKind, false)
		return nil
	})

	// A concurrent start may win either unique index (attempt number or
	// one-in-progress-per-user). Resolve by returning the winner's row.
	if errors.Is(txErr, gorm.ErrDuplicatedKey) {
		existing, ferr := s.assessmentRepo.FindInProgressByUser(nil, userID, false)
		if ferr != nil {
			return nil, apperror.Conflictf("concurrent assessment start for user %d", userID)
		}
		log.Info().Uint("userID", userID).Uint("assessmentID", existing.ID).Msg("Start raced with a concurrent request, resuming existing assessment")
		return startResponse(existing, s.currentKindOrFirst(existing), true), nil
	}
	if txErr != nil {
		return nil, txErr
	}
	return resp, nil
}

func (s *assessmentService) currentKindOrFirst(a *model.Assessment) model.SectionKind {
	if a.CurrentKind != nil {
		return *a.CurrentKind
	}
	return s.sequencer.First()
}

func startResponse(a *model.Assessment, kind model.SectionKind, resumed bool) *dto.StartAssessmentResponse {
	return &dto.StartAssessmentResponse{
		AssessmentID:  a.ID,
		AttemptNumber: a.AttemptNumber,
		Status:        string(a.Status),
		FirstKind:     kind,
		Resumed:       resumed,
	}
}

func (s *assessmentService) Get(ctx context.Context, userID, assessmentID uint) (*dto.AssessmentResponse, error) {
	assessment, err := s.assessmentRepo.FindByIDAndUserWithSections(nil, assessmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("assessment %d", assessmentID)
		}
		return nil, err
	}
	resp := assessmentDTO(assessment)
	return &resp, nil
}

// GetSection returns the stored section for resume. A missing section is
// created only when it is the one currently due in the fixed order;
// requesting a later kind fails the ordering precondition instead of
// materializing it early.
func (s *assessmentService) GetSection(ctx context.Context, userID, assessmentID uint, kind model.SectionKind, totalQuestions int) (*dto.SectionResponse, error) {
	if !s.sequencer.Contains(kind) {
		return nil, apperror.Validationf("invalid test type %q", kind)
	}
	total, err := s.questionBank.ResolveTotal(kind, totalQuestions)
	if err != nil {
		return nil, err
	}

	var resp *dto.SectionResponse
	txErr := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		assessment, err := s.assessmentRepo.FindByIDAndUser(tx, assessmentID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("assessment %d", assessmentID)
			}
			return err
		}

		section, err := s.sectionRepo.FindByAssessmentAndKind(tx, assessmentID, kind)
		if err == nil {
			d := sectionDTO(section)
			resp = &d
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if assessment.Status != model.AssessmentInProgress {
			return apperror.NotFoundf("section %s of assessment %d", kind, assessmentID)
		}
		if err := s.checkPredecessorsCompleted(tx, assessmentID, kind); err != nil {
			return err
		}

		section, _, err = s.sectionRepo.GetOrCreate(tx, assessmentID, kind, total)
		if err != nil {
			return err
		}
		d := sectionDTO(section)
		resp = &d
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return resp, nil
}

func (s *assessmentService) checkPredecessorsCompleted(tx *gorm.DB, assessmentID uint, kind model.SectionKind) error {
	for _, prev := range s.sequencer.Predecessors(kind) {
		prevSection, err := s.sectionRepo.FindByAssessmentAndKind(tx, assessmentID, prev)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.PreconditionFailedf("section %s must be completed before %s", prev, kind)
			}
			return err
		}
		if !prevSection.Completed {
			return apperror.PreconditionFailedf("section %s must be completed before %s", prev, kind)
		}
	}
	return nil
}

// SubmitSection persists the final answer sheet, marks the section
// completed and either advances to the next kind or completes the whole
// assessment. Submitting an already-completed section is a successful
// no-op so client retries are harmless.
func (s *assessmentService) SubmitSection(ctx context.Context, userID uint, req dto.SubmitSectionRequest) (*dto.SubmitSectionResponse, error) {
	answers, err := normalizeAnswerSheet(req.Answers)
	if err != nil {
		return nil, err
	}

	var (
		resp        *dto.SubmitSectionResponse
		completedID uint
	)
	txErr := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		section, err := s.sectionRepo.FindByIDForUser(tx, req.SectionID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("section %d", req.SectionID)
			}
			return err
		}

		if section.Completed {
			// Retry after a successful submit: report the same outcome
			// without touching the row or the submission timestamp.
			next, ok := s.sequencer.After(section.Kind)
			resp = &dto.SubmitSectionResponse{Success: true, Finished: !ok}
			if ok {
				resp.NextKind = &next
			}
			log.Info().Uint("sectionID", section.ID).Str("kind", string(section.Kind)).Msg("Submit on already-completed section, returning no-op success")
			return nil
		}

		assessment := section.Assessment
		if assessment == nil {
			found, err := s.assessmentRepo.FindByIDAndUser(tx, section.AssessmentID, userID)
			if err != nil {
				return err
			}
			assessment = found
		}
		if assessment.Status != model.AssessmentInProgress {
			return apperror.PreconditionFailedf("assessment %d is %s, sections can no longer be submitted", assessment.ID, assessment.Status)
		}
		if err := s.checkPredecessorsCompleted(tx, section.AssessmentID, section.Kind); err != nil {
			return err
		}

		now := time.Now()
		section.Answers = answers
		section.Completed = true
		section.SubmittedAt = &now
		section.LastSavedAt = now
		if err := s.sectionRepo.Update(tx, section); err != nil {
			return err
		}

		next, ok := s.sequencer.After(section.Kind)
		if ok {
			total, err := s.questionBank.ResolveTotal(next, req.NextTotalQuestions)
			if err != nil {
				return err
			}
			if _, _, err := s.sectionRepo.GetOrCreate(tx, section.AssessmentID, next, total); err != nil {
				return err
			}
			nextKind := next
			assessment.CurrentKind = &nextKind
			assessment.CurrentIndex = s.sequencer.Index(next)
			if err := s.assessmentRepo.Update(tx, assessment); err != nil {
				return err
			}
			resp = &dto.SubmitSectionResponse{Success: true, Finished: false, NextKind: &nextKind}
			return nil
		}

		assessment.Status = model.AssessmentCompleted
		assessment.CompletedAt = &now
		assessment.CurrentKind = nil
		if err := s.assessmentRepo.Update(tx, assessment); err != nil {
			return err
		}
		completedID = assessment.ID
		resp = &dto.SubmitSectionResponse{Success: true, Finished: true}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// The results hand-off happens after commit so scoring never holds a
	// lock on the assessment or section rows.
	if completedID != 0 {
		if err := s.resultsTrigger.OnAssessmentCompleted(ctx, completedID); err != nil {
			log.Error().Err(err).Uint("assessmentID", completedID).Msg("Results trigger failed after assessment completion")
		}
	}
	return resp, nil
}

// Abandon moves an in-progress assessment to abandoned. Terminal states
// are left untouched and reported as success.
func (s *assessmentService) Abandon(ctx context.Context, userID, assessmentID uint) error {
	return s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		assessment, err := s.assessmentRepo.FindByIDAndUser(tx, assessmentID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("assessment %d", assessmentID)
			}
			return err
		}
		if assessment.Status != model.AssessmentInProgress {
			return nil
		}
		assessment.Status = model.AssessmentAbandoned
		return s.assessmentRepo.Update(tx, assessment)
	})
}

func (s *assessmentService) History(ctx context.Context, userID uint) (*dto.AssessmentHistoryResponse, error) {
	assessments, err := s.assessmentRepo.FindCompletedByUser(nil, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.AssessmentHistoryResponse{CompletedAssessments: make([]dto.AssessmentResponse, 0, len(assessments))}
	for i := range assessments {
		resp.CompletedAssessments = append(resp.CompletedAssessments, assessmentDTO(&assessments[i]))
	}
	return resp, nil
}

func (s *assessmentService) Responses(ctx context.Context, userID, assessmentID uint) (*dto.AssessmentResponsesResponse, error) {
	assessment, err := s.assessmentRepo.FindByIDAndUserWithSections(nil, assessmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("assessment %d", assessmentID)
		}
		return nil, err
	}

	resp := &dto.AssessmentResponsesResponse{
		Assessment: assessmentDTO(assessment),
		Sections:   make([]dto.SectionAnswersResponse, 0, len(assessment.Sections)),
	}
	for _, section := range assessment.Sections {
		if !section.Completed {
			continue
		}
		resp.Sections = append(resp.Sections, dto.SectionAnswersResponse{
			Kind:    section.Kind,
			Answers: section.Answers,
		})
	}
	return resp, nil
}

// normalizeAnswerSheet validates that the payload is a JSON object keyed by
// question identifier and canonicalizes nil/empty input to "{}". The stored
// sheet is fully replaced; no merging happens here or anywhere else.
func normalizeAnswerSheet(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return json.RawMessage(`{}`), nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperror.Validationf("answers must be a JSON object keyed by question id")
	}
	return raw, nil
}

func assessmentDTO(a *model.Assessment) dto.AssessmentResponse {
	return dto.AssessmentResponse{
		ID:                   a.ID,
		AttemptNumber:        a.AttemptNumber,
		Status:               string(a.Status),
		StartedAt:            a.StartedAt,
		CompletedAt:          a.CompletedAt,
		CurrentKind:          a.CurrentKind,
		CurrentIndex:         a.CurrentIndex,
		TotalSections:        a.TotalSections,
		ResultsReady:         a.ResultsReady,
		CompletionPercentage: a.ProgressPercentage(),
	}
}

func sectionDTO(s *model.TestSection) dto.SectionResponse {
	answers := s.Answers
	if len(answers) == 0 {
		answers = json.RawMessage(`{}`)
	}
	return dto.SectionResponse{
		ID:                 s.ID,
		AssessmentID:       s.AssessmentID,
		Kind:               s.Kind,
		Answers:            answers,
		Cursor:             s.Cursor,
		TotalQuestions:     s.TotalQuestions,
		Completed:          s.Completed,
		StartedAt:          s.StartedAt,
		SubmittedAt:        s.SubmittedAt,
		LastSavedAt:        s.LastSavedAt,
		ProgressPercentage: s.ProgressPercentage(),
	}
}
