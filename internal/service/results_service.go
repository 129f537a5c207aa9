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

// ResultsTrigger is the one-time hand-off from assessment completion to
// score aggregation. It must be idempotent: a retried completing submit may
// invoke it again, and exactly one results row must come out of it.
type ResultsTrigger interface {
	OnAssessmentCompleted(ctx context.Context, assessmentID uint) error
}

type ResultsService interface {
	ResultsTrigger
	GetResults(ctx context.Context, userID, assessmentID uint) (*dto.ResultsResponse, error)
}

type resultsService struct {
	resultsRepo    repository.ResultsRepository
	sectionRepo    repository.TestSectionRepository
	assessmentRepo repository.AssessmentRepository
	llm            GeminiLLMService
}

func NewResultsService(
	resultsRepo repository.ResultsRepository,
	sectionRepo repository.TestSectionRepository,
	assessmentRepo repository.AssessmentRepository,
	llm GeminiLLMService,
) ResultsService {
	return &resultsService{
		resultsRepo:    resultsRepo,
		sectionRepo:    sectionRepo,
		assessmentRepo: assessmentRepo,
		llm:            llm,
	}
}

// OnAssessmentCompleted creates the placeholder results row (or finds the
// one a previous invocation created) and kicks off scoring in the
// background. The caller's transaction has already committed; nothing here
// blocks the state transition on the scoring collaborator.
func (s *resultsService) OnAssessmentCompleted(ctx context.Context, assessmentID uint) error {
	results, created, err := s.resultsRepo.GetOrCreate(nil, assessmentID)
	if err != nil {
		return err
	}
	if err := s.assessmentRepo.MarkResultsReady(nil, assessmentID); err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Failed to flag assessment results_ready")
	}
	if !created {
		log.Info().Uint("assessmentID", assessmentID).Msg("Results row already exists, skipping duplicate trigger")
		return nil
	}

	log.Info().Uint("assessmentID", assessmentID).Uint("resultsID", results.ID).Msg("Results placeholder created, starting analysis")
	go s.analyze(assessmentID)
	return nil
}

func (s *resultsService) analyze(assessmentID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sections, err := s.sectionRepo.FindByAssessment(nil, assessmentID)
	if err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Analysis: failed to load sections")
		return
	}

	sheets := make(map[model.SectionKind]json.RawMessage, len(sections))
	for _, section := range sections {
		if section.Completed {
			sheets[section.Kind] = section.Answers
		}
	}

	analysis, err := s.llm.AnalyzeAssessment(ctx, sheets)
	if err != nil {
		// The placeholder stays with Analyzed=false; readiness of scores is
		// observable independently of the completion transition.
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Analysis: scoring collaborator failed")
		return
	}

	results, err := s.resultsRepo.FindByAssessment(nil, assessmentID)
	if err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Analysis: results row disappeared")
		return
	}
	results.AptitudeScore = analysis.AptitudeScore
	results.ValuesScore = analysis.ValuesScore
	results.PersonalScore = analysis.PersonalScore
	results.RecommendedStreams = analysis.RecommendedStreams
	results.Strengths = analysis.Strengths
	results.CareerPaths = analysis.CareerPaths
	results.Analyzed = true
	if err := s.resultsRepo.Update(nil, results); err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Analysis: failed to store scores")
		return
	}
	log.Info().Uint("assessmentID", assessmentID).Msg("Assessment analysis stored")
}

func (s *resultsService) GetResults(ctx context.Context, userID, assessmentID uint) (*dto.ResultsResponse, error) {
	if _, err := s.assessmentRepo.FindByIDAndUser(nil, assessmentID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("assessment %d", assessmentID)
		}
		return nil, err
	}

	results, err := s.resultsRepo.FindByAssessment(nil, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("results for assessment %d", assessmentID)
		}
		return nil, err
	}

	now := time.Now()
	results.LastViewedAt = &now
	if err := s.resultsRepo.Update(nil, results); err != nil {
		log.Warn().Err(err).Uint("assessmentID", assessmentID).Msg("Failed to record results view time")
	}

	return &dto.ResultsResponse{
		AssessmentID:       results.AssessmentID,
		AptitudeScore:      results.AptitudeScore,
		ValuesScore:        results.ValuesScore,
		PersonalScore:      results.PersonalScore,
		RecommendedStreams: results.RecommendedStreams,
		Strengths:          results.Strengths,
		CareerPaths:        results.CareerPaths,
		Analyzed:           results.Analyzed,
		GeneratedAt:        results.GeneratedAt,
	}, nil
}
