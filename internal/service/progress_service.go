package service

import (
	"context"
	"errors"

	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProgressService is the auto-save path. Saves are frequent and cheap: one
// ownership lookup plus a single-row UPDATE, with last-write-wins semantics
// decided by storage commit order. A save never changes completion state.
type ProgressService interface {
	SaveProgress(ctx context.Context, userID uint, req dto.SaveProgressRequest) (*dto.SaveProgressResponse, error)
}

type progressService struct {
	sectionRepo repository.TestSectionRepository
}

func NewProgressService(sectionRepo repository.TestSectionRepository) ProgressService {
	return &progressService{sectionRepo: sectionRepo}
}

func (s *progressService) SaveProgress(ctx context.Context, userID uint, req dto.SaveProgressRequest) (*dto.SaveProgressResponse, error) {
	answers, err := normalizeAnswerSheet(req.Answers)
	if err != nil {
		return nil, err
	}

	section, err := s.sectionRepo.FindByIDForUser(nil, req.SectionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("section %d", req.SectionID)
		}
		return nil, err
	}

	if req.Cursor < 0 || req.Cursor > section.TotalQuestions {
		return nil, apperror.Validationf("current_question_index %d is out of range [0, %d]", req.Cursor, section.TotalQuestions)
	}

	savedAt, err := s.sectionRepo.SaveProgress(nil, section.ID, answers, req.Cursor)
	if err != nil {
		log.Error().Err(err).Uint("sectionID", section.ID).Msg("Failed to save section progress")
		return nil, err
	}
	return &dto.SaveProgressResponse{Success: true, SavedAt: savedAt}, nil
}
