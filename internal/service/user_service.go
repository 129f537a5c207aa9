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

type UserService interface {
	Home(ctx context.Context, userID uint) (*dto.HomeResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userID uint) error
}

type userService struct {
	userRepo       repository.UserRepository
	assessmentRepo repository.AssessmentRepository
}

func NewUserService(userRepo repository.UserRepository, assessmentRepo repository.AssessmentRepository) UserService {
	return &userService{userRepo: userRepo, assessmentRepo: assessmentRepo}
}

// Home is the dashboard payload: the profile, the resumable assessment if
// one exists, past completed attempts and overall completion stats.
func (s *userService) Home(ctx context.Context, userID uint) (*dto.HomeResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("user %d", userID)
		}
		return nil, err
	}

	resp := &dto.HomeResponse{
		UserProfile:          userDTO(user),
		CompletedAssessments: []dto.AssessmentResponse{},
	}

	saved, err := s.assessmentRepo.FindInProgressByUserWithSections(nil, userID)
	if err == nil {
		savedDTO := assessmentDTO(saved)
		resp.SavedAssessment = &savedDTO
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	completed, err := s.assessmentRepo.FindCompletedByUser(nil, userID)
	if err != nil {
		return nil, err
	}
	for i := range completed {
		resp.CompletedAssessments = append(resp.CompletedAssessments, assessmentDTO(&completed[i]))
	}

	total, err := s.assessmentRepo.CountByUser(nil, userID)
	if err != nil {
		return nil, err
	}
	resp.CompletionStats = dto.CompletionStats{TotalAssessments: int(total)}
	if total > 0 {
		resp.CompletionStats.CompletedPercentage = float64(len(completed)) / float64(total) * 100
	}
	return resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("user %d", userID)
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Grade != nil {
		user.Grade = *req.Grade
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = *req.PreferredLanguage
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	log.Info().Uint("userID", userID).Msg("Profile updated")
	updated := userDTO(user)
	return &updated, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("user %d", userID)
		}
		return err
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}
	log.Info().Uint("userID", userID).Msg("Account deleted")
	return nil
}
