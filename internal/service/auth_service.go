package service

import (
	"context"
	"errors"

	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/Tapananshu17/HCI/internal/repository"
	"github.com/Tapananshu17/HCI/internal/token"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Setup(ctx context.Context, req dto.SetupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

// Setup registers a user and completes their profile in one step, then logs
// them straight in.
func (s *authService) Setup(ctx context.Context, req dto.SetupRequest) (*dto.AuthResponse, error) {
	exists, err := s.userRepo.UsernameExists(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflictf("username %q is already taken", req.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:        req.Username,
		PasswordHash:    string(hash),
		Name:            req.Name,
		Grade:           req.Grade,
		Age:             req.Age,
		Email:           req.Email,
		Phone:           req.Phone,
		IsSetupComplete: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflictf("username %q is already taken", req.Username)
		}
		return nil, err
	}
	log.Info().Uint("userID", user.ID).Str("username", user.Username).Msg("User setup complete")

	return s.authResponse(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	return s.authResponse(user)
}

func (s *authService) authResponse(user *model.User) (*dto.AuthResponse, error) {
	access, err := token.Generate(s.cfg, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: userDTO(user), AccessToken: access}, nil
}

func userDTO(user *model.User) dto.UserResponse {
	var resp dto.UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		log.Error().Err(err).Msg("Failed to map user to response")
	}
	return resp
}
