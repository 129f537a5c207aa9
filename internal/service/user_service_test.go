package service

import (
	"context"
	"testing"
	"time"

	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo *fakeUserRepo) uint {
	t.Helper()
	user := &model.User{Username: "asha", PasswordHash: "x", Name: "Asha", Grade: "10", PreferredLanguage: "en", IsSetupComplete: true}
	require.NoError(t, repo.Create(user))
	return user.ID
}

func TestHomeWithNoAssessments(t *testing.T) {
	userRepo := newFakeUserRepo()
	userID := seedUser(t, userRepo)
	store := newMemStore()
	svc := NewUserService(userRepo, &fakeAssessmentRepo{store: store})

	resp, err := svc.Home(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "asha", resp.UserProfile.Username)
	assert.Nil(t, resp.SavedAssessment)
	assert.Empty(t, resp.CompletedAssessments)
	assert.Equal(t, 0, resp.CompletionStats.TotalAssessments)
	assert.Zero(t, resp.CompletionStats.CompletedPercentage)
}

func TestHomeSurfacesSavedAndCompletedAssessments(t *testing.T) {
	userRepo := newFakeUserRepo()
	userID := seedUser(t, userRepo)
	store := newMemStore()
	assessmentRepo := &fakeAssessmentRepo{store: store}

	now := time.Now()
	completed := &model.Assessment{UserID: userID, AttemptNumber: 1, Status: model.AssessmentCompleted, CompletedAt: &now, TotalSections: 3}
	require.NoError(t, assessmentRepo.Create(nil, completed))
	inProgress := &model.Assessment{UserID: userID, AttemptNumber: 2, Status: model.AssessmentInProgress, TotalSections: 3}
	require.NoError(t, assessmentRepo.Create(nil, inProgress))

	svc := NewUserService(userRepo, assessmentRepo)
	resp, err := svc.Home(context.Background(), userID)
	require.NoError(t, err)

	require.NotNil(t, resp.SavedAssessment)
	assert.Equal(t, inProgress.ID, resp.SavedAssessment.ID)
	require.Len(t, resp.CompletedAssessments, 1)
	assert.Equal(t, 2, resp.CompletionStats.TotalAssessments)
	assert.InDelta(t, 50.0, resp.CompletionStats.CompletedPercentage, 0.01)
}

func TestHomeSavedAssessmentReportsSectionProgress(t *testing.T) {
	userRepo := newFakeUserRepo()
	userID := seedUser(t, userRepo)
	store := newMemStore()
	assessmentRepo := &fakeAssessmentRepo{store: store}
	sectionRepo := &fakeSectionRepo{store: store}

	inProgress := &model.Assessment{UserID: userID, AttemptNumber: 1, Status: model.AssessmentInProgress, TotalSections: 3}
	require.NoError(t, assessmentRepo.Create(nil, inProgress))

	aptitude, _, err := sectionRepo.GetOrCreate(nil, inProgress.ID, model.SectionAptitude, 10)
	require.NoError(t, err)
	now := time.Now()
	aptitude.Completed = true
	aptitude.SubmittedAt = &now
	require.NoError(t, sectionRepo.Update(nil, aptitude))
	_, _, err = sectionRepo.GetOrCreate(nil, inProgress.ID, model.SectionValues, 10)
	require.NoError(t, err)

	svc := NewUserService(userRepo, assessmentRepo)
	resp, err := svc.Home(context.Background(), userID)
	require.NoError(t, err)

	// One of three sections done: the dashboard must say 33, not 0.
	require.NotNil(t, resp.SavedAssessment)
	assert.Equal(t, 33, resp.SavedAssessment.CompletionPercentage)
}

func TestHomeUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeAssessmentRepo{store: newMemStore()})
	_, err := svc.Home(context.Background(), 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfileChangesOnlyProvidedFields(t *testing.T) {
	userRepo := newFakeUserRepo()
	userID := seedUser(t, userRepo)
	svc := NewUserService(userRepo, &fakeAssessmentRepo{store: newMemStore()})

	grade := "11"
	lang := "hi"
	resp, err := svc.UpdateProfile(context.Background(), userID, dto.UpdateProfileRequest{
		Grade:             &grade,
		PreferredLanguage: &lang,
	})
	require.NoError(t, err)
	assert.Equal(t, "11", resp.Grade)
	assert.Equal(t, "hi", resp.PreferredLanguage)
	// Untouched fields keep their values.
	assert.Equal(t, "Asha", resp.Name)
	assert.Equal(t, "asha", resp.Username)
}

func TestDeleteAccountRemovesUser(t *testing.T) {
	userRepo := newFakeUserRepo()
	userID := seedUser(t, userRepo)
	svc := NewUserService(userRepo, &fakeAssessmentRepo{store: newMemStore()})

	require.NoError(t, svc.DeleteAccount(context.Background(), userID))
	_, err := userRepo.FindByID(userID)
	assert.Error(t, err)

	err = svc.DeleteAccount(context.Background(), userID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
