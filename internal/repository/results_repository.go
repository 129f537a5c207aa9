package repository

import (
	"errors"

	"github.com/Tapananshu17/HCI/internal/model"
	"gorm.io/gorm"
)

type ResultsRepository interface {
	// GetOrCreate inserts the placeholder results row for an assessment, or
	// returns the existing one. The unique index on assessment_id makes the
	// trigger idempotent even under concurrent completion retries.
	GetOrCreate(tx *gorm.DB, assessmentID uint) (*model.AssessmentResults, bool, error)
	FindByAssessment(tx *gorm.DB, assessmentID uint) (*model.AssessmentResults, error)
	Update(tx *gorm.DB, results *model.AssessmentResults) error
}

type resultsRepository struct {
	db *gorm.DB
}

func NewResultsRepository(db *gorm.DB) ResultsRepository {
	return &resultsRepository{db: db}
}

func (r *resultsRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *resultsRepository) GetOrCreate(tx *gorm.DB, assessmentID uint) (*model.AssessmentResults, bool, error) {
	db := r.conn(tx)

	var results model.AssessmentResults
	err := db.Where("assessment_id = ?", assessmentID).First(&results).Error
	if err == nil {
		return &results, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	results = model.AssessmentResults{AssessmentID: assessmentID}
	// Same savepoint dance as the section get-or-create: a unique violation
	// inside a caller transaction must not poison the fallback re-fetch.
	if tx != nil {
		if err := db.SavePoint("before_results_insert").Error; err != nil {
			return nil, false, err
		}
	}
	if err := db.Create(&results).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if tx != nil {
				if rerr := db.RollbackTo("before_results_insert").Error; rerr != nil {
					return nil, false, rerr
				}
			}
			var existing model.AssessmentResults
			if ferr := db.Where("assessment_id = ?", assessmentID).First(&existing).Error; ferr != nil {
				return nil, false, ferr
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &results, true, nil
}

func (r *resultsRepository) FindByAssessment(tx *gorm.DB, assessmentID uint) (*model.AssessmentResults, error) {
	var results model.AssessmentResults
	err := r.conn(tx).Where("assessment_id = ?", assessmentID).First(&results).Error
	if err != nil {
		return nil, err
	}
	return &results, nil
}

func (r *resultsRepository) Update(tx *gorm.DB, results *model.AssessmentResults) error {
	return r.conn(tx).Save(results).Error
}
