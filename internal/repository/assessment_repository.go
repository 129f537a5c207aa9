package repository

import (
	"github.com/Tapananshu17/HCI/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssessmentRepository methods accept an optional tx so the lifecycle
// service can compose them inside one transaction; nil falls back to the
// repository's own connection.
type AssessmentRepository interface {
	Create(tx *gorm.DB, assessment *model.Assessment) error
	Update(tx *gorm.DB, assessment *model.Assessment) error
	FindInProgressByUser(tx *gorm.DB, userID uint, forUpdate bool) (*model.Assessment, error)
	FindInProgressByUserWithSections(tx *gorm.DB, userID uint) (*model.Assessment, error)
	CountByUser(tx *gorm.DB, userID uint) (int64, error)
	FindByIDAndUser(tx *gorm.DB, id, userID uint) (*model.Assessment, error)
	FindByIDAndUserWithSections(tx *gorm.DB, id, userID uint) (*model.Assessment, error)
	MarkResultsReady(tx *gorm.DB, id uint) error
	FindCompletedByUser(tx *gorm.DB, userID uint) ([]model.Assessment, error)
	FindAllByUserWithSections(tx *gorm.DB, userID uint) ([]model.Assessment, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *assessmentRepository) Create(tx *gorm.DB, assessment *model.Assessment) error {
	return r.conn(tx).Create(assessment).Error
}

func (r *assessmentRepository) Update(tx *gorm.DB, assessment *model.Assessment) error {
	return r.conn(tx).Save(assessment).Error
}

// FindInProgressByUser optionally takes a row lock so concurrent starts for
// the same user serialize on the existing row instead of racing to insert a
// second one. Returns gorm.ErrRecordNotFound when no in-progress assessment
// exists.
func (r *assessmentRepository) FindInProgressByUser(tx *gorm.DB, userID uint, forUpdate bool) (*model.Assessment, error) {
	db := r.conn(tx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var assessment model.Assessment
	err := db.Where("user_id = ? AND status = ?", userID, model.AssessmentInProgress).
		First(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

// FindInProgressByUserWithSections is the read-side variant for surfaces
// that report progress: CompletedSectionCount only counts loaded sections.
func (r *assessmentRepository) FindInProgressByUserWithSections(tx *gorm.DB, userID uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.conn(tx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_sections.started_at ASC")
		}).
		Where("user_id = ? AND status = ?", userID, model.AssessmentInProgress).
		First(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) MarkResultsReady(tx *gorm.DB, id uint) error {
	return r.conn(tx).Model(&model.Assessment{}).Where("id = ?", id).
		Update("results_ready", true).Error
}

func (r *assessmentRepository) CountByUser(tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := r.conn(tx).Model(&model.Assessment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *assessmentRepository) FindByIDAndUser(tx *gorm.DB, id, userID uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.conn(tx).Where("id = ? AND user_id = ?", id, userID).First(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByIDAndUserWithSections(tx *gorm.DB, id, userID uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.conn(tx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_sections.started_at ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindCompletedByUser(tx *gorm.DB, userID uint) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.conn(tx).
		Preload("Sections").
		Where("user_id = ? AND status = ?", userID, model.AssessmentCompleted).
		Order("completed_at DESC").
		Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) FindAllByUserWithSections(tx *gorm.DB, userID uint) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.conn(tx).
		Preload("Sections").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&assessments).Error
	return assessments, err
}
