package repository

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Tapananshu17/HCI/internal/model"
	"gorm.io/gorm"
)

type TestSectionRepository interface {
	// GetOrCreate returns the existing section for (assessment, kind) or
	// inserts one with cursor 0 and the given question count. Safe against
	// concurrent callers: a duplicate-key insert falls back to fetching the
	// row the winner created.
	GetOrCreate(tx *gorm.DB, assessmentID uint, kind model.SectionKind, totalQuestions int) (*model.TestSection, bool, error)
	FindByID(tx *gorm.DB, id uint) (*model.TestSection, error)
	FindByIDForUser(tx *gorm.DB, id, userID uint) (*model.TestSection, error)
	FindByAssessmentAndKind(tx *gorm.DB, assessmentID uint, kind model.SectionKind) (*model.TestSection, error)
	FindByAssessment(tx *gorm.DB, assessmentID uint) ([]model.TestSection, error)
	Update(tx *gorm.DB, section *model.TestSection) error
	SaveProgress(tx *gorm.DB, id uint, answers json.RawMessage, cursor int) (time.Time, error)
}

type testSectionRepository struct {
	db *gorm.DB
}

func NewTestSectionRepository(db *gorm.DB) TestSectionRepository {
	return &testSectionRepository{db: db}
}

func (r *testSectionRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *testSectionRepository) GetOrCreate(tx *gorm.DB, assessmentID uint, kind model.SectionKind, totalQuestions int) (*model.TestSection, bool, error) {
	db := r.conn(tx)

	var section model.TestSection
	err := db.Where("assessment_id = ? AND kind = ?", assessmentID, kind).First(&section).Error
	if err == nil {
		return &section, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	section = model.TestSection{
		AssessmentID:   assessmentID,
		Kind:           kind,
		Answers:        json.RawMessage(`{}`),
		TotalQuestions: totalQuestions,
	}
	// Inside a caller transaction a unique violation aborts the whole tx on
	// postgres, so the insert runs under a savepoint to keep the fallback
	// re-fetch executable.
	if tx != nil {
		if err := db.SavePoint("before_section_insert").Error; err != nil {
			return nil, false, err
		}
	}
	if err := db.Create(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if tx != nil {
				if rerr := db.RollbackTo("before_section_insert").Error; rerr != nil {
					return nil, false, rerr
				}
			}
			var existing model.TestSection
			if ferr := db.Where("assessment_id = ? AND kind = ?", assessmentID, kind).First(&existing).Error; ferr != nil {
				return nil, false, ferr
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &section, true, nil
}

func (r *testSectionRepository) FindByID(tx *gorm.DB, id uint) (*model.TestSection, error) {
	var section model.TestSection
	if err := r.conn(tx).First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// FindByIDForUser joins through the owning assessment so a section never
// resolves for a user it does not belong to.
func (r *testSectionRepository) FindByIDForUser(tx *gorm.DB, id, userID uint) (*model.TestSection, error) {
	var section model.TestSection
	err := r.conn(tx).
		Preload("Assessment").
		Joins("JOIN assessments ON assessments.id = test_sections.assessment_id").
		Where("test_sections.id = ? AND assessments.user_id = ? AND assessments.deleted_at IS NULL", id, userID).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *testSectionRepository) FindByAssessmentAndKind(tx *gorm.DB, assessmentID uint, kind model.SectionKind) (*model.TestSection, error) {
	var section model.TestSection
	err := r.conn(tx).Where("assessment_id = ? AND kind = ?", assessmentID, kind).First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *testSectionRepository) FindByAssessment(tx *gorm.DB, assessmentID uint) ([]model.TestSection, error) {
	var sections []model.TestSection
	err := r.conn(tx).Where("assessment_id = ?", assessmentID).Order("started_at ASC").Find(&sections).Error
	return sections, err
}

func (r *testSectionRepository) Update(tx *gorm.DB, section *model.TestSection) error {
	return r.conn(tx).Save(section).Error
}

// SaveProgress is a single UPDATE; concurrent saves on the same section
// resolve last-write-wins by commit order. It never touches Completed or
// SubmittedAt.
func (r *testSectionRepository) SaveProgress(tx *gorm.DB, id uint, answers json.RawMessage, cursor int) (time.Time, error) {
	now := time.Now()
	res := r.conn(tx).Model(&model.TestSection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"answers":       answers,
			"cursor":        cursor,
			"last_saved_at": now,
		})
	if res.Error != nil {
		return time.Time{}, res.Error
	}
	if res.RowsAffected == 0 {
		return time.Time{}, gorm.ErrRecordNotFound
	}
	return now, nil
}
