package service

import (
	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/model"
)

// QuestionBankService supplies the question count per section kind.
// Question content itself lives with the client; the engine only needs the
// totals to size sections and compute progress.
type QuestionBankService interface {
	Count(kind model.SectionKind) int
	// ResolveTotal picks the caller-supplied count when positive, falling
	// back to the bank's configured count. Negative input is rejected.
	ResolveTotal(kind model.SectionKind, callerTotal int) (int, error)
}

type questionBankService struct {
	counts map[model.SectionKind]int
}

func NewQuestionBankService(cfg *config.Config) QuestionBankService {
	return &questionBankService{
		counts: map[model.SectionKind]int{
			model.SectionAptitude: cfg.QuestionBank.AptitudeQuestionCount,
			model.SectionValues:   cfg.QuestionBank.ValuesQuestionCount,
			model.SectionPersonal: cfg.QuestionBank.PersonalQuestionCount,
		},
	}
}

func (s *questionBankService) Count(kind model.SectionKind) int {
	return s.counts[kind]
}

func (s *questionBankService) ResolveTotal(kind model.SectionKind, callerTotal int) (int, error) {
	if callerTotal < 0 {
		return 0, apperror.Validationf("total_questions must not be negative, got %d", callerTotal)
	}
	if callerTotal > 0 {
		return callerTotal, nil
	}
	return s.counts[kind], nil
}
