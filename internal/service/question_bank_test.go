package service

import (
	"testing"

	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionBank() QuestionBankService {
	return NewQuestionBankService(&config.Config{
		QuestionBank: config.QuestionBank{
			AptitudeQuestionCount: 30,
			ValuesQuestionCount:   20,
			PersonalQuestionCount: 25,
		},
	})
}

func TestQuestionBankCounts(t *testing.T) {
	bank := newQuestionBank()
	assert.Equal(t, 30, bank.Count(model.SectionAptitude))
	assert.Equal(t, 20, bank.Count(model.SectionValues))
	assert.Equal(t, 25, bank.Count(model.SectionPersonal))
}

func TestResolveTotalPrefersCallerCount(t *testing.T) {
	bank := newQuestionBank()
	total, err := bank.ResolveTotal(model.SectionAptitude, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
}

func TestResolveTotalFallsBackToConfiguredCount(t *testing.T) {
	bank := newQuestionBank()
	total, err := bank.ResolveTotal(model.SectionValues, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, total)
}

func TestResolveTotalRejectsNegative(t *testing.T) {
	bank := newQuestionBank()
	_, err := bank.ResolveTotal(model.SectionPersonal, -1)
	assert.True(t, apperror.IsValidation(err))
}
