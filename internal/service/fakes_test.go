package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Tapananshu17/HCI/internal/model"
	"gorm.io/gorm"
)

// The service layer only sees repository interfaces and TxManager, so the
// tests run against these in-memory fakes. They reproduce the storage
// behavior the services rely on: ErrRecordNotFound on misses, duplicate-key
// convergence in the get-or-create paths, and copy-on-read so services
// cannot mutate stored rows without calling Update.

type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memStore struct {
	mu sync.Mutex

	nextAssessmentID uint
	nextSectionID    uint
	nextResultsID    uint

	assessments map[uint]*model.Assessment
	sections    map[uint]*model.TestSection
	results     map[uint]*model.AssessmentResults // keyed by assessment id
}

func newMemStore() *memStore {
	return &memStore{
		assessments: make(map[uint]*model.Assessment),
		sections:    make(map[uint]*model.TestSection),
		results:     make(map[uint]*model.AssessmentResults),
	}
}

func copyAssessment(a *model.Assessment) *model.Assessment {
	c := *a
	if a.CurrentKind != nil {
		k := *a.CurrentKind
		c.CurrentKind = &k
	}
	c.Sections = nil
	return &c
}

func copySection(s *model.TestSection) *model.TestSection {
	c := *s
	c.Assessment = nil
	return &c
}

type fakeAssessmentRepo struct {
	store *memStore
}

func (r *fakeAssessmentRepo) Create(tx *gorm.DB, assessment *model.Assessment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.assessments {
		if existing.UserID != assessment.UserID {
			continue
		}
		if existing.AttemptNumber == assessment.AttemptNumber {
			return gorm.ErrDuplicatedKey
		}
		if existing.Status == model.AssessmentInProgress && assessment.Status == model.AssessmentInProgress {
			return gorm.ErrDuplicatedKey
		}
	}
	r.store.nextAssessmentID++
	assessment.ID = r.store.nextAssessmentID
	if assessment.StartedAt.IsZero() {
		assessment.StartedAt = time.Now()
	}
	r.store.assessments[assessment.ID] = copyAssessment(assessment)
	return nil
}

func (r *fakeAssessmentRepo) Update(tx *gorm.DB, assessment *model.Assessment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.assessments[assessment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.assessments[assessment.ID] = copyAssessment(assessment)
	return nil
}

func (r *fakeAssessmentRepo) FindInProgressByUser(tx *gorm.DB, userID uint, forUpdate bool) (*model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.assessments {
		if a.UserID == userID && a.Status == model.AssessmentInProgress {
			return copyAssessment(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssessmentRepo) FindInProgressByUserWithSections(tx *gorm.DB, userID uint) (*model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.assessments {
		if a.UserID == userID && a.Status == model.AssessmentInProgress {
			c := copyAssessment(a)
			for _, s := range r.store.sections {
				if s.AssessmentID == a.ID {
					c.Sections = append(c.Sections, *copySection(s))
				}
			}
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssessmentRepo) CountByUser(tx *gorm.DB, userID uint) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, a := range r.store.assessments {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAssessmentRepo) FindByIDAndUser(tx *gorm.DB, id, userID uint) (*model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assessments[id]
	if !ok || a.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return copyAssessment(a), nil
}

func (r *fakeAssessmentRepo) FindByIDAndUserWithSections(tx *gorm.DB, id, userID uint) (*model.Assessment, error) {
	a, err := r.FindByIDAndUser(tx, id, userID)
	if err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sections {
		if s.AssessmentID == id {
			a.Sections = append(a.Sections, *copySection(s))
		}
	}
	return a, nil
}

func (r *fakeAssessmentRepo) MarkResultsReady(tx *gorm.DB, id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assessments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.ResultsReady = true
	return nil
}

func (r *fakeAssessmentRepo) FindCompletedByUser(tx *gorm.DB, userID uint) ([]model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Assessment
	for _, a := range r.store.assessments {
		if a.UserID == userID && a.Status == model.AssessmentCompleted {
			c := copyAssessment(a)
			for _, s := range r.store.sections {
				if s.AssessmentID == a.ID {
					c.Sections = append(c.Sections, *copySection(s))
				}
			}
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) FindAllByUserWithSections(tx *gorm.DB, userID uint) ([]model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Assessment
	for _, a := range r.store.assessments {
		if a.UserID == userID {
			c := copyAssessment(a)
			for _, s := range r.store.sections {
				if s.AssessmentID == a.ID {
					c.Sections = append(c.Sections, *copySection(s))
				}
			}
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeSectionRepo struct {
	store *memStore
}

func (r *fakeSectionRepo) GetOrCreate(tx *gorm.DB, assessmentID uint, kind model.SectionKind, totalQuestions int) (*model.TestSection, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sections {
		if s.AssessmentID == assessmentID && s.Kind == kind {
			return copySection(s), false, nil
		}
	}
	r.store.nextSectionID++
	now := time.Now()
	section := &model.TestSection{
		ID:             r.store.nextSectionID,
		AssessmentID:   assessmentID,
		Kind:           kind,
		Answers:        json.RawMessage(`{}`),
		TotalQuestions: totalQuestions,
		StartedAt:      now,
		LastSavedAt:    now,
	}
	r.store.sections[section.ID] = section
	return copySection(section), true, nil
}

func (r *fakeSectionRepo) FindByID(tx *gorm.DB, id uint) (*model.TestSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copySection(s), nil
}

func (r *fakeSectionRepo) FindByIDForUser(tx *gorm.DB, id, userID uint) (*model.TestSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a, ok := r.store.assessments[s.AssessmentID]
	if !ok || a.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	c := copySection(s)
	c.Assessment = copyAssessment(a)
	return c, nil
}

func (r *fakeSectionRepo) FindByAssessmentAndKind(tx *gorm.DB, assessmentID uint, kind model.SectionKind) (*model.TestSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sections {
		if s.AssessmentID == assessmentID && s.Kind == kind {
			return copySection(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSectionRepo) FindByAssessment(tx *gorm.DB, assessmentID uint) ([]model.TestSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.TestSection
	for _, s := range r.store.sections {
		if s.AssessmentID == assessmentID {
			out = append(out, *copySection(s))
		}
	}
	return out, nil
}

func (r *fakeSectionRepo) Update(tx *gorm.DB, section *model.TestSection) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sections[section.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.sections[section.ID] = copySection(section)
	return nil
}

func (r *fakeSectionRepo) SaveProgress(tx *gorm.DB, id uint, answers json.RawMessage, cursor int) (time.Time, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sections[id]
	if !ok {
		return time.Time{}, gorm.ErrRecordNotFound
	}
	now := time.Now()
	s.Answers = answers
	s.Cursor = cursor
	s.LastSavedAt = now
	return now, nil
}

type fakeResultsRepo struct {
	store *memStore
}

func (r *fakeResultsRepo) GetOrCreate(tx *gorm.DB, assessmentID uint) (*model.AssessmentResults, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.results[assessmentID]; ok {
		c := *existing
		return &c, false, nil
	}
	r.store.nextResultsID++
	results := &model.AssessmentResults{
		ID:           r.store.nextResultsID,
		AssessmentID: assessmentID,
		GeneratedAt:  time.Now(),
	}
	r.store.results[assessmentID] = results
	c := *results
	return &c, true, nil
}

func (r *fakeResultsRepo) FindByAssessment(tx *gorm.DB, assessmentID uint) (*model.AssessmentResults, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	results, ok := r.store.results[assessmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *results
	return &c, nil
}

func (r *fakeResultsRepo) Update(tx *gorm.DB, results *model.AssessmentResults) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.results[results.AssessmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *results
	r.store.results[results.AssessmentID] = &c
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UsernameExists(username string) (bool, error) {
	_, err := r.FindByUsername(username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeResultsTrigger struct {
	mu    sync.Mutex
	calls []uint
}

func (t *fakeResultsTrigger) OnAssessmentCompleted(ctx context.Context, assessmentID uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, assessmentID)
	return nil
}

func (t *fakeResultsTrigger) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

type fakeLLM struct {
	mu       sync.Mutex
	analyzed chan uint
	err      error
	replies  []string
	replyErr error
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{analyzed: make(chan uint, 8)}
}

func (l *fakeLLM) AnalyzeAssessment(ctx context.Context, sheets map[model.SectionKind]json.RawMessage) (*CareerAnalysis, error) {
	l.mu.Lock()
	err := l.err
	l.mu.Unlock()
	select {
	case l.analyzed <- uint(len(sheets)):
	default:
	}
	if err != nil {
		return nil, err
	}
	return &CareerAnalysis{
		AptitudeScore:      json.RawMessage(`{"overall":80}`),
		ValuesScore:        json.RawMessage(`{"overall":70}`),
		PersonalScore:      json.RawMessage(`{"overall":75}`),
		RecommendedStreams: json.RawMessage(`["science"]`),
		Strengths:          json.RawMessage(`["analytical thinking"]`),
		CareerPaths:        json.RawMessage(`["engineer"]`),
	}, nil
}

func (l *fakeLLM) GenerateChatReply(ctx context.Context, message string, resultsContext bool) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.replyErr != nil {
		return "", l.replyErr
	}
	reply := "Keep exploring your options!"
	if len(l.replies) > 0 {
		reply = l.replies[0]
		l.replies = l.replies[1:]
	}
	return reply, nil
}
