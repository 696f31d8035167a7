package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hand-written in-memory stubs standing in for the Mongo repositories.
// Each records the cross-repository call order in a shared callLog so
// tests can assert cascade ordering.

var errStubInsert = errors.New("stub: insert failed")

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

// --- user repo ---

type stubUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	copied := *user
	copied.ID = id
	copied.CreatedAt = time.Now().UTC()
	r.users[id] = &copied
	return id, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// --- exercise repo ---

type stubExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newStubExerciseRepo() *stubExerciseRepo {
	return &stubExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (r *stubExerciseRepo) seed(ownerID primitive.ObjectID, name, muscleGroup string, defaultSets int) *domain.Exercise {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise := &domain.Exercise{
		ID:              primitive.NewObjectID(),
		OwnerID:         ownerID,
		Name:            name,
		MuscleGroup:     muscleGroup,
		DefaultSetCount: defaultSets,
	}
	r.exercises[exercise.ID] = exercise
	return exercise
}

func (r *stubExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	copied := *exercise
	copied.ID = id
	r.exercises[id] = &copied
	return id, nil
}

func (r *stubExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *exercise
	return &copied, nil
}

func (r *stubExerciseRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Exercise
	for _, exercise := range r.exercises {
		if exercise.OwnerID == ownerID {
			out = append(out, *exercise)
		}
	}
	return out, nil
}

func (r *stubExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.exercises[exercise.ID]
	if !ok || existing.OwnerID != exercise.OwnerID {
		return repository.ErrUpdateFailed
	}
	copied := *exercise
	r.exercises[exercise.ID] = &copied
	return nil
}

func (r *stubExerciseRepo) UpdateDefaultSetCount(ctx context.Context, id, ownerID primitive.ObjectID, defaultSetCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise, ok := r.exercises[id]
	if !ok || exercise.OwnerID != ownerID {
		return repository.ErrUpdateFailed
	}
	exercise.DefaultSetCount = defaultSetCount
	return nil
}

func (r *stubExerciseRepo) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise, ok := r.exercises[id]
	if !ok || exercise.OwnerID != ownerID {
		return repository.ErrDeleteFailed
	}
	delete(r.exercises, id)
	return nil
}

// --- template repos ---

type stubTemplateRepo struct {
	mu        sync.Mutex
	templates map[primitive.ObjectID]*domain.WorkoutTemplate
}

func newStubTemplateRepo() *stubTemplateRepo {
	return &stubTemplateRepo{templates: make(map[primitive.ObjectID]*domain.WorkoutTemplate)}
}

func (r *stubTemplateRepo) Create(ctx context.Context, template *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	copied := *template
	copied.ID = id
	r.templates[id] = &copied
	return id, nil
}

func (r *stubTemplateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *template
	return &copied, nil
}

func (r *stubTemplateRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutTemplate
	for _, template := range r.templates {
		if template.OwnerID == ownerID {
			out = append(out, *template)
		}
	}
	return out, nil
}

func (r *stubTemplateRepo) Update(ctx context.Context, template *domain.WorkoutTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[template.ID]; !ok {
		return repository.ErrUpdateFailed
	}
	copied := *template
	r.templates[template.ID] = &copied
	return nil
}

func (r *stubTemplateRepo) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[id]
	if !ok || template.OwnerID != ownerID {
		return repository.ErrDeleteFailed
	}
	delete(r.templates, id)
	return nil
}

type stubTemplateExerciseRepo struct {
	mu      sync.Mutex
	entries map[primitive.ObjectID]*domain.TemplateExercise
}

func newStubTemplateExerciseRepo() *stubTemplateExerciseRepo {
	return &stubTemplateExerciseRepo{entries: make(map[primitive.ObjectID]*domain.TemplateExercise)}
}

func (r *stubTemplateExerciseRepo) Create(ctx context.Context, entry *domain.TemplateExercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	copied := *entry
	copied.ID = id
	r.entries[id] = &copied
	return id, nil
}

func (r *stubTemplateExerciseRepo) GetByTemplateID(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TemplateExercise
	for _, entry := range r.entries {
		if entry.TemplateID == templateID {
			out = append(out, *entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *stubTemplateExerciseRepo) MaxOrder(ctx context.Context, templateID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, entry := range r.entries {
		if entry.TemplateID == templateID && entry.Order > max {
			max = entry.Order
		}
	}
	return max, nil
}

func (r *stubTemplateExerciseRepo) Delete(ctx context.Context, id, templateID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.TemplateID != templateID {
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *stubTemplateExerciseRepo) DeleteByTemplateID(ctx context.Context, templateID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.entries {
		if entry.TemplateID == templateID {
			delete(r.entries, id)
		}
	}
	return nil
}

// --- session repos ---

type stubSessionRepo struct {
	mu        sync.Mutex
	log       *callLog
	sessions  map[primitive.ObjectID]*domain.WorkoutSession
	createErr error
	finishErr error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (r *stubSessionRepo) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	copied := *session
	copied.ID = id
	r.sessions[id] = &copied
	return id, nil
}

func (r *stubSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *stubSessionRepo) Finish(ctx context.Context, id, ownerID primitive.ObjectID, durationMinutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finishErr != nil {
		return r.finishErr
	}
	session, ok := r.sessions[id]
	if !ok || session.OwnerID != ownerID || session.Status != domain.StatusActive {
		return repository.ErrUpdateFailed
	}
	session.Status = domain.StatusCompleted
	session.DurationMinutes = durationMinutes
	return nil
}

func (r *stubSessionRepo) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	r.log.add("sessions.Delete")
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return repository.ErrDeleteFailed
	}
	delete(r.sessions, id)
	return nil
}

func (r *stubSessionRepo) completed(ownerID primitive.ObjectID) []domain.WorkoutSession {
	var out []domain.WorkoutSession
	for _, session := range r.sessions {
		if session.OwnerID == ownerID && session.Status == domain.StatusCompleted {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r *stubSessionRepo) GetCompletedByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.completed(ownerID)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubSessionRepo) GetCompletedInRange(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutSession
	for _, session := range r.completed(ownerID) {
		if !session.Date.Before(from) && session.Date.Before(to) {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) GetLastCompleted(ctx context.Context, ownerID primitive.ObjectID) (*repository.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	completed := r.completed(ownerID)
	if len(completed) == 0 {
		return nil, repository.ErrNotFound
	}
	latest := completed[0]
	return &repository.SessionSummary{
		SessionID:       latest.ID,
		Date:            latest.Date,
		DurationMinutes: latest.DurationMinutes,
	}, nil
}

func (r *stubSessionRepo) LastCompletedDateForTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.completed(ownerID) {
		if session.TemplateID == templateID {
			return session.Date, nil
		}
	}
	return time.Time{}, repository.ErrNotFound
}

type stubSessionExerciseRepo struct {
	mu        sync.Mutex
	log       *callLog
	rows      map[primitive.ObjectID]*domain.SessionExercise
	failAfter int // fail the Nth Create (0-based); negative disables
	created   int
}

func newStubSessionExerciseRepo() *stubSessionExerciseRepo {
	return &stubSessionExerciseRepo{
		rows:      make(map[primitive.ObjectID]*domain.SessionExercise),
		failAfter: -1,
	}
}

func (r *stubSessionExerciseRepo) Create(ctx context.Context, sessionExercise *domain.SessionExercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter >= 0 && r.created >= r.failAfter {
		return primitive.NilObjectID, errStubInsert
	}
	r.created++
	id := primitive.NewObjectID()
	copied := *sessionExercise
	copied.ID = id
	r.rows[id] = &copied
	return id, nil
}

func (r *stubSessionExerciseRepo) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionExercise
	for _, row := range r.rows {
		if row.SessionID == sessionID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubSessionExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrDeleteFailed
	}
	delete(r.rows, id)
	return nil
}

func (r *stubSessionExerciseRepo) DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) error {
	r.log.add("sessionExercises.DeleteBySessionID")
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.SessionID == sessionID {
			delete(r.rows, id)
		}
	}
	return nil
}

type stubSetRepo struct {
	mu        sync.Mutex
	log       *callLog
	rows      map[primitive.ObjectID]*domain.WorkoutSet
	failAfter int // fail the Nth Create (0-based); negative disables
	created   int
	updateErr error
	updates   int
}

func newStubSetRepo() *stubSetRepo {
	return &stubSetRepo{
		rows:      make(map[primitive.ObjectID]*domain.WorkoutSet),
		failAfter: -1,
	}
}

func (r *stubSetRepo) Create(ctx context.Context, set *domain.WorkoutSet) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter >= 0 && r.created >= r.failAfter {
		return primitive.NilObjectID, errStubInsert
	}
	r.created++
	id := primitive.NewObjectID()
	copied := *set
	copied.ID = id
	r.rows[id] = &copied
	return id, nil
}

func (r *stubSetRepo) GetBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutSet
	for _, row := range r.rows {
		if row.SessionExerciseID == sessionExerciseID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

func (r *stubSetRepo) Update(ctx context.Context, id primitive.ObjectID, weight *float64, reps *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	row, ok := r.rows[id]
	if !ok {
		return repository.ErrUpdateFailed
	}
	row.Weight = weight
	row.Reps = reps
	return nil
}

func (r *stubSetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrDeleteFailed
	}
	delete(r.rows, id)
	return nil
}

func (r *stubSetRepo) DeleteBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.SessionExerciseID == sessionExerciseID {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *stubSetRepo) DeleteBySessionExerciseIDs(ctx context.Context, sessionExerciseIDs []primitive.ObjectID) error {
	r.log.add("sets.DeleteBySessionExerciseIDs")
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make(map[primitive.ObjectID]bool, len(sessionExerciseIDs))
	for _, id := range sessionExerciseIDs {
		members[id] = true
	}
	for id, row := range r.rows {
		if members[row.SessionExerciseID] {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *stubSetRepo) Renumber(ctx context.Context, assignments []repository.SetNumberAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, assignment := range assignments {
		row, ok := r.rows[assignment.SetID]
		if !ok {
			return repository.ErrUpdateFailed
		}
		row.SetNumber = assignment.SetNumber
	}
	return nil
}

func (r *stubSetRepo) MaxWeightForExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID, before *time.Time) (*float64, error) {
	return nil, nil
}

func (r *stubSetRepo) CompletedSetFacts(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]repository.SetFact, error) {
	return nil, nil
}

func (r *stubSetRepo) TopWeightFacts(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]repository.SetFact, error) {
	return nil, nil
}
