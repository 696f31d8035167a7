package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionAlreadyActive    = errors.New("a workout session is already active")
	ErrNoActiveSession         = errors.New("no active workout session")
	ErrFinishInProgress        = errors.New("workout finish already in progress")
	ErrSetNotFound             = errors.New("set not found in the active session")
	ErrSessionExerciseNotFound = errors.New("exercise not found in the active session")
	ErrSessionNotFound         = errors.New("workout session not found")
	ErrNoExercises             = errors.New("cannot start a workout without exercises")
)

// StartExercise describes one template exercise passed to StartWorkout.
// ExerciseName and DefaultSetCount are denormalized here: the session copies
// them at start time and never re-reads the Exercise afterward.
type StartExercise struct {
	ExerciseID      primitive.ObjectID
	ExerciseName    string
	DefaultSetCount int
}

// ActiveSet is one set of the in-memory active workout graph.
type ActiveSet struct {
	ID        primitive.ObjectID `json:"id"`
	SetNumber int                `json:"setNumber"`
	Weight    *float64           `json:"weight"`
	Reps      *int               `json:"reps"`
}

// ActiveExercise is one exercise of the in-memory active workout graph.
type ActiveExercise struct {
	ID              primitive.ObjectID `json:"id"` // session exercise id
	ExerciseID      primitive.ObjectID `json:"exerciseId"`
	ExerciseName    string             `json:"exerciseName"`
	DefaultSetCount int                `json:"defaultSetCount"`
	Sets            []ActiveSet        `json:"sets"`
}

// ActiveWorkout is the in-memory graph of the user's live workout session.
// It is owned exclusively by the workout service; consumers get snapshots.
type ActiveWorkout struct {
	SessionID  primitive.ObjectID `json:"sessionId"`
	TemplateID primitive.ObjectID `json:"templateId"`
	StartedAt  time.Time          `json:"startedAt"`
	Exercises  []*ActiveExercise  `json:"exercises"`
}

// SmartSetCandidate is emitted at finish time for each exercise whose count
// of fully logged sets strictly exceeds its recorded default. The user
// decides per candidate whether to persist the new default.
type SmartSetCandidate struct {
	ExerciseID   primitive.ObjectID `json:"exerciseId"`
	ExerciseName string             `json:"exerciseName"`
	Actual       int                `json:"actual"`
	Default      int                `json:"default"`
}

// SetView is one set of a workout snapshot, with the edit-buffer display
// rule already applied to its input texts.
type SetView struct {
	ID          primitive.ObjectID `json:"id"`
	SetNumber   int                `json:"setNumber"`
	Weight      *float64           `json:"weight"`
	Reps        *int               `json:"reps"`
	WeightInput string             `json:"weightInput"`
	RepsInput   string             `json:"repsInput"`
	Done        bool               `json:"done"`
}

// ExerciseView is one exercise of a workout snapshot.
type ExerciseView struct {
	ID              primitive.ObjectID `json:"id"`
	ExerciseID      primitive.ObjectID `json:"exerciseId"`
	ExerciseName    string             `json:"exerciseName"`
	DefaultSetCount int                `json:"defaultSetCount"`
	Sets            []SetView          `json:"sets"`
}

// WorkoutSnapshot is the read-only view of the active session handed to
// presentation consumers.
type WorkoutSnapshot struct {
	SessionID  primitive.ObjectID `json:"sessionId"`
	TemplateID primitive.ObjectID `json:"templateId"`
	StartedAt  time.Time          `json:"startedAt"`
	Exercises  []ExerciseView     `json:"exercises"`
}

// WorkoutService owns the lifecycle of active workout sessions: one per
// user, created from a template, mutated set by set, and either finished
// (status flip plus smart-set suggestions) or cancelled (cascade delete).
type WorkoutService interface {
	StartWorkout(ctx context.Context, ownerID, templateID primitive.ObjectID, exercises []StartExercise) (*WorkoutSnapshot, error)
	Snapshot(ownerID primitive.ObjectID) (*WorkoutSnapshot, error)
	UpdateSet(ctx context.Context, ownerID, setID primitive.ObjectID, weight *float64, reps *int) error
	// LogSetInput records raw field text in the edit buffer, then resolves
	// the combined weight/reps pair and forwards it to UpdateSet.
	LogSetInput(ctx context.Context, ownerID, setID primitive.ObjectID, weightText, repsText *string) error
	ToggleSetDone(ownerID, setID primitive.ObjectID) (bool, error)
	AddSet(ctx context.Context, ownerID, sessionExerciseID primitive.ObjectID) (*ActiveSet, error)
	DeleteSet(ctx context.Context, ownerID, sessionExerciseID, setID primitive.ObjectID) error
	AddExerciseToSession(ctx context.Context, ownerID, exerciseID primitive.ObjectID) (*ActiveExercise, error)
	RemoveExerciseFromSession(ctx context.Context, ownerID, sessionExerciseID primitive.ObjectID) error
	FinishWorkout(ctx context.Context, ownerID primitive.ObjectID, durationMinutes int) ([]SmartSetCandidate, error)
	CancelWorkout(ctx context.Context, ownerID primitive.ObjectID) error
	// DeleteSession is out-of-band cleanup for historical (completed) sessions.
	DeleteSession(ctx context.Context, ownerID, sessionID primitive.ObjectID) error
}

// activeState bundles the in-memory graph with its edit buffer and the
// transition flags guarding start/finish.
type activeState struct {
	workout   *ActiveWorkout
	buffer    *EditBuffer
	starting  bool
	finishing bool
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	sessionRepo         repository.SessionRepository
	sessionExerciseRepo repository.SessionExerciseRepository
	setRepo             repository.SetRepository
	exerciseRepo        repository.ExerciseRepository

	// mu guards the active map and every in-memory graph mutation.
	// It is never held across a store round-trip.
	mu     sync.Mutex
	active map[primitive.ObjectID]*activeState
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	sessionRepo repository.SessionRepository,
	sessionExerciseRepo repository.SessionExerciseRepository,
	setRepo repository.SetRepository,
	exerciseRepo repository.ExerciseRepository,
) WorkoutService {
	return &workoutService{
		sessionRepo:         sessionRepo,
		sessionExerciseRepo: sessionExerciseRepo,
		setRepo:             setRepo,
		exerciseRepo:        exerciseRepo,
		active:              make(map[primitive.ObjectID]*activeState),
	}
}

// StartWorkout creates a session row plus, per template exercise, one
// session exercise row and defaultSetCount placeholder sets, strictly in
// program order. Sequential creation bounds latency to O(exercises) round
// trips but keeps partial-failure reasoning simple: the first failing row
// tells exactly how far progress got. On failure the rows already written
// are rolled back best-effort before the first error is surfaced.
//
// The method refuses to run while the user already has a session starting
// or active; this closes the double-start race instead of relying on the
// UI to disable the button.
func (s *workoutService) StartWorkout(ctx context.Context, ownerID, templateID primitive.ObjectID, exercises []StartExercise) (*WorkoutSnapshot, error) {
	if ownerID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, errors.New("owner ID and template ID are required")
	}
	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}

	s.mu.Lock()
	if _, exists := s.active[ownerID]; exists {
		s.mu.Unlock()
		return nil, ErrSessionAlreadyActive
	}
	s.active[ownerID] = &activeState{starting: true}
	s.mu.Unlock()

	workout, err := s.createSessionGraph(ctx, ownerID, templateID, exercises)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		delete(s.active, ownerID)
		return nil, err
	}

	state := s.active[ownerID]
	state.starting = false
	state.workout = workout
	state.buffer = NewEditBuffer()
	return snapshotLocked(state), nil
}

// createSessionGraph performs the sequential inserts of StartWorkout and
// builds the in-memory graph. On any failure it deletes the rows created so
// far, in reverse dependency order, and returns the first error.
func (s *workoutService) createSessionGraph(ctx context.Context, ownerID, templateID primitive.ObjectID, exercises []StartExercise) (*ActiveWorkout, error) {
	now := time.Now().UTC()
	session := &domain.WorkoutSession{
		OwnerID:    ownerID,
		TemplateID: templateID,
		Date:       now,
		Status:     domain.StatusActive,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	workout := &ActiveWorkout{
		SessionID:  sessionID,
		TemplateID: templateID,
		StartedAt:  now,
	}

	var createdExerciseIDs []primitive.ObjectID
	rollback := func(cause error) error {
		// Best-effort compensation: sets, then session exercises, then the
		// session row. Failures here are logged, not surfaced; the original
		// error is what the caller needs to see.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.setRepo.DeleteBySessionExerciseIDs(cleanupCtx, createdExerciseIDs); err != nil {
			log.Printf("WARN: start rollback: failed to delete sets of session %s: %v", sessionID.Hex(), err)
		}
		if err := s.sessionExerciseRepo.DeleteBySessionID(cleanupCtx, sessionID); err != nil {
			log.Printf("WARN: start rollback: failed to delete session exercises of session %s: %v", sessionID.Hex(), err)
		}
		if err := s.sessionRepo.Delete(cleanupCtx, sessionID, ownerID); err != nil {
			log.Printf("WARN: start rollback: failed to delete session %s: %v", sessionID.Hex(), err)
		}
		return cause
	}

	for _, entry := range exercises {
		sessionExercise := &domain.SessionExercise{
			SessionID:    sessionID,
			ExerciseID:   entry.ExerciseID,
			ExerciseName: entry.ExerciseName,
		}
		sessionExerciseID, err := s.sessionExerciseRepo.Create(ctx, sessionExercise)
		if err != nil {
			return nil, rollback(err)
		}
		createdExerciseIDs = append(createdExerciseIDs, sessionExerciseID)

		active := &ActiveExercise{
			ID:              sessionExerciseID,
			ExerciseID:      entry.ExerciseID,
			ExerciseName:    entry.ExerciseName,
			DefaultSetCount: entry.DefaultSetCount,
		}

		setCount := entry.DefaultSetCount
		if setCount <= 0 {
			setCount = defaultSetCountFallback
		}
		for setNumber := 1; setNumber <= setCount; setNumber++ {
			set := &domain.WorkoutSet{
				SessionExerciseID: sessionExerciseID,
				SetNumber:         setNumber,
				Weight:            nil,
				Reps:              nil,
			}
			setID, err := s.setRepo.Create(ctx, set)
			if err != nil {
				return nil, rollback(err)
			}
			active.Sets = append(active.Sets, ActiveSet{ID: setID, SetNumber: setNumber})
		}

		workout.Exercises = append(workout.Exercises, active)
	}

	return workout, nil
}

// Snapshot returns the read-only view of the user's active session.
func (s *workoutService) Snapshot(ownerID primitive.ObjectID) (*WorkoutSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		return nil, err
	}
	return snapshotLocked(state), nil
}

// UpdateSet writes both fields unconditionally; a nil clears a field.
// The in-memory graph is updated optimistically before the store write;
// a failed write leaves the optimistic value in place (no rollback) and
// surfaces the error so the caller can retry.
func (s *workoutService) UpdateSet(ctx context.Context, ownerID, setID primitive.ObjectID, weight *float64, reps *int) error {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	// Set ids are globally unique, so the search spans every exercise.
	set := findSetLocked(state.workout, setID)
	if set == nil {
		s.mu.Unlock()
		return ErrSetNotFound
	}
	set.Weight = weight
	set.Reps = reps
	s.mu.Unlock()

	return s.setRepo.Update(ctx, setID, weight, reps)
}

// LogSetInput is the keystroke path: buffer the raw text synchronously,
// then resolve buffer plus prior value into a typed pair and forward it.
func (s *workoutService) LogSetInput(ctx context.Context, ownerID, setID primitive.ObjectID, weightText, repsText *string) error {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	set := findSetLocked(state.workout, setID)
	if set == nil {
		s.mu.Unlock()
		return ErrSetNotFound
	}

	if weightText != nil {
		state.buffer.SetWeightInput(setID, *weightText)
	}
	if repsText != nil {
		state.buffer.SetRepsInput(setID, *repsText)
	}
	weight, reps := state.buffer.Resolve(setID, set.Weight, set.Reps)
	s.mu.Unlock()

	return s.UpdateSet(ctx, ownerID, setID, weight, reps)
}

// ToggleSetDone flips the ephemeral completion flag of a set.
func (s *workoutService) ToggleSetDone(ownerID, setID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		return false, err
	}
	if findSetLocked(state.workout, setID) == nil {
		return false, ErrSetNotFound
	}
	return state.buffer.ToggleDone(setID), nil
}

// AddSet appends a placeholder set to an exercise of the active session,
// numbered max(existing)+1.
func (s *workoutService) AddSet(ctx context.Context, ownerID, sessionExerciseID primitive.ObjectID) (*ActiveSet, error) {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	exercise := findExerciseLocked(state.workout, sessionExerciseID)
	if exercise == nil {
		s.mu.Unlock()
		return nil, ErrSessionExerciseNotFound
	}

	nextNumber := 0
	for _, set := range exercise.Sets {
		if set.SetNumber > nextNumber {
			nextNumber = set.SetNumber
		}
	}
	nextNumber++
	s.mu.Unlock()

	row := &domain.WorkoutSet{
		SessionExerciseID: sessionExerciseID,
		SetNumber:         nextNumber,
	}
	setID, err := s.setRepo.Create(ctx, row)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-resolve: the session may have been cancelled while the insert was
	// in flight; in that case the row is orphaned but the state is gone.
	state, err = s.activeStateLocked(ownerID)
	if err != nil {
		return nil, err
	}
	exercise = findExerciseLocked(state.workout, sessionExerciseID)
	if exercise == nil {
		return nil, ErrSessionExerciseNotFound
	}
	added := ActiveSet{ID: setID, SetNumber: nextNumber}
	exercise.Sets = append(exercise.Sets, added)
	return &added, nil
}

// DeleteSet removes one set and eagerly renumbers the survivors of the same
// exercise densely from 1, preserving their relative order. After any
// add/delete the set numbers of an exercise are exactly 1..N.
func (s *workoutService) DeleteSet(ctx context.Context, ownerID, sessionExerciseID, setID primitive.ObjectID) error {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	exercise := findExerciseLocked(state.workout, sessionExerciseID)
	if exercise == nil {
		s.mu.Unlock()
		return ErrSessionExerciseNotFound
	}

	found := false
	survivors := make([]ActiveSet, 0, len(exercise.Sets))
	for _, set := range exercise.Sets {
		if set.ID == setID {
			found = true
			continue
		}
		survivors = append(survivors, set)
	}
	if !found {
		s.mu.Unlock()
		return ErrSetNotFound
	}

	assignments := make([]repository.SetNumberAssignment, 0, len(survivors))
	for i := range survivors {
		survivors[i].SetNumber = i + 1
		assignments = append(assignments, repository.SetNumberAssignment{
			SetID:     survivors[i].ID,
			SetNumber: survivors[i].SetNumber,
		})
	}
	exercise.Sets = survivors
	state.buffer.Drop(setID)
	s.mu.Unlock()

	if err := s.setRepo.Delete(ctx, setID); err != nil {
		return err
	}
	return s.setRepo.Renumber(ctx, assignments)
}

// AddExerciseToSession adds an ad-hoc exercise (plus its placeholder sets)
// to the already-active session.
func (s *workoutService) AddExerciseToSession(ctx context.Context, ownerID, exerciseID primitive.ObjectID) (*ActiveExercise, error) {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sessionID := state.workout.SessionID
	s.mu.Unlock()

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.OwnerID != ownerID {
		return nil, ErrExerciseAccessDenied
	}

	sessionExercise := &domain.SessionExercise{
		SessionID:    sessionID,
		ExerciseID:   exercise.ID,
		ExerciseName: exercise.Name,
	}
	sessionExerciseID, err := s.sessionExerciseRepo.Create(ctx, sessionExercise)
	if err != nil {
		return nil, err
	}

	active := &ActiveExercise{
		ID:              sessionExerciseID,
		ExerciseID:      exercise.ID,
		ExerciseName:    exercise.Name,
		DefaultSetCount: exercise.DefaultSetCount,
	}

	setCount := exercise.DefaultSetCount
	if setCount <= 0 {
		setCount = defaultSetCountFallback
	}
	for setNumber := 1; setNumber <= setCount; setNumber++ {
		row := &domain.WorkoutSet{
			SessionExerciseID: sessionExerciseID,
			SetNumber:         setNumber,
		}
		setID, err := s.setRepo.Create(ctx, row)
		if err != nil {
			return nil, err
		}
		active.Sets = append(active.Sets, ActiveSet{ID: setID, SetNumber: setNumber})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, err = s.activeStateLocked(ownerID)
	if err != nil {
		return nil, err
	}
	state.workout.Exercises = append(state.workout.Exercises, active)
	return active, nil
}

// RemoveExerciseFromSession removes a session exercise and all of its sets.
func (s *workoutService) RemoveExerciseFromSession(ctx context.Context, ownerID, sessionExerciseID primitive.ObjectID) error {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	index := -1
	for i, exercise := range state.workout.Exercises {
		if exercise.ID == sessionExerciseID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return ErrSessionExerciseNotFound
	}
	removed := state.workout.Exercises[index]
	state.workout.Exercises = append(state.workout.Exercises[:index], state.workout.Exercises[index+1:]...)
	for _, set := range removed.Sets {
		state.buffer.Drop(set.ID)
	}
	s.mu.Unlock()

	// Sets before their parent row, per dependency direction.
	if err := s.setRepo.DeleteBySessionExerciseID(ctx, sessionExerciseID); err != nil {
		return err
	}
	return s.sessionExerciseRepo.Delete(ctx, sessionExerciseID)
}

// FinishWorkout flips the session to completed, persists the duration and
// computes the smart-set candidates: exercises whose count of fully logged
// sets (weight AND reps non-null) strictly exceeds their recorded default.
// Candidates are returned for per-exercise user confirmation; accepting one
// is a separate UpdateDefaultSets call.
//
// If the status-flip write fails the finishing flag is reset so the session
// does not strand in a "finishing" state.
func (s *workoutService) FinishWorkout(ctx context.Context, ownerID primitive.ObjectID, durationMinutes int) ([]SmartSetCandidate, error) {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if state.finishing {
		s.mu.Unlock()
		return nil, ErrFinishInProgress
	}
	state.finishing = true
	sessionID := state.workout.SessionID
	s.mu.Unlock()

	if err := s.sessionRepo.Finish(ctx, sessionID, ownerID, durationMinutes); err != nil {
		s.mu.Lock()
		if st, ok := s.active[ownerID]; ok {
			st.finishing = false
		}
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	candidates := smartSetCandidatesLocked(state.workout)
	delete(s.active, ownerID)
	return candidates, nil
}

// smartSetCandidatesLocked scans the finished graph for exercises that were
// worked beyond their default set count. One ActiveExercise per exercise id
// makes the result naturally deduplicated.
func smartSetCandidatesLocked(workout *ActiveWorkout) []SmartSetCandidate {
	candidates := []SmartSetCandidate{}
	for _, exercise := range workout.Exercises {
		filled := 0
		for _, set := range exercise.Sets {
			if set.Weight != nil && set.Reps != nil {
				filled++
			}
		}
		if filled > exercise.DefaultSetCount {
			candidates = append(candidates, SmartSetCandidate{
				ExerciseID:   exercise.ExerciseID,
				ExerciseName: exercise.ExerciseName,
				Actual:       filled,
				Default:      exercise.DefaultSetCount,
			})
		}
	}
	return candidates
}

// CancelWorkout deletes the whole session graph (sets, then session
// exercises, then the session row) and clears all in-memory state.
func (s *workoutService) CancelWorkout(ctx context.Context, ownerID primitive.ObjectID) error {
	s.mu.Lock()
	state, err := s.activeStateLocked(ownerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	sessionID := state.workout.SessionID
	exerciseIDs := make([]primitive.ObjectID, 0, len(state.workout.Exercises))
	for _, exercise := range state.workout.Exercises {
		exerciseIDs = append(exerciseIDs, exercise.ID)
	}
	s.mu.Unlock()

	if err := s.setRepo.DeleteBySessionExerciseIDs(ctx, exerciseIDs); err != nil {
		return err
	}
	if err := s.sessionExerciseRepo.DeleteBySessionID(ctx, sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID, ownerID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.active, ownerID)
	s.mu.Unlock()
	return nil
}

// DeleteSession removes a historical session and its children in dependency
// order: sets, then session exercises, then the session itself.
func (s *workoutService) DeleteSession(ctx context.Context, ownerID, sessionID primitive.ObjectID) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.OwnerID != ownerID {
		return ErrSessionNotFound
	}

	sessionExercises, err := s.sessionExerciseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	exerciseIDs := make([]primitive.ObjectID, 0, len(sessionExercises))
	for _, se := range sessionExercises {
		exerciseIDs = append(exerciseIDs, se.ID)
	}

	if err := s.setRepo.DeleteBySessionExerciseIDs(ctx, exerciseIDs); err != nil {
		return err
	}
	if err := s.sessionExerciseRepo.DeleteBySessionID(ctx, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, sessionID, ownerID)
}

// activeStateLocked returns the user's active state. Callers hold s.mu.
func (s *workoutService) activeStateLocked(ownerID primitive.ObjectID) (*activeState, error) {
	state, ok := s.active[ownerID]
	if !ok || state.workout == nil {
		return nil, ErrNoActiveSession
	}
	return state, nil
}

// snapshotLocked builds the read-only view. Callers hold s.mu.
func snapshotLocked(state *activeState) *WorkoutSnapshot {
	snapshot := &WorkoutSnapshot{
		SessionID:  state.workout.SessionID,
		TemplateID: state.workout.TemplateID,
		StartedAt:  state.workout.StartedAt,
		Exercises:  make([]ExerciseView, 0, len(state.workout.Exercises)),
	}
	for _, exercise := range state.workout.Exercises {
		view := ExerciseView{
			ID:              exercise.ID,
			ExerciseID:      exercise.ExerciseID,
			ExerciseName:    exercise.ExerciseName,
			DefaultSetCount: exercise.DefaultSetCount,
			Sets:            make([]SetView, 0, len(exercise.Sets)),
		}
		for _, set := range exercise.Sets {
			view.Sets = append(view.Sets, SetView{
				ID:          set.ID,
				SetNumber:   set.SetNumber,
				Weight:      set.Weight,
				Reps:        set.Reps,
				WeightInput: state.buffer.DisplayWeight(set.ID, set.Weight),
				RepsInput:   state.buffer.DisplayReps(set.ID, set.Reps),
				Done:        state.buffer.IsDone(set.ID),
			})
		}
		snapshot.Exercises = append(snapshot.Exercises, view)
	}
	return snapshot
}

// findSetLocked searches every exercise for a set id. Callers hold s.mu.
func findSetLocked(workout *ActiveWorkout, setID primitive.ObjectID) *ActiveSet {
	for _, exercise := range workout.Exercises {
		for i := range exercise.Sets {
			if exercise.Sets[i].ID == setID {
				return &exercise.Sets[i]
			}
		}
	}
	return nil
}

// findExerciseLocked locates a session exercise by id. Callers hold s.mu.
func findExerciseLocked(workout *ActiveWorkout, sessionExerciseID primitive.ObjectID) *ActiveExercise {
	for _, exercise := range workout.Exercises {
		if exercise.ID == sessionExerciseID {
			return exercise
		}
	}
	return nil
}
