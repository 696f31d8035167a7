package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// analyticsSetRepo serves canned set facts; the analytics queries derive
// their answers from one shared fact list the way the real pipelines
// derive theirs from the sets collection.
type analyticsSetRepo struct {
	facts []repository.SetFact
}

func (r *analyticsSetRepo) Create(ctx context.Context, set *domain.WorkoutSet) (primitive.ObjectID, error) {
	return primitive.NilObjectID, nil
}
func (r *analyticsSetRepo) GetBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	return nil, nil
}
func (r *analyticsSetRepo) Update(ctx context.Context, id primitive.ObjectID, weight *float64, reps *int) error {
	return nil
}
func (r *analyticsSetRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }
func (r *analyticsSetRepo) DeleteBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) error {
	return nil
}
func (r *analyticsSetRepo) DeleteBySessionExerciseIDs(ctx context.Context, sessionExerciseIDs []primitive.ObjectID) error {
	return nil
}
func (r *analyticsSetRepo) Renumber(ctx context.Context, assignments []repository.SetNumberAssignment) error {
	return nil
}

func (r *analyticsSetRepo) MaxWeightForExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID, before *time.Time) (*float64, error) {
	var max *float64
	for _, fact := range r.facts {
		if fact.ExerciseID != exerciseID || fact.Weight == nil {
			continue
		}
		if before != nil && !fact.SessionDate.Before(*before) {
			continue
		}
		if max == nil || *fact.Weight > *max {
			value := *fact.Weight
			max = &value
		}
	}
	return max, nil
}

func (r *analyticsSetRepo) CompletedSetFacts(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]repository.SetFact, error) {
	var out []repository.SetFact
	for _, fact := range r.facts {
		if !fact.SessionDate.Before(from) && fact.SessionDate.Before(to) {
			out = append(out, fact)
		}
	}
	return out, nil
}

func (r *analyticsSetRepo) TopWeightFacts(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]repository.SetFact, error) {
	var out []repository.SetFact
	for _, fact := range r.facts {
		if fact.Weight != nil {
			out = append(out, fact)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].Weight > *out[j].Weight })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newStatsFixture(facts []repository.SetFact, now time.Time) (*statsService, *stubSessionRepo) {
	sessions := newStubSessionRepo()
	svc := NewStatsService(sessions, &analyticsSetRepo{facts: facts}).(*statsService)
	svc.now = func() time.Time { return now }
	return svc, sessions
}

func fact(exerciseID primitive.ObjectID, name string, weight float64, reps int, date time.Time) repository.SetFact {
	return repository.SetFact{
		ExerciseID:   exerciseID,
		ExerciseName: name,
		Weight:       &weight,
		Reps:         &reps,
		SessionDate:  date,
	}
}

func TestCalculateWeeklyStreak(t *testing.T) {
	now := time.Date(2026, 8, 26, 18, 0, 0, 0, time.UTC) // Wednesday
	days := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	t.Run("three consecutive weeks", func(t *testing.T) {
		dates := []time.Time{days(1), days(8), days(15)}
		assert.Equal(t, 3, CalculateWeeklyStreak(dates, now))
	})

	t.Run("gap breaks the count", func(t *testing.T) {
		dates := []time.Time{days(1), days(15)}
		assert.Equal(t, 1, CalculateWeeklyStreak(dates, now))
	})

	t.Run("idle current week counts from last week", func(t *testing.T) {
		dates := []time.Time{days(8), days(15)}
		assert.Equal(t, 2, CalculateWeeklyStreak(dates, now))
	})

	t.Run("two idle weeks reset to zero", func(t *testing.T) {
		dates := []time.Time{days(15), days(22)}
		assert.Equal(t, 0, CalculateWeeklyStreak(dates, now))
	})

	t.Run("no sessions", func(t *testing.T) {
		assert.Equal(t, 0, CalculateWeeklyStreak(nil, now))
	})

	t.Run("multiple sessions in one week count once", func(t *testing.T) {
		dates := []time.Time{days(1), days(2), days(3), days(8)}
		assert.Equal(t, 2, CalculateWeeklyStreak(dates, now))
	})

	t.Run("year rollover", func(t *testing.T) {
		newYear := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC) // ISO week 2 of 2026
		dates := []time.Time{
			time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC),    // week 2, 2026
			time.Date(2025, 12, 30, 9, 0, 0, 0, time.UTC),  // week 1, 2026
			time.Date(2025, 12, 23, 9, 0, 0, 0, time.UTC),  // week 52, 2025
		}
		assert.Equal(t, 3, CalculateWeeklyStreak(dates, newYear))
	})
}

func TestGetPersonalRecordRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	bench := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()

	facts := []repository.SetFact{
		fact(bench, "Bench Press", 90, 5, now.AddDate(0, 0, -45)),
		fact(bench, "Bench Press", 100, 3, now.AddDate(0, 0, -10)),
	}
	svc, _ := newStatsFixture(facts, now)

	record, err := svc.GetPersonalRecord(context.Background(), ownerID, bench)
	require.NoError(t, err)
	require.NotNil(t, record.Current)
	assert.Equal(t, 100.0, *record.Current)
	require.NotNil(t, record.Prior)
	assert.Equal(t, 90.0, *record.Prior)

	// A heavier completed set moves the record on the next read.
	svc2, _ := newStatsFixture(append(facts, fact(bench, "Bench Press", 105, 1, now)), now)
	record, err = svc2.GetPersonalRecord(context.Background(), ownerID, bench)
	require.NoError(t, err)
	require.NotNil(t, record.Current)
	assert.Equal(t, 105.0, *record.Current)

	// An exercise with no history has no record at all.
	record, err = svc.GetPersonalRecord(context.Background(), ownerID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, record.Current)
	assert.Nil(t, record.Prior)
}

func TestGetDashboard(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ownerID := primitive.NewObjectID()
	bench := primitive.NewObjectID()
	squat := primitive.NewObjectID()
	deadlift := primitive.NewObjectID()

	facts := []repository.SetFact{
		// this week
		fact(bench, "Bench Press", 100, 5, now.AddDate(0, 0, -2)),
		fact(squat, "Squat", 140, 3, now.AddDate(0, 0, -2)),
		// previous week
		fact(bench, "Bench Press", 95, 5, now.AddDate(0, 0, -10)),
		// older history
		fact(deadlift, "Deadlift", 180, 1, now.AddDate(0, 0, -40)),
		fact(bench, "Bench Press", 90, 5, now.AddDate(0, 0, -45)),
	}
	svc, sessions := newStatsFixture(facts, now)

	// Completed sessions two and nine days ago.
	for _, daysAgo := range []int{2, 9} {
		id := primitive.NewObjectID()
		sessions.sessions[id] = &domain.WorkoutSession{
			ID:              id,
			OwnerID:         ownerID,
			Date:            now.AddDate(0, 0, -daysAgo),
			Status:          domain.StatusCompleted,
			DurationMinutes: 50,
		}
	}

	stats, err := svc.GetDashboard(context.Background(), ownerID)
	require.NoError(t, err)

	assert.Equal(t, 100*5+140*3.0, stats.WeeklyVolume)
	assert.Equal(t, 95*5.0, stats.PreviousWeekVolume)
	assert.Equal(t, 2, stats.WeeklyStreak)

	// Bench beat its pre-week max (95), squat had no earlier history.
	assert.Equal(t, 2, stats.PRsThisWeek)
	assert.Equal(t, []string{"Bench Press", "Squat"}, stats.RecentPRNames)

	// Top records deduplicate by exercise, weight descending.
	require.Len(t, stats.TopRecords, 3)
	assert.Equal(t, "Deadlift", stats.TopRecords[0].ExerciseName)
	assert.Equal(t, 180.0, stats.TopRecords[0].Weight)
	assert.Equal(t, "Squat", stats.TopRecords[1].ExerciseName)
	assert.Equal(t, "Bench Press", stats.TopRecords[2].ExerciseName)

	// Bench: 90 in the prior thirty days, 100 in the last thirty.
	require.NotNil(t, stats.MostImproved)
	assert.Equal(t, "Bench Press", stats.MostImproved.ExerciseName)
	assert.Equal(t, 90.0, stats.MostImproved.PreviousMax)
	assert.Equal(t, 100.0, stats.MostImproved.CurrentMax)
	assert.Equal(t, 10.0, stats.MostImproved.Delta)

	require.NotNil(t, stats.LastSession)
	assert.Equal(t, 50, stats.LastSession.DurationMinutes)
}

func TestGetDashboardEmptyHistory(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	svc, _ := newStatsFixture(nil, now)

	stats, err := svc.GetDashboard(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Zero(t, stats.WeeklyVolume)
	assert.Zero(t, stats.PRsThisWeek)
	assert.Zero(t, stats.WeeklyStreak)
	assert.Empty(t, stats.TopRecords)
	assert.Empty(t, stats.RecentPRNames)
	assert.Nil(t, stats.MostImproved)
	assert.Nil(t, stats.LastSession)
}

func TestGetWeeklyStreakFromSessions(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ownerID := primitive.NewObjectID()
	svc, sessions := newStatsFixture(nil, now)

	for _, daysAgo := range []int{2, 9, 16} {
		id := primitive.NewObjectID()
		sessions.sessions[id] = &domain.WorkoutSession{
			ID:      id,
			OwnerID: ownerID,
			Date:    now.AddDate(0, 0, -daysAgo),
			Status:  domain.StatusCompleted,
		}
	}
	// An active session does not count toward the streak.
	activeID := primitive.NewObjectID()
	sessions.sessions[activeID] = &domain.WorkoutSession{
		ID:      activeID,
		OwnerID: ownerID,
		Date:    now,
		Status:  domain.StatusActive,
	}

	streak, err := svc.GetWeeklyStreak(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}
