package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	// topRecordScanLimit caps the weight-descending scan behind the top
	// records panel. Deduplicating by exercise over a capped scan can in
	// principle miss a true top-3 for users with very long histories; the
	// cap keeps the payload bounded.
	topRecordScanLimit = 200
	// priorRecordWindow is how far back a max must predate now to count as
	// the "old" personal record for the trend indicator.
	priorRecordWindow = 30 * 24 * time.Hour
	// streakSessionScanLimit bounds the session list fetched for the
	// weekly streak; 500 completed sessions cover years of history.
	streakSessionScanLimit = 500
)

// PersonalRecordStats pairs the all-time max weight of an exercise with
// the max recorded more than thirty days ago, so the caller can render a
// progress arrow.
type PersonalRecordStats struct {
	Current *float64 `json:"current"`
	Prior   *float64 `json:"prior"`
}

// TopRecord is one entry of the dashboard's best-lifts panel.
type TopRecord struct {
	ExerciseID   primitive.ObjectID `json:"exerciseId"`
	ExerciseName string             `json:"exerciseName"`
	Weight       float64            `json:"weight"`
}

// MostImprovedLift names the exercise with the largest max-weight gain of
// the last thirty days over the thirty days before that.
type MostImprovedLift struct {
	ExerciseID   primitive.ObjectID `json:"exerciseId"`
	ExerciseName string             `json:"exerciseName"`
	PreviousMax  float64            `json:"previousMax"`
	CurrentMax   float64            `json:"currentMax"`
	Delta        float64            `json:"delta"`
}

// LastSessionInfo summarizes the most recent completed session.
type LastSessionInfo struct {
	SessionID       primitive.ObjectID `json:"sessionId"`
	TemplateName    string             `json:"templateName"`
	Date            time.Time          `json:"date"`
	DurationMinutes int                `json:"durationMinutes"`
}

// DashboardStats is the composite snapshot behind the home screen.
type DashboardStats struct {
	WeeklyVolume       float64           `json:"weeklyVolume"`
	PreviousWeekVolume float64           `json:"previousWeekVolume"`
	WeeklyStreak       int               `json:"weeklyStreak"`
	PRsThisWeek        int               `json:"prsThisWeek"`
	RecentPRNames      []string          `json:"recentPrNames"`
	TopRecords         []TopRecord       `json:"topRecords"`
	MostImproved       *MostImprovedLift `json:"mostImproved"`
	LastSession        *LastSessionInfo  `json:"lastSession"`
}

// StatsService is the read side of the workout history: personal records,
// the weekly streak and the dashboard snapshot. It keeps no state between
// calls; every sub-computation issues its own scoped store query instead
// of post-filtering one universal fetch.
type StatsService interface {
	GetPersonalRecord(ctx context.Context, ownerID, exerciseID primitive.ObjectID) (*PersonalRecordStats, error)
	GetWeeklyStreak(ctx context.Context, ownerID primitive.ObjectID) (int, error)
	GetDashboard(ctx context.Context, ownerID primitive.ObjectID) (*DashboardStats, error)
	SessionHistory(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error)
}

// statsService implements the StatsService interface.
type statsService struct {
	sessionRepo repository.SessionRepository
	setRepo     repository.SetRepository
	now         func() time.Time
}

// NewStatsService creates a new instance of statsService.
func NewStatsService(sessionRepo repository.SessionRepository, setRepo repository.SetRepository) StatsService {
	return &statsService{
		sessionRepo: sessionRepo,
		setRepo:     setRepo,
		now:         time.Now,
	}
}

// GetPersonalRecord returns the exercise's all-time max weight and the max
// among sessions dated more than thirty days back. Either field is nil
// when no weighted set matches its window.
func (s *statsService) GetPersonalRecord(ctx context.Context, ownerID, exerciseID primitive.ObjectID) (*PersonalRecordStats, error) {
	current, err := s.setRepo.MaxWeightForExercise(ctx, ownerID, exerciseID, nil)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().UTC().Add(-priorRecordWindow)
	prior, err := s.setRepo.MaxWeightForExercise(ctx, ownerID, exerciseID, &cutoff)
	if err != nil {
		return nil, err
	}
	return &PersonalRecordStats{Current: current, Prior: prior}, nil
}

// GetWeeklyStreak counts consecutive training weeks walking back from now.
func (s *statsService) GetWeeklyStreak(ctx context.Context, ownerID primitive.ObjectID) (int, error) {
	sessions, err := s.sessionRepo.GetCompletedByOwner(ctx, ownerID, streakSessionScanLimit)
	if err != nil {
		return 0, err
	}
	dates := make([]time.Time, 0, len(sessions))
	for _, session := range sessions {
		dates = append(dates, session.Date)
	}
	return CalculateWeeklyStreak(dates, s.now().UTC()), nil
}

// weekBucket is one ISO-8601 calendar week.
type weekBucket struct {
	year int
	week int
}

func bucketOf(t time.Time) weekBucket {
	year, week := t.ISOWeek()
	return weekBucket{year: year, week: week}
}

// CalculateWeeklyStreak counts how many consecutive ISO weeks, ending at
// the current or immediately previous week, contain at least one session.
// A streak survives an idle current week: if this week is empty but last
// week trained, counting starts from last week. Two or more idle weeks
// break the streak to zero. Weeks are true ISO-8601 weeks; year rollover
// is handled by ISOWeek, not by arithmetic on week numbers.
func CalculateWeeklyStreak(sessionDates []time.Time, now time.Time) int {
	if len(sessionDates) == 0 {
		return 0
	}
	trained := make(map[weekBucket]bool, len(sessionDates))
	for _, date := range sessionDates {
		trained[bucketOf(date)] = true
	}

	cursor := now
	if !trained[bucketOf(cursor)] {
		cursor = cursor.AddDate(0, 0, -7)
		if !trained[bucketOf(cursor)] {
			return 0
		}
	}

	streak := 0
	for trained[bucketOf(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -7)
	}
	return streak
}

// GetDashboard assembles the composite snapshot. The five store fetches
// are independent reads, so they are dispatched concurrently and joined;
// the first failure cancels the rest.
func (s *statsService) GetDashboard(ctx context.Context, ownerID primitive.ObjectID) (*DashboardStats, error) {
	now := s.now().UTC()
	weekStart := now.AddDate(0, 0, -7)
	prevWeekStart := now.AddDate(0, 0, -14)
	improvementStart := now.AddDate(0, 0, -30)
	improvementBase := now.AddDate(0, 0, -60)

	var (
		weekFacts     []repository.SetFact
		prevWeekFacts []repository.SetFact
		recentFacts   []repository.SetFact
		topFacts      []repository.SetFact
		lastSession   *repository.SessionSummary
		streakDates   []time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weekFacts, err = s.setRepo.CompletedSetFacts(gctx, ownerID, weekStart, now)
		return err
	})
	g.Go(func() error {
		var err error
		prevWeekFacts, err = s.setRepo.CompletedSetFacts(gctx, ownerID, prevWeekStart, weekStart)
		return err
	})
	g.Go(func() error {
		var err error
		recentFacts, err = s.setRepo.CompletedSetFacts(gctx, ownerID, improvementBase, now)
		return err
	})
	g.Go(func() error {
		var err error
		topFacts, err = s.setRepo.TopWeightFacts(gctx, ownerID, topRecordScanLimit)
		return err
	})
	g.Go(func() error {
		summary, err := s.sessionRepo.GetLastCompleted(gctx, ownerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		lastSession = summary
		return nil
	})
	g.Go(func() error {
		sessions, err := s.sessionRepo.GetCompletedByOwner(gctx, ownerID, streakSessionScanLimit)
		if err != nil {
			return err
		}
		for _, session := range sessions {
			streakDates = append(streakDates, session.Date)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		WeeklyVolume:       totalVolume(weekFacts),
		PreviousWeekVolume: totalVolume(prevWeekFacts),
		WeeklyStreak:       CalculateWeeklyStreak(streakDates, now),
		TopRecords:         topRecords(topFacts, 3),
		MostImproved:       mostImprovedLift(recentFacts, improvementStart),
		RecentPRNames:      []string{},
	}
	if lastSession != nil {
		stats.LastSession = &LastSessionInfo{
			SessionID:       lastSession.SessionID,
			TemplateName:    lastSession.TemplateName,
			Date:            lastSession.Date,
			DurationMinutes: lastSession.DurationMinutes,
		}
	}
	stats.PRsThisWeek, stats.RecentPRNames = weeklyRecords(weekFacts, topFacts, weekStart)
	return stats, nil
}

// SessionHistory lists the owner's completed sessions, newest first.
func (s *statsService) SessionHistory(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error) {
	return s.sessionRepo.GetCompletedByOwner(ctx, ownerID, limit)
}

// totalVolume sums weight*reps over the fully logged sets of the window.
func totalVolume(facts []repository.SetFact) float64 {
	total := 0.0
	for _, fact := range facts {
		if fact.Weight == nil || fact.Reps == nil {
			continue
		}
		total += *fact.Weight * float64(*fact.Reps)
	}
	return total
}

// topRecords deduplicates a weight-descending scan by exercise and keeps
// the first limit entries. The input order makes the first occurrence of
// each exercise its all-time max within the scanned rows.
func topRecords(facts []repository.SetFact, limit int) []TopRecord {
	records := []TopRecord{}
	seen := make(map[primitive.ObjectID]bool)
	for _, fact := range facts {
		if fact.Weight == nil || seen[fact.ExerciseID] {
			continue
		}
		seen[fact.ExerciseID] = true
		records = append(records, TopRecord{
			ExerciseID:   fact.ExerciseID,
			ExerciseName: fact.ExerciseName,
			Weight:       *fact.Weight,
		})
		if len(records) == limit {
			break
		}
	}
	return records
}

// weeklyRecords compares this week's per-exercise max against the max of
// all strictly earlier sessions, derived from the weight-descending scan.
// It returns the count of exercises that beat their prior max and the
// names of exercises whose week max matches or beats their all-time max.
func weeklyRecords(weekFacts, topFacts []repository.SetFact, weekStart time.Time) (int, []string) {
	weekMax := make(map[primitive.ObjectID]float64)
	weekName := make(map[primitive.ObjectID]string)
	for _, fact := range weekFacts {
		if fact.Weight == nil {
			continue
		}
		if current, ok := weekMax[fact.ExerciseID]; !ok || *fact.Weight > current {
			weekMax[fact.ExerciseID] = *fact.Weight
			weekName[fact.ExerciseID] = fact.ExerciseName
		}
	}

	priorMax := make(map[primitive.ObjectID]float64)
	allTimeMax := make(map[primitive.ObjectID]float64)
	for _, fact := range topFacts {
		if fact.Weight == nil {
			continue
		}
		if current, ok := allTimeMax[fact.ExerciseID]; !ok || *fact.Weight > current {
			allTimeMax[fact.ExerciseID] = *fact.Weight
		}
		if fact.SessionDate.Before(weekStart) {
			if current, ok := priorMax[fact.ExerciseID]; !ok || *fact.Weight > current {
				priorMax[fact.ExerciseID] = *fact.Weight
			}
		}
	}

	count := 0
	names := []string{}
	for exerciseID, max := range weekMax {
		prior, hadPrior := priorMax[exerciseID]
		if !hadPrior || max > prior {
			count++
		}
		if allTime, ok := allTimeMax[exerciseID]; ok && max >= allTime {
			names = append(names, weekName[exerciseID])
		}
	}
	sort.Strings(names)
	return count, names
}

// mostImprovedLift finds the exercise with the largest max-weight gain of
// the last thirty days over the thirty days before. Exercises without a
// weighted set in both windows do not qualify; neither do regressions.
func mostImprovedLift(facts []repository.SetFact, windowSplit time.Time) *MostImprovedLift {
	type window struct {
		name        string
		previousMax *float64
		currentMax  *float64
	}
	byExercise := make(map[primitive.ObjectID]*window)
	for _, fact := range facts {
		if fact.Weight == nil {
			continue
		}
		w, ok := byExercise[fact.ExerciseID]
		if !ok {
			w = &window{name: fact.ExerciseName}
			byExercise[fact.ExerciseID] = w
		}
		if fact.SessionDate.Before(windowSplit) {
			if w.previousMax == nil || *fact.Weight > *w.previousMax {
				value := *fact.Weight
				w.previousMax = &value
			}
		} else {
			if w.currentMax == nil || *fact.Weight > *w.currentMax {
				value := *fact.Weight
				w.currentMax = &value
			}
		}
	}

	var best *MostImprovedLift
	for exerciseID, w := range byExercise {
		if w.previousMax == nil || w.currentMax == nil {
			continue
		}
		delta := *w.currentMax - *w.previousMax
		if delta <= 0 {
			continue
		}
		if best == nil || delta > best.Delta {
			best = &MostImprovedLift{
				ExerciseID:   exerciseID,
				ExerciseName: w.name,
				PreviousMax:  *w.previousMax,
				CurrentMax:   *w.currentMax,
				Delta:        delta,
			}
		}
	}
	return best
}
