package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeExerciseService is an in-memory stand-in for the real service.
type fakeExerciseService struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseService() *fakeExerciseService {
	return &fakeExerciseService{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (f *fakeExerciseService) CreateExercise(ctx context.Context, ownerID primitive.ObjectID, name, muscleGroup string, defaultSetCount int) (*domain.Exercise, error) {
	if name == "" {
		return nil, service.ErrValidationFailed
	}
	exercise := &domain.Exercise{
		ID:              primitive.NewObjectID(),
		OwnerID:         ownerID,
		Name:            name,
		MuscleGroup:     muscleGroup,
		DefaultSetCount: defaultSetCount,
	}
	f.exercises[exercise.ID] = exercise
	return exercise, nil
}

func (f *fakeExerciseService) GetExerciseByID(ctx context.Context, ownerID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, ok := f.exercises[exerciseID]
	if !ok {
		return nil, service.ErrExerciseNotFound
	}
	if exercise.OwnerID != ownerID {
		return nil, service.ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (f *fakeExerciseService) GetExercisesByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, exercise := range f.exercises {
		if exercise.OwnerID == ownerID {
			out = append(out, *exercise)
		}
	}
	return out, nil
}

func (f *fakeExerciseService) UpdateExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID, name, muscleGroup string, defaultSetCount int) (*domain.Exercise, error) {
	exercise, err := f.GetExerciseByID(ctx, ownerID, exerciseID)
	if err != nil {
		return nil, err
	}
	exercise.Name = name
	exercise.MuscleGroup = muscleGroup
	exercise.DefaultSetCount = defaultSetCount
	return exercise, nil
}

func (f *fakeExerciseService) UpdateDefaultSets(ctx context.Context, ownerID, exerciseID primitive.ObjectID, newDefault int) error {
	exercise, err := f.GetExerciseByID(ctx, ownerID, exerciseID)
	if err != nil {
		return err
	}
	exercise.DefaultSetCount = newDefault
	return nil
}

func (f *fakeExerciseService) DeleteExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID) error {
	if _, err := f.GetExerciseByID(ctx, ownerID, exerciseID); err != nil {
		return err
	}
	delete(f.exercises, exerciseID)
	return nil
}

func exerciseRouter(svc service.ExerciseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewExerciseHandler(svc)
	group := router.Group("/api/v1/exercises")
	group.Use(AuthMiddleware(testSecret))
	group.POST("", handler.CreateExercise)
	group.GET("/:id", handler.GetExercise)
	group.PUT("/:id/default-sets", handler.UpdateDefaultSets)
	return router
}

func TestExerciseHandler(t *testing.T) {
	fake := newFakeExerciseService()
	router := exerciseRouter(fake)
	ownerID := primitive.NewObjectID()
	token := signToken(t, testSecret, ownerID.Hex(), time.Hour)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var payload *bytes.Buffer
		if body != nil {
			raw, err := json.Marshal(body)
			require.NoError(t, err)
			payload = bytes.NewBuffer(raw)
		} else {
			payload = bytes.NewBuffer(nil)
		}
		req := httptest.NewRequest(method, path, payload)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		return recorder
	}

	var created domain.Exercise
	t.Run("create", func(t *testing.T) {
		recorder := do(http.MethodPost, "/api/v1/exercises", ExerciseRequest{
			Name:            "Bench Press",
			MuscleGroup:     "chest",
			DefaultSetCount: 3,
		})
		require.Equal(t, http.StatusCreated, recorder.Code)
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
		assert.Equal(t, "Bench Press", created.Name)
	})

	t.Run("create without name fails", func(t *testing.T) {
		recorder := do(http.MethodPost, "/api/v1/exercises", map[string]string{"muscleGroup": "back"})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("get", func(t *testing.T) {
		recorder := do(http.MethodGet, "/api/v1/exercises/"+created.ID.Hex(), nil)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Bench Press")
	})

	t.Run("get unknown id", func(t *testing.T) {
		recorder := do(http.MethodGet, "/api/v1/exercises/"+primitive.NewObjectID().Hex(), nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("get malformed id", func(t *testing.T) {
		recorder := do(http.MethodGet, "/api/v1/exercises/not-an-id", nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("accept smart-set suggestion", func(t *testing.T) {
		recorder := do(http.MethodPut, "/api/v1/exercises/"+created.ID.Hex()+"/default-sets", DefaultSetsRequest{DefaultSetCount: 4})
		require.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, 4, fake.exercises[created.ID].DefaultSetCount)
	})

	t.Run("foreign exercise is forbidden", func(t *testing.T) {
		foreign, err := fake.CreateExercise(context.Background(), primitive.NewObjectID(), "Row", "back", 3)
		require.NoError(t, err)
		recorder := do(http.MethodGet, "/api/v1/exercises/"+foreign.ID.Hex(), nil)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
