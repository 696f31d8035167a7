package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"
	"liftlog/workout-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMetricNotFound    = errors.New("body metric not found")
	ErrMetricEmpty       = errors.New("a body metric needs at least one measurement")
	ErrUploadUnavailable = errors.New("photo storage is not configured")
)

// BodyMetricView is a BodyMetric together with a short-lived download URL
// for its progress photo, when one exists.
type BodyMetricView struct {
	domain.BodyMetric
	PhotoURL string `json:"photoUrl,omitempty"`
}

// PhotoUpload carries a presigned PUT URL plus the object key the client
// should attach to the metric it creates after uploading.
type PhotoUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// MetricsService manages the body measurement time series and its
// progress photos.
type MetricsService interface {
	CreateMetric(ctx context.Context, ownerID primitive.ObjectID, date time.Time, weight, waist *float64, photoObjectKey string) (*domain.BodyMetric, error)
	GetMetricsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]BodyMetricView, error)
	DeleteMetric(ctx context.Context, ownerID, metricID primitive.ObjectID) error
	// RequestPhotoUpload returns a presigned PUT URL for a new photo object.
	RequestPhotoUpload(ctx context.Context, ownerID primitive.ObjectID, contentType string) (*PhotoUpload, error)
}

// metricsService implements the MetricsService interface.
type metricsService struct {
	metricRepo  repository.BodyMetricRepository
	fileStorage storage.FileStorage // may be nil when no bucket is configured
}

// NewMetricsService creates a new instance of metricsService.
func NewMetricsService(metricRepo repository.BodyMetricRepository, fileStorage storage.FileStorage) MetricsService {
	return &metricsService{metricRepo: metricRepo, fileStorage: fileStorage}
}

func (s *metricsService) CreateMetric(ctx context.Context, ownerID primitive.ObjectID, date time.Time, weight, waist *float64, photoObjectKey string) (*domain.BodyMetric, error) {
	if weight == nil && waist == nil && photoObjectKey == "" {
		return nil, ErrMetricEmpty
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	metric := &domain.BodyMetric{
		OwnerID:        ownerID,
		Date:           date,
		Weight:         weight,
		Waist:          waist,
		PhotoObjectKey: photoObjectKey,
	}
	id, err := s.metricRepo.Create(ctx, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to create body metric: %w", err)
	}
	metric.ID = id
	return metric, nil
}

func (s *metricsService) GetMetricsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]BodyMetricView, error) {
	metrics, err := s.metricRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]BodyMetricView, 0, len(metrics))
	for _, metric := range metrics {
		view := BodyMetricView{BodyMetric: metric}
		if metric.PhotoObjectKey != "" && s.fileStorage != nil {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, metric.PhotoObjectKey, storage.DefaultPresignedURLExpiry)
			if err != nil {
				// The measurement itself is still useful without the photo.
				log.Printf("WARN: failed to presign photo %s: %v", metric.PhotoObjectKey, err)
			} else {
				view.PhotoURL = url
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *metricsService) DeleteMetric(ctx context.Context, ownerID, metricID primitive.ObjectID) error {
	metric, err := s.metricRepo.GetByID(ctx, metricID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMetricNotFound
		}
		return err
	}
	if metric.OwnerID != ownerID {
		return ErrMetricNotFound
	}

	if err := s.metricRepo.Delete(ctx, metricID, ownerID); err != nil {
		return err
	}
	if metric.PhotoObjectKey != "" && s.fileStorage != nil {
		if err := s.fileStorage.DeleteObject(ctx, metric.PhotoObjectKey); err != nil {
			log.Printf("WARN: failed to delete photo object %s: %v", metric.PhotoObjectKey, err)
		}
	}
	return nil
}

func (s *metricsService) RequestPhotoUpload(ctx context.Context, ownerID primitive.ObjectID, contentType string) (*PhotoUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrUploadUnavailable
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectKey := fmt.Sprintf("progress-photos/%s/%s", ownerID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return &PhotoUpload{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}
