package service

import (
	"context"

	"github.com/likhilliki/EcoPulse/internal/models"
	"github.com/likhilliki/EcoPulse/internal/repository"
	"github.com/likhilliki/EcoPulse/pkg/errors"
)

type ReadingService struct {
	readingRepo *repository.ReadingRepository
}

func NewReadingService(readingRepo *repository.ReadingRepository) *ReadingService {
	return &ReadingService{readingRepo: readingRepo}
}

func (s *ReadingService) Record(ctx context.Context, userID, latitude, longitude string, aqi int) (*models.AQIReading, error) {
	if latitude == "" || longitude == "" {
		return nil, errors.New(errors.ErrInvalidInput, "latitude and longitude required", nil)
	}

	reading := &models.AQIReading{
		UserID:    userID,
		Latitude:  latitude,
		Longitude: longitude,
		AQI:       aqi,
	}
	if err := s.readingRepo.Create(ctx, reading); err != nil {
		return nil, errors.New(errors.ErrPersistence, "failed to store reading", err)
	}
	return reading, nil
}

func (s *ReadingService) History(ctx context.Context, userID string, limit int) ([]models.AQIReading, error) {
	readings, err := s.readingRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.New(errors.ErrPersistence, "failed to load readings", err)
	}
	return readings, nil
}
