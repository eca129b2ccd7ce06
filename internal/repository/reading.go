package repository

import (
	"context"

	"github.com/likhilliki/EcoPulse/internal/models"

	"gorm.io/gorm"
)

type ReadingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// WithTx returns a repository bound to an open transaction so reading
// inserts can join the reward write set.
func (r *ReadingRepository) WithTx(tx *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: tx}
}

func (r *ReadingRepository) Create(ctx context.Context, reading *models.AQIReading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

func (r *ReadingRepository) GetByUser(ctx context.Context, userID string, limit int) ([]models.AQIReading, error) {
	var readings []models.AQIReading
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&readings).Error
	return readings, err
}
