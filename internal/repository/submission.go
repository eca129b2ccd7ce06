package repository

import (
	"context"

	"github.com/likhilliki/EcoPulse/internal/models"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: tx}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *models.AgentSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) SetVerificationID(ctx context.Context, submissionID, verificationID string) error {
	return r.db.WithContext(ctx).
		Model(&models.AgentSubmission{}).
		Where("id = ?", submissionID).
		Update("verification_id", verificationID).Error
}

func (r *SubmissionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]models.AgentSubmission, error) {
	var submissions []models.AgentSubmission
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&submissions).Error
	return submissions, err
}
