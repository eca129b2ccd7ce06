package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/likhilliki/EcoPulse/internal/models"

	"gorm.io/gorm"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) WithTx(tx *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: tx}
}

func (r *VerificationRepository) Create(ctx context.Context, verification *models.AgentVerification) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

// GetLastVerified returns the user's most recently verified record,
// ordered by verified_at rather than insertion order since batch
// promotion can verify out of order. Single indexed lookup.
func (r *VerificationRepository) GetLastVerified(ctx context.Context, userID string) (*models.AgentVerification, error) {
	var verification models.AgentVerification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.VerificationStatusVerified).
		Order("verified_at DESC").
		First(&verification).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &verification, err
}

func (r *VerificationRepository) GetByUser(ctx context.Context, userID string) ([]models.AgentVerification, error) {
	var verifications []models.AgentVerification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&verifications).Error
	return verifications, err
}

// Stats holds per-user aggregates over agent_verifications.
type Stats struct {
	TotalSubmissions         int64
	VerifiedSubmissions      int64
	TotalTokensAwarded       int64
	AverageVerificationScore int
}

// GetStats aggregates in a single query instead of loading every row.
func (r *VerificationRepository) GetStats(ctx context.Context, userID string) (*Stats, error) {
	var row struct {
		Total    int64
		Verified int64
		Tokens   int64
		AvgScore float64
	}

	err := r.db.WithContext(ctx).
		Model(&models.AgentVerification{}).
		Select(
			"COUNT(*) as total, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as verified, "+
				"COALESCE(SUM(tokens_awarded), 0) as tokens, "+
				"COALESCE(AVG(verification_score), 0) as avg_score",
			models.VerificationStatusVerified,
		).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalSubmissions:         row.Total,
		VerifiedSubmissions:      row.Verified,
		TotalTokensAwarded:       row.Tokens,
		AverageVerificationScore: int(math.Round(row.AvgScore)),
	}, nil
}

// SumAwardedByUser totals tokens_awarded across verified records, for
// reconciliation against the token ledger.
func (r *VerificationRepository) SumAwardedByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.AgentVerification{}).
		Where("user_id = ? AND status = ?", userID, models.VerificationStatusVerified).
		Select("COALESCE(SUM(tokens_awarded), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *VerificationRepository) ListPending(ctx context.Context) ([]models.AgentVerification, error) {
	var verifications []models.AgentVerification
	err := r.db.WithContext(ctx).
		Where("status = ?", models.VerificationStatusPending).
		Find(&verifications).Error
	return verifications, err
}

func (r *VerificationRepository) MarkVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AgentVerification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.VerificationStatusVerified,
			"verified_at": verifiedAt,
		}).Error
}
