package service

import (
	"context"
	"sync"
	"time"

	"github.com/likhilliki/EcoPulse/internal/agent"
	"github.com/likhilliki/EcoPulse/internal/models"
	"github.com/likhilliki/EcoPulse/internal/repository"
	"github.com/likhilliki/EcoPulse/pkg/errors"
	"github.com/likhilliki/EcoPulse/pkg/logger"

	"gorm.io/gorm"
)

type SubmitRequest struct {
	Latitude  string
	Longitude string
	AQI       int
	Location  string
	Source    string
}

// AgentService runs the submit-verify-reward pipeline. All reward
// mutation goes through Submit, which is the single write path for the
// token ledger.
type AgentService struct {
	db               *gorm.DB
	verifier         *agent.Verifier
	verificationRepo *repository.VerificationRepository
	readingRepo      *repository.ReadingRepository
	tokenRepo        *repository.TokenRepository
	submissionRepo   *repository.SubmissionRepository

	// Per-account serialization so two racing submissions cannot both
	// pass the cooldown check before either write lands.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewAgentService(
	db *gorm.DB,
	verifier *agent.Verifier,
	verificationRepo *repository.VerificationRepository,
	readingRepo *repository.ReadingRepository,
	tokenRepo *repository.TokenRepository,
	submissionRepo *repository.SubmissionRepository,
) *AgentService {
	return &AgentService{
		db:               db,
		verifier:         verifier,
		verificationRepo: verificationRepo,
		readingRepo:      readingRepo,
		tokenRepo:        tokenRepo,
		submissionRepo:   submissionRepo,
		userLocks:        make(map[string]*sync.Mutex),
	}
}

func (s *AgentService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Submit evaluates one AQI submission and, when it passes the gate,
// persists the reading, the verified verification and the token grant
// as one transaction. Rejected submissions persist nothing.
//
// The returned Result is meaningful whenever err is nil; a non-nil err
// means the store failed and no partial state was committed.
func (s *AgentService) Submit(ctx context.Context, userID string, req SubmitRequest) (agent.Result, error) {
	// Input validation runs before the cooldown gate and before any
	// storage access.
	if !s.verifier.ValidAQI(req.AQI) {
		return s.verifier.Evaluate(req.AQI, nil, false, time.Now()), nil
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var result agent.Result

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		verificationRepo := s.verificationRepo.WithTx(tx)

		last, err := verificationRepo.GetLastVerified(ctx, userID)
		if err != nil {
			return err
		}

		var lastVerifiedAt *time.Time
		if last != nil {
			lastVerifiedAt = last.VerifiedAt
		}

		now := time.Now()
		result = s.verifier.Evaluate(req.AQI, lastVerifiedAt, last != nil, now)
		if !result.Verified {
			// Rejections are discarded, not recorded.
			return nil
		}

		source := req.Source
		if source == "" {
			source = "openweathermap"
		}

		submission := &models.AgentSubmission{
			UserID:    userID,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			AQI:       req.AQI,
			Source:    source,
		}
		if err := s.submissionRepo.WithTx(tx).Create(ctx, submission); err != nil {
			return err
		}

		reading := &models.AQIReading{
			UserID:    userID,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			AQI:       req.AQI,
		}
		if err := s.readingRepo.WithTx(tx).Create(ctx, reading); err != nil {
			return err
		}

		verification := &models.AgentVerification{
			UserID:            userID,
			AQIReadingID:      reading.ID,
			Status:            models.VerificationStatusVerified,
			TokensAwarded:     result.TokensAwarded,
			VerificationScore: result.Score,
			VerifiedAt:        &now,
		}
		if err := verificationRepo.Create(ctx, verification); err != nil {
			return err
		}

		if err := s.submissionRepo.WithTx(tx).SetVerificationID(ctx, submission.ID, verification.ID); err != nil {
			return err
		}

		grant := &models.Token{
			UserID: userID,
			Amount: result.TokensAwarded,
		}
		return s.tokenRepo.WithTx(tx).Create(ctx, grant)
	})
	if err != nil {
		return agent.Result{}, errors.New(errors.ErrPersistence, "failed to record verification", err)
	}

	if result.Verified {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"aqi":     req.AQI,
			"level":   result.Level,
			"tokens":  result.TokensAwarded,
			"score":   result.Score,
		}).Info("Submission verified")
	} else {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"aqi":     req.AQI,
			"reason":  result.Reason,
		}).Debug("Submission rejected")
	}

	return result, nil
}

func (s *AgentService) GetStats(ctx context.Context, userID string) (*repository.Stats, error) {
	stats, err := s.verificationRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.ErrPersistence, "failed to load verification stats", err)
	}
	return stats, nil
}

func (s *AgentService) ListVerifications(ctx context.Context, userID string) ([]models.AgentVerification, error) {
	verifications, err := s.verificationRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.ErrPersistence, "failed to list verifications", err)
	}
	return verifications, nil
}

// ProcessPendingVerifications promotes stale pending records to
// verified. Pending rows only appear when an operator inserts them by
// hand, the hourly sweep keeps them from sticking around.
func (s *AgentService) ProcessPendingVerifications(ctx context.Context) (int, error) {
	pending, err := s.verificationRepo.ListPending(ctx)
	if err != nil {
		return 0, errors.New(errors.ErrPersistence, "failed to list pending verifications", err)
	}

	processed := 0
	for _, verification := range pending {
		if err := s.verificationRepo.MarkVerified(ctx, verification.ID, time.Now()); err != nil {
			logger.WithError(err).Error("Failed to promote pending verification: ", verification.ID)
			continue
		}
		processed++
	}

	return processed, nil
}
