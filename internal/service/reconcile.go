package service

import (
	"context"

	"github.com/likhilliki/EcoPulse/internal/repository"
	"github.com/likhilliki/EcoPulse/pkg/logger"
)

// ReconcileService audits the token ledger against the verification
// history. Every grant is caused by exactly one verified verification,
// so for each user SUM(tokens.amount) must equal
// SUM(tokens_awarded WHERE status='verified'). Any mismatch means a
// write escaped the single write path and is logged for an operator.
type ReconcileService struct {
	userRepo         *repository.UserRepository
	tokenRepo        *repository.TokenRepository
	verificationRepo *repository.VerificationRepository
}

func NewReconcileService(
	userRepo *repository.UserRepository,
	tokenRepo *repository.TokenRepository,
	verificationRepo *repository.VerificationRepository,
) *ReconcileService {
	return &ReconcileService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		verificationRepo: verificationRepo,
	}
}

// Run sweeps all accounts and returns the number with ledger drift.
func (s *ReconcileService) Run(ctx context.Context) (int, error) {
	userIDs, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	drifted := 0
	for _, userID := range userIDs {
		granted, err := s.tokenRepo.SumByUser(ctx, userID)
		if err != nil {
			return drifted, err
		}
		awarded, err := s.verificationRepo.SumAwardedByUser(ctx, userID)
		if err != nil {
			return drifted, err
		}

		if granted != awarded {
			drifted++
			logger.WithFields(map[string]interface{}{
				"user_id":        userID,
				"ledger_total":   granted,
				"verified_total": awarded,
			}).Warn("Token ledger drift detected")
		}
	}

	if drifted == 0 {
		logger.WithFields(map[string]interface{}{
			"accounts": len(userIDs),
		}).Debug("Ledger reconciliation clean")
	}

	return drifted, nil
}
