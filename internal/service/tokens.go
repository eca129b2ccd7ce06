package service

import (
	"context"

	"github.com/likhilliki/EcoPulse/internal/repository"
	"github.com/likhilliki/EcoPulse/pkg/errors"
)

type TokenService struct {
	tokenRepo *repository.TokenRepository
}

func NewTokenService(tokenRepo *repository.TokenRepository) *TokenService {
	return &TokenService{tokenRepo: tokenRepo}
}

// Balance replays the grant ledger for the user.
func (s *TokenService) Balance(ctx context.Context, userID string) (int64, error) {
	balance, err := s.tokenRepo.SumByUser(ctx, userID)
	if err != nil {
		return 0, errors.New(errors.ErrPersistence, "failed to compute balance", err)
	}
	return balance, nil
}
