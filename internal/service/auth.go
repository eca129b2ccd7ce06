package service

import (
	"context"
	"strings"

	"github.com/likhilliki/EcoPulse/internal/models"
	"github.com/likhilliki/EcoPulse/internal/repository"
	"github.com/likhilliki/EcoPulse/pkg/auth"
	"github.com/likhilliki/EcoPulse/pkg/errors"
	"github.com/likhilliki/EcoPulse/pkg/logger"
)

type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo *repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

func (s *AuthService) Signup(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", nil, errors.New(errors.ErrInvalidInput, "invalid email", nil)
	}
	if len(password) < 6 {
		return "", nil, errors.New(errors.ErrInvalidInput, "password must be at least 6 characters", nil)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.New(errors.ErrPersistence, "failed to look up email", err)
	}
	if existing != nil {
		return "", nil, errors.New(errors.ErrEmailTaken, "email already exists", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, errors.New(errors.ErrPersistence, "failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, errors.New(errors.ErrPersistence, "failed to create user", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return "", nil, errors.New(errors.ErrPersistence, "failed to sign token", err)
	}

	logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
	}).Info("User signed up")

	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.New(errors.ErrPersistence, "failed to look up email", err)
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, errors.New(errors.ErrInvalidLogin, "invalid credentials", nil)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return "", nil, errors.New(errors.ErrPersistence, "failed to sign token", err)
	}

	return token, user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.ErrPersistence, "failed to load user", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrNotFound, "user not found", nil)
	}
	return user, nil
}

func (s *AuthService) ConnectWallet(ctx context.Context, userID, walletAddress string) error {
	if walletAddress == "" {
		return errors.New(errors.ErrInvalidInput, "wallet address required", nil)
	}
	if err := s.userRepo.UpdateWalletAddress(ctx, userID, walletAddress); err != nil {
		return errors.New(errors.ErrPersistence, "failed to store wallet address", err)
	}
	return nil
}
