package service

import (
	"context"
	"testing"

	"github.com/likhilliki/EcoPulse/internal/models"
	"github.com/likhilliki/EcoPulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReconcileCleanLedger(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Email: "ada@example.com", PasswordHash: "x"}).Error)

	agentSvc := newTestAgentService(db)
	_, err := agentSvc.Submit(ctx, firstUserID(t, db), submitReq(20))
	require.NoError(t, err)

	reconcile := NewReconcileService(
		repository.NewUserRepository(db),
		repository.NewTokenRepository(db),
		repository.NewVerificationRepository(db),
	)

	drifted, err := reconcile.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, drifted)
}

func TestReconcileDetectsDrift(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Email: "ada@example.com", PasswordHash: "x"}).Error)
	userID := firstUserID(t, db)

	// A grant with no matching verification, as if a write skipped the
	// submit path.
	require.NoError(t, db.Create(&models.Token{UserID: userID, Amount: 50}).Error)

	reconcile := NewReconcileService(
		repository.NewUserRepository(db),
		repository.NewTokenRepository(db),
		repository.NewVerificationRepository(db),
	)

	drifted, err := reconcile.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, drifted)
}

func firstUserID(t *testing.T, db *gorm.DB) string {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user).Error)
	return user.ID
}
