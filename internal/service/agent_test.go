package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/likhilliki/EcoPulse/internal/agent"
	"github.com/likhilliki/EcoPulse/internal/config"
	"github.com/likhilliki/EcoPulse/internal/models"
	"github.com/likhilliki/EcoPulse/internal/repository"
	"github.com/likhilliki/EcoPulse/pkg/errors"
	"github.com/likhilliki/EcoPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	_ = logger.Init("error", "text", "stderr")
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AQIReading{},
		&models.Token{},
		&models.AgentVerification{},
		&models.AgentSubmission{},
	))

	return db
}

func newTestAgentService(db *gorm.DB) *AgentService {
	cfg := &config.AgentConfig{
		CooldownMinutes: 60,
		MaxAQI:          500,
		RewardTiers:     config.DefaultRewardTiers(),
	}
	return NewAgentService(
		db,
		agent.NewVerifier(cfg),
		repository.NewVerificationRepository(db),
		repository.NewReadingRepository(db),
		repository.NewTokenRepository(db),
		repository.NewSubmissionRepository(db),
	)
}

func submitReq(aqi int) SubmitRequest {
	return SubmitRequest{
		Latitude:  "52.52",
		Longitude: "13.405",
		AQI:       aqi,
	}
}

func TestSubmitFirstEligible(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)
	ctx := context.Background()

	result, err := svc.Submit(ctx, "user-1", submitReq(20))
	require.NoError(t, err)
	require.True(t, result.Verified)
	assert.Equal(t, 50, result.TokensAwarded)
	assert.Equal(t, "Excellent", result.Level)
	assert.Equal(t, 100, result.Score)

	stats, err := svc.GetStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalSubmissions)
	assert.Equal(t, int64(1), stats.VerifiedSubmissions)
	assert.Equal(t, int64(50), stats.TotalTokensAwarded)
	assert.Equal(t, 100, stats.AverageVerificationScore)

	balance, err := repository.NewTokenRepository(db).SumByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	// Audit trail links back to the verification.
	var submission models.AgentSubmission
	require.NoError(t, db.First(&submission).Error)
	require.NotNil(t, submission.VerificationID)
	var verification models.AgentVerification
	require.NoError(t, db.First(&verification).Error)
	assert.Equal(t, verification.ID, *submission.VerificationID)
}

func TestSubmitCooldownRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "user-1", submitReq(20))
	require.NoError(t, err)

	before, err := svc.GetStats(ctx, "user-1")
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "user-1", submitReq(30))
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, agent.ReasonCooldownActive, result.Reason)
	assert.Equal(t, 90, result.Score)
	assert.Equal(t, 0, result.TokensAwarded)

	after, err := svc.GetStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejection must not change stats")
}

func TestSubmitAfterCooldownExpires(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)
	ctx := context.Background()

	verifiedAt := time.Now().Add(-61 * time.Minute)
	require.NoError(t, db.Create(&models.AgentVerification{
		UserID:            "user-1",
		AQIReadingID:      "seed-reading",
		Status:            models.VerificationStatusVerified,
		TokensAwarded:     50,
		VerificationScore: 100,
		VerifiedAt:        &verifiedAt,
	}).Error)

	result, err := svc.Submit(ctx, "user-1", submitReq(120))
	require.NoError(t, err)
	require.True(t, result.Verified)
	assert.Equal(t, 10, result.TokensAwarded)
	assert.Equal(t, "Unhealthy for Sensitive", result.Level)
}

func TestSubmitInvalidAQIPersistsNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)
	ctx := context.Background()

	for _, aqi := range []int{-1, 501} {
		result, err := svc.Submit(ctx, "user-1", submitReq(aqi))
		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, agent.ReasonInvalidAQI, result.Reason)
	}

	var count int64
	require.NoError(t, db.Model(&models.AgentVerification{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.AQIReading{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.AgentSubmission{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)
	ctx := context.Background()

	// The grant insert is the last write in the transaction; losing
	// its table forces a mid-transaction failure.
	require.NoError(t, db.Migrator().DropTable(&models.Token{}))

	_, err := svc.Submit(ctx, "user-1", submitReq(20))
	require.Error(t, err)
	assert.Equal(t, errors.ErrPersistence, errors.Code(err))

	var count int64
	require.NoError(t, db.Model(&models.AQIReading{}).Count(&count).Error)
	assert.Zero(t, count, "no orphan reading after rollback")
	require.NoError(t, db.Model(&models.AgentVerification{}).Count(&count).Error)
	assert.Zero(t, count, "no orphan verification after rollback")
	require.NoError(t, db.Model(&models.AgentSubmission{}).Count(&count).Error)
	assert.Zero(t, count, "no orphan submission after rollback")
}

func TestSubmitConcurrentSameUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)
	ctx := context.Background()

	results := make([]agent.Result, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Submit(ctx, "user-1", submitReq(20))
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	verified := 0
	rejected := 0
	for _, result := range results {
		if result.Verified {
			verified++
		} else {
			rejected++
			assert.Equal(t, agent.ReasonCooldownActive, result.Reason)
		}
	}
	assert.Equal(t, 1, verified, "exactly one racing submission may win")
	assert.Equal(t, 1, rejected)

	var grants int64
	require.NoError(t, db.Model(&models.Token{}).Count(&grants).Error)
	assert.Equal(t, int64(1), grants)
}

func TestGetStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)

	stats, err := svc.GetStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalSubmissions)
	assert.Equal(t, int64(0), stats.VerifiedSubmissions)
	assert.Equal(t, int64(0), stats.TotalTokensAwarded)
	assert.Equal(t, 0, stats.AverageVerificationScore)
}

func TestProcessPendingVerifications(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAgentService(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.AgentVerification{
		UserID:            "user-1",
		AQIReadingID:      "seed-reading",
		Status:            models.VerificationStatusPending,
		VerificationScore: 100,
	}).Error)

	processed, err := svc.ProcessPendingVerifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	var verification models.AgentVerification
	require.NoError(t, db.First(&verification).Error)
	assert.Equal(t, models.VerificationStatusVerified, verification.Status)
	require.NotNil(t, verification.VerifiedAt)
}
