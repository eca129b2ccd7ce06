package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// AgentVerification records the outcome of evaluating one AQI reading
// for a reward. The (user_id, status, verified_at) index makes the
// "most recent verified" cooldown lookup a single indexed query.
type AgentVerification struct {
	ID                string             `gorm:"type:char(36);primaryKey" json:"id"`
	UserID            string             `gorm:"type:char(36);not null;index:idx_user_status_verified" json:"user_id"`
	AQIReadingID      string             `gorm:"type:char(36);not null" json:"aqi_reading_id"`
	Status            VerificationStatus `gorm:"size:20;not null;default:pending;index:idx_user_status_verified" json:"status"`
	TokensAwarded     int                `gorm:"not null;default:0" json:"tokens_awarded"`
	VerificationScore int                `gorm:"not null;default:0" json:"verification_score"`
	VerifiedAt        *time.Time         `gorm:"index:idx_user_status_verified" json:"verified_at"`
	CreatedAt         time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

func (AgentVerification) TableName() string {
	return "agent_verifications"
}

func (v *AgentVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
