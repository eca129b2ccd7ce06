package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentSubmission keeps the raw inbound payload for audit, with a
// back-reference to the verification it produced.
type AgentSubmission struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Latitude       string    `gorm:"size:50;not null" json:"latitude"`
	Longitude      string    `gorm:"size:50;not null" json:"longitude"`
	AQI            int       `gorm:"not null" json:"aqi"`
	Source         string    `gorm:"size:50;not null" json:"source"`
	VerificationID *string   `gorm:"type:char(36)" json:"verification_id"`
	SubmittedAt    time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}

func (AgentSubmission) TableName() string {
	return "agent_submissions"
}

func (s *AgentSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
