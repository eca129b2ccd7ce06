package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AQIReading is one observed air-quality sample. Coordinates are kept
// as submitted, readings are immutable once created.
type AQIReading struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Latitude  string    `gorm:"size:50;not null" json:"latitude"`
	Longitude string    `gorm:"size:50;not null" json:"longitude"`
	AQI       int       `gorm:"not null" json:"aqi"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (AQIReading) TableName() string {
	return "aqi_readings"
}

func (r *AQIReading) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
