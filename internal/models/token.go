package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Token is an append-only ledger entry crediting ECO reward units to a
// user. A user's balance is SUM(amount) over their rows; there is no
// mutable balance column to drift from the ledger.
type Token struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Token) TableName() string {
	return "tokens"
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
