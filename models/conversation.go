package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a two-party thread. ParticipantKey holds the sorted pair
// of user ids so the database rejects a second row for the same pair.
type Conversation struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ParticipantKey string    `gorm:"uniqueIndex;size:64;not null"`
	Participants   []User    `gorm:"many2many:conversation_participants"`
	Messages       []Message `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasParticipant reports whether userID is one of the loaded participants.
func (c *Conversation) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

type ConversationParticipant struct {
	ConversationID string `gorm:"primaryKey;size:36"`
	UserID         uint   `gorm:"primaryKey;index"`
	CreatedAt      time.Time
}

// PairKey is order independent: PairKey(a, b) == PairKey(b, a).
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
