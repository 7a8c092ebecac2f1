package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

// ChatMessage is one question and the coach's answer to it.
type ChatMessage struct {
	ID          uuid.UUID                                     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                                     `gorm:"type:uuid;not null;index:idx_chat_user_created,priority:1" json:"user_id"`
	Message     string                                        `gorm:"type:text;not null" json:"message"`
	Response    string                                        `gorm:"type:text;not null" json:"response"`
	Ingredients datatypes.JSONSlice[nutrition.IngredientCard] `gorm:"column:ingredients" json:"ingredients"`
	CreatedAt   time.Time                                     `gorm:"not null;index:idx_chat_user_created,priority:2" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_message" }

func (m *ChatMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
