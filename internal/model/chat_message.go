package model

import (
	"time"
)

type ChatSender string

const (
	SenderUser ChatSender = "user"
	SenderBot  ChatSender = "bot"
)

// ChatMessage optionally references an assessment for context. Deleting the
// assessment keeps the message (the reference is nulled, not cascaded).
type ChatMessage struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UserID        uint       `json:"user_id" gorm:"not null;index:idx_chat_user_created,priority:1"`
	AssessmentID  *uint      `json:"assessment_id,omitempty" gorm:"index"`
	MessageText   string     `json:"message_text" gorm:"type:text;not null"`
	Sender        ChatSender `json:"sender" gorm:"not null"`
	IsResultsChat bool       `json:"is_results_chat" gorm:"not null;default:false"`
	CreatedAt     time.Time  `json:"created_at" gorm:"index:idx_chat_user_created,priority:2"`
}
