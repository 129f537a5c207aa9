package dto

import "time"

type ChatMessageRequest struct {
	Message      string `json:"message" binding:"required"`
	AssessmentID *uint  `json:"assessment_id"`
}

type ChatMessageResponse struct {
	BotMessage string `json:"bot_message"`
}

type ChatEntry struct {
	ID            uint      `json:"id"`
	MessageText   string    `json:"message_text"`
	Sender        string    `json:"sender"`
	IsResultsChat bool      `json:"is_results_chat"`
	CreatedAt     time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Messages []ChatEntry `json:"messages"`
}
