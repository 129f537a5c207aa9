package service

import (
	"context"

	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/Tapananshu17/HCI/internal/repository"
	"github.com/rs/zerolog/log"
)

const chatFallbackReply = "I'm having trouble answering right now. Please try again in a moment."

type ChatService interface {
	SendMessage(ctx context.Context, userID uint, req dto.ChatMessageRequest) (*dto.ChatMessageResponse, error)
	History(ctx context.Context, userID uint, assessmentID *uint) (*dto.ChatHistoryResponse, error)
}

type chatService struct {
	chatRepo       repository.ChatRepository
	assessmentRepo repository.AssessmentRepository
	llm            GeminiLLMService
}

func NewChatService(
	chatRepo repository.ChatRepository,
	assessmentRepo repository.AssessmentRepository,
	llm GeminiLLMService,
) ChatService {
	return &chatService{chatRepo: chatRepo, assessmentRepo: assessmentRepo, llm: llm}
}

// SendMessage stores the student's message, asks the LLM for a reply, and
// stores that too. An LLM failure degrades to a canned reply rather than an
// error; the student's message is already persisted at that point.
func (s *chatService) SendMessage(ctx context.Context, userID uint, req dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
	assessmentID := req.AssessmentID
	resultsChat := false
	if assessmentID != nil {
		if _, err := s.assessmentRepo.FindByIDAndUser(nil, *assessmentID, userID); err != nil {
			log.Warn().Err(err).Uint("assessmentID", *assessmentID).Uint("userID", userID).
				Msg("Ignoring chat assessment reference that does not belong to the user")
			assessmentID = nil
		} else {
			resultsChat = true
		}
	}

	userMsg := &model.ChatMessage{
		UserID:        userID,
		AssessmentID:  assessmentID,
		MessageText:   req.Message,
		Sender:        model.SenderUser,
		IsResultsChat: resultsChat,
	}
	if err := s.chatRepo.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	reply, err := s.llm.GenerateChatReply(ctx, req.Message, resultsChat)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Chat reply generation failed, using fallback")
		reply = chatFallbackReply
	}

	botMsg := &model.ChatMessage{
		UserID:        userID,
		AssessmentID:  assessmentID,
		MessageText:   reply,
		Sender:        model.SenderBot,
		IsResultsChat: resultsChat,
	}
	if err := s.chatRepo.Create(ctx, botMsg); err != nil {
		return nil, err
	}

	return &dto.ChatMessageResponse{BotMessage: reply}, nil
}

func (s *chatService) History(ctx context.Context, userID uint, assessmentID *uint) (*dto.ChatHistoryResponse, error) {
	messages, err := s.chatRepo.History(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.ChatEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, dto.ChatEntry{
			ID:            m.ID,
			MessageText:   m.MessageText,
			Sender:        string(m.Sender),
			IsResultsChat: m.IsResultsChat,
			CreatedAt:     m.CreatedAt,
		})
	}
	return &dto.ChatHistoryResponse{Messages: entries}, nil
}
