package controller

import (
	"net/http"
	"strconv"

	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/middleware"
	"github.com/Tapananshu17/HCI/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ChatController struct {
	chatService service.ChatService
}

func NewChatController(chatService service.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// SendMessage godoc
// @Summary Send a message to the guidance chatbot
// @Description Optionally references a completed assessment for results-aware replies.
// @Tags Chat
// @Accept json
// @Produce json
// @Param message body dto.ChatMessageRequest true "Message text and optional assessment id"
// @Success 200 {object} dto.ChatMessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /chatbot/message [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req dto.ChatMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.chatService.SendMessage(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Chat message failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Get recent chat history
// @Tags Chat
// @Produce json
// @Param assessment_id query int false "Restrict to messages about one assessment"
// @Success 200 {object} dto.ChatHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /chatbot/history [get]
func (c *ChatController) History(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var assessmentID *uint
	if raw := ctx.Query("assessment_id"); raw != "" {
		val, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assessment_id format"})
			return
		}
		id := uint(val)
		assessmentID = &id
	}

	resp, err := c.chatService.History(ctx.Request.Context(), userID, assessmentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
