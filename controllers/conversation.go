package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"PetPal/middleware"
	"PetPal/pkg/metrics"
	"PetPal/pkg/response"
	"PetPal/pkg/services"
	"PetPal/pkg/validation"
)

type ConversationService interface {
	ListUserConversations(ctx context.Context, userID uint) ([]services.ConversationSummary, error)
	FindOrCreateConversation(ctx context.Context, a, b uint) (*services.ConversationDetail, bool, error)
	GetConversationWithMessages(ctx context.Context, conversationID string, requesterID uint) (*services.ConversationDetail, error)
	CreateMessage(ctx context.Context, conversationID string, senderID uint, content string) (*services.MessageView, error)
}

// Broadcaster pushes a persisted message to the sockets in its room.
type Broadcaster interface {
	BroadcastMessage(ctx context.Context, msg *services.MessageView)
}

func ListConversations(svc ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListUserConversations(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			renderError(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"conversations": list})
	}
}

// StartConversation finds or creates the conversation between the caller and
// the user in the path: 201 when created, 200 when it already existed.
func StartConversation(svc ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
		if err != nil || target == 0 {
			badRequest(c, "user_id must be a positive integer")
			return
		}
		conv, created, err := svc.FindOrCreateConversation(c.Request.Context(), middleware.CurrentUserID(c), uint(target))
		if err != nil {
			renderError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		response.JSON(c, status, gin.H{"conversation": conv})
	}
}

func ListMessages(svc ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, err := svc.GetConversationWithMessages(c.Request.Context(), c.Param("conversation_id"), middleware.CurrentUserID(c))
		if err != nil {
			renderError(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"messages": conv.Messages})
	}
}

func SendMessage(svc ConversationService, bc Broadcaster, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body validation.MessageBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "body must be {\"content\": string}")
			return
		}
		if err := validation.Struct(&body); err != nil {
			renderError(c, err)
			return
		}

		msg, err := svc.CreateMessage(c.Request.Context(), c.Param("conversation_id"), middleware.CurrentUserID(c), body.Content)
		if err != nil {
			renderError(c, err)
			return
		}
		m.MessageCreated("rest")
		if bc != nil {
			bc.BroadcastMessage(c.Request.Context(), msg)
		}
		response.JSON(c, http.StatusCreated, gin.H{"message": msg})
	}
}
