package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wirechat/messenger/internal/models"
	"github.com/wirechat/messenger/internal/store"
)

// MessageHandler handles message-related routes.
type MessageHandler struct {
	Messages      MessageStore
	Conversations ConversationStore
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messages MessageStore, conversations ConversationStore) *MessageHandler {
	return &MessageHandler{Messages: messages, Conversations: conversations}
}

// SendMessage writes a message, resolving (or creating) the conversation
// first when the request does not name one, then refreshes the conversation's
// denormalized last-message fields.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var conversationID int
	if req.ConversationID != nil {
		conversationID = *req.ConversationID
	} else {
		conv, err := h.Conversations.CreateOrGet(ctx, req.SenderID, req.ReceiverID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
			return
		}
		conversationID = conv.ID
	}

	message, err := h.Messages.Create(ctx, conversationID, req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if err := h.Conversations.UpdateLastMessage(ctx, conversationID, req.SenderID, req.ReceiverID, message.CreatedAt, message.Content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetConversationMessages returns one page of a conversation's messages,
// newest first. An optional ?before=RFC3339 restricts to strictly older
// messages.
func (h *MessageHandler) GetConversationMessages(c *gin.Context) {
	conversationID, err := conversationIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, limit, err := pageLimitParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if beforeStr := c.Query("before"); beforeStr != "" {
		before, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before timestamp"})
			return
		}
		result, err := h.Messages.ListBefore(ctx, conversationID, before, page, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversation messages"})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := h.Messages.ListByConversation(ctx, conversationID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversation messages"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetLatestMessages is the keyset variant: newest messages straight off the
// clustering order, continuing from ?before when given. No total is
// computed.
func (h *MessageHandler) GetLatestMessages(c *gin.Context) {
	conversationID, err := conversationIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, limit, err := pageLimitParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var before *time.Time
	if beforeStr := c.Query("before"); beforeStr != "" {
		parsed, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before timestamp"})
			return
		}
		before = &parsed
	}

	messages, err := h.Messages.ListLatest(c.Request.Context(), conversationID, before, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get latest messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages, "limit": limit})
}

// MarkMessageRead stamps a read receipt on a message.
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	conversationID, err := conversationIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	err = h.Messages.MarkRead(c.Request.Context(), conversationID, messageID)
	if errors.Is(err, store.ErrMessageNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark message as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}
