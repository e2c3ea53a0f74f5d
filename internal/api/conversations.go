package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wirechat/messenger/internal/store"
)

// ConversationHandler handles conversation-related routes.
type ConversationHandler struct {
	Conversations ConversationStore
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(conversations ConversationStore) *ConversationHandler {
	return &ConversationHandler{Conversations: conversations}
}

// GetConversation returns a conversation by id. Absence is the one error
// with a specific response; everything else is a generic server error.
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	conversationID, err := conversationIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversation, err := h.Conversations.Get(c.Request.Context(), conversationID)
	if errors.Is(err, store.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversation"})
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// GetUserConversations returns one page of a user's conversations, most
// recently active first.
func (h *ConversationHandler) GetUserConversations(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	page, limit, err := pageLimitParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Conversations.ListForUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user conversations"})
		return
	}

	c.JSON(http.StatusOK, result)
}
