package api

import (
	"errors"
	"net/http"
	"strconv"

	"chatgate/internal/domain/chat"

	"github.com/gin-gonic/gin"
)

// SessionCreateRequest is the payload for creating a session record
type SessionCreateRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Title  string `json:"title"`
}

// SessionUpdateRequest is the payload for renaming a session record
type SessionUpdateRequest struct {
	Title string `json:"title" binding:"required"`
}

// ListSessions godoc
//
//	@Summary		List chat sessions
//	@Description	List session records, newest first, optionally filtered by user
//	@Tags			sessions
//	@Produce		json
//	@Param			user_id	query	string	false	"Filter by user"
//	@Param			limit	query	int		false	"Page size (max 200)"	default(50)
//	@Param			offset	query	int		false	"Page offset"			default(0)
//	@Success		200	{array}		chat.Session
//	@Failure		500	{object}	map[string]string
//	@Router			/api/sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	userID := c.Query("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sessions, err := h.chatService.ListSessions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// CreateSession godoc
//
//	@Summary		Create a chat session
//	@Description	Create a new session record
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			session	body		SessionCreateRequest	true	"Session creation request"
//	@Success		201		{object}	chat.Session
//	@Failure		400		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/api/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req SessionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.chatService.CreateSession(c.Request.Context(), req.UserID, req.Title)
	if err != nil {
		if errors.Is(err, chat.ErrMissingUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// UpdateSession godoc
//
//	@Summary		Rename a chat session
//	@Description	Update the title of an existing session record
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			sessionId	path		string					true	"Session ID"
//	@Param			session		body		SessionUpdateRequest	true	"Session update request"
//	@Success		200			{object}	chat.Session
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/api/sessions/{sessionId} [patch]
func (h *Handler) UpdateSession(c *gin.Context) {
	var req SessionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.chatService.UpdateTitle(c.Request.Context(), c.Param("sessionId"), req.Title)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}
