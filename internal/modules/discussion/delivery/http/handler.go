package handler

import (
	"net/http"

	"anoa.com/alienvault/internal/modules/discussion/dto"
	discussion "anoa.com/alienvault/internal/modules/discussion/service"
	commonDto "anoa.com/alienvault/pkg/dto"
	"anoa.com/alienvault/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DiscussionHandler struct {
	service discussion.DiscussionService
}

func NewDiscussionHandler(service discussion.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{service: service}
}

func (h *DiscussionHandler) GetDiscussions(c *gin.Context) {
	var filter dto.DiscussionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	// Listing is public; a signed-in viewer also gets their own votes.
	viewerID, _ := response.GetUserID(c)

	discussions, err := h.service.GetDiscussions(c.Request.Context(), viewerID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, discussions)
}

func (h *DiscussionHandler) GetDiscussion(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	viewerID, _ := response.GetUserID(c)
	viewerKey := c.ClientIP()
	if viewerID != uuid.Nil {
		viewerKey = viewerID.String()
	}

	detail, err := h.service.GetDiscussion(c.Request.Context(), id, viewerID, viewerKey)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *DiscussionHandler) CreateDiscussion(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.service.CreateDiscussion(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commonDto.CreatedResponse{ID: created.ID, Message: "Discussion created successfully"})
}

func (h *DiscussionHandler) AddAnswer(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	discussionID, ok := response.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	answer, err := h.service.AddAnswer(c.Request.Context(), userID, discussionID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commonDto.CreatedResponse{ID: answer.ID, Message: "Answer added successfully"})
}

func (h *DiscussionHandler) AddReply(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	answerID, ok := response.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	reply, err := h.service.AddReply(c.Request.Context(), userID, answerID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commonDto.CreatedResponse{ID: reply.ID, Message: "Reply added successfully"})
}

func (h *DiscussionHandler) MarkBestAnswer(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	answerID, ok := response.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkBestAnswer(c.Request.Context(), userID, answerID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Best answer marked successfully"})
}
