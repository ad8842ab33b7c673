package handler

import (
	"net/http"

	"anoa.com/alienvault/internal/modules/feedback/dto"
	feedback "anoa.com/alienvault/internal/modules/feedback/service"
	"anoa.com/alienvault/pkg/response"
	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	service feedback.FeedbackService
}

func NewFeedbackHandler(service feedback.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// submitter returns the signed-in user, or nil for anonymous feedback.
func submitter(c *gin.Context) *dto.Submitter {
	userID, err := response.GetUserID(c)
	if err != nil {
		return nil
	}
	return &dto.Submitter{
		ID:       userID,
		Username: response.GetUsername(c),
		Email:    c.GetString(response.ContextEmail),
	}
}

func (h *FeedbackHandler) SubmitSuggestion(c *gin.Context) {
	var req dto.CreateFeatureSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	suggestion, err := h.service.SubmitSuggestion(c.Request.Context(), submitter(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Feature suggestion submitted successfully",
		"suggestion": suggestion,
	})
}

func (h *FeedbackHandler) SubmitBugReport(c *gin.Context) {
	var req dto.CreateBugReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	report, err := h.service.SubmitBugReport(c.Request.Context(), submitter(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Bug report submitted successfully",
		"bug_report": report,
	})
}

func (h *FeedbackHandler) ListSuggestions(c *gin.Context) {
	var filter dto.SuggestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.ListSuggestions(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FeedbackHandler) ListBugReports(c *gin.Context) {
	var filter dto.BugReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.ListBugReports(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FeedbackHandler) UpdateSuggestion(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFeatureSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	suggestion, err := h.service.UpdateSuggestion(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Feature suggestion updated successfully",
		"suggestion": suggestion,
	})
}

func (h *FeedbackHandler) UpdateBugReport(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBugReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	report, err := h.service.UpdateBugReport(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Bug report updated successfully",
		"bug_report": report,
	})
}

func (h *FeedbackHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
