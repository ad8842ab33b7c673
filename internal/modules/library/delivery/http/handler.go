package handler

import (
	"net/http"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/library/dto"
	library "anoa.com/alienvault/internal/modules/library/service"
	commonDto "anoa.com/alienvault/pkg/dto"
	"anoa.com/alienvault/pkg/response"
	"github.com/gin-gonic/gin"
)

// LibraryHandler serves one shelf of the library; PDFs and e-books each get
// their own instance.
type LibraryHandler struct {
	service library.LibraryService
	kind    entity.DocumentKind
}

func NewLibraryHandler(service library.LibraryService, kind entity.DocumentKind) *LibraryHandler {
	return &LibraryHandler{service: service, kind: kind}
}

func (h *LibraryHandler) List(c *gin.Context) {
	var filter dto.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.List(c.Request.Context(), h.kind, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LibraryHandler) GenerateUploadURL(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.GenerateUploadURL(c.Request.Context(), h.kind, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LibraryHandler) StoreMetadata(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.StoreMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	document, err := h.service.StoreMetadata(c.Request.Context(), h.kind, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commonDto.CreatedResponse{
		ID:      document.ID,
		Message: h.kind.Label() + " metadata stored successfully",
	})
}
