package dto

import (
	"time"

	commonDto "anoa.com/alienvault/pkg/dto"
	"github.com/google/uuid"
)

type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required,max=200"`
	ContentType string `json:"contentType" binding:"required"`
}

type UploadURLResponse struct {
	URL       string    `json:"url"`
	Pathname  string    `json:"pathname"`
	BlobURL   string    `json:"blob_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type StoreMetadataRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Semester    string `json:"semester" binding:"required,max=20"`
	Course      string `json:"course" binding:"max=100"`
	Department  string `json:"department" binding:"max=100"`
	YearOfStudy string `json:"year_of_study" binding:"max=20"`
	BlobURL     string `json:"blob_url" binding:"required,url"`
}

type DocumentFilter struct {
	Semester   string `form:"semester"`
	Course     string `form:"course"`
	Department string `form:"department"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type DocumentResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Semester         string    `json:"semester"`
	Course           *string   `json:"course"`
	Department       *string   `json:"department"`
	YearOfStudy      *string   `json:"year_of_study"`
	BlobURL          string    `json:"blob_url"`
	UploadedByUserID uuid.UUID `json:"uploaded_by_user_id"`
	UploaderUsername string    `json:"uploader_username"`
	UploadDate       time.Time `json:"upload_date"`
}

type PaginatedDocumentResponse struct {
	Data []DocumentResponse       `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
