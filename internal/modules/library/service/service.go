package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/library/dto"
	libraryRepo "anoa.com/alienvault/internal/modules/library/repository"
	"anoa.com/alienvault/pkg/apperror"
	commonDto "anoa.com/alienvault/pkg/dto"
	"anoa.com/alienvault/pkg/logger"
	"anoa.com/alienvault/pkg/ratelimiter"
	"anoa.com/alienvault/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	PDFContentType = "application/pdf"
	UploadURLTTL   = 15 * time.Minute
)

type LibraryService interface {
	List(ctx context.Context, kind entity.DocumentKind, filter dto.DocumentFilter) (*dto.PaginatedDocumentResponse, error)
	// GenerateUploadURL hands the client a short-lived URL to PUT the file
	// straight into object storage.
	GenerateUploadURL(ctx context.Context, kind entity.DocumentKind, userID uuid.UUID, req dto.UploadURLRequest) (*dto.UploadURLResponse, error)
	StoreMetadata(ctx context.Context, kind entity.DocumentKind, userID uuid.UUID, req dto.StoreMetadataRequest) (*entity.Document, error)
}

type libraryService struct {
	repo    libraryRepo.DocumentRepository
	signer  storage.DocumentSigner
	limiter *ratelimiter.Limiter
	log     *logrus.Entry
}

// NewLibraryService accepts a nil signer; uploads then answer 503 while
// listing and metadata keep working.
func NewLibraryService(repo libraryRepo.DocumentRepository, signer storage.DocumentSigner, limiter *ratelimiter.Limiter) LibraryService {
	return &libraryService{
		repo:    repo,
		signer:  signer,
		limiter: limiter,
		log:     logger.WithComponent("library"),
	}
}

func folderFor(kind entity.DocumentKind) string {
	if kind == entity.DocumentEbook {
		return "ebooks"
	}
	return "pdfs"
}

func (s *libraryService) List(ctx context.Context, kind entity.DocumentKind, filter dto.DocumentFilter) (*dto.PaginatedDocumentResponse, error) {
	page, limit := commonDto.NormalizePage(filter.Page, filter.Limit)

	documents, total, err := s.repo.FindAll(ctx, libraryRepo.DocumentQuery{
		Kind:       kind,
		Semester:   strings.TrimSpace(filter.Semester),
		Course:     strings.TrimSpace(filter.Course),
		Department: strings.TrimSpace(filter.Department),
	}, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s documents: %w", kind, err)
	}

	data := make([]dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		data = append(data, dto.DocumentResponse{
			ID:               d.ID,
			Title:            d.Title,
			Description:      d.Description,
			Semester:         d.Semester,
			Course:           d.Course,
			Department:       d.Department,
			YearOfStudy:      d.YearOfStudy,
			BlobURL:          d.BlobURL,
			UploadedByUserID: d.UploadedByID,
			UploaderUsername: d.UploadedBy.Username,
			UploadDate:       d.CreatedAt,
		})
	}

	return &dto.PaginatedDocumentResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *libraryService) GenerateUploadURL(ctx context.Context, kind entity.DocumentKind, userID uuid.UUID, req dto.UploadURLRequest) (*dto.UploadURLResponse, error) {
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return nil, fmt.Errorf("filename is required: %w", apperror.ErrBadRequest)
	}
	if strings.ToLower(strings.TrimSpace(req.ContentType)) != PDFContentType {
		return nil, fmt.Errorf("only PDF files are allowed: %w", apperror.ErrBadRequest)
	}
	if s.signer == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "document storage is not configured", nil)
	}

	expiresAt := time.Now().Add(UploadURLTTL)
	presigned, err := s.signer.PresignUpload(ctx, folderFor(kind), filename, UploadURLTTL)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"kind":     kind,
			"filename": filename,
		}).Error("presign failed")
		return nil, err
	}

	return &dto.UploadURLResponse{
		URL:       presigned.UploadURL,
		Pathname:  presigned.Key,
		BlobURL:   presigned.PublicURL,
		ExpiresAt: expiresAt,
	}, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func (s *libraryService) StoreMetadata(ctx context.Context, kind entity.DocumentKind, userID uuid.UUID, req dto.StoreMetadataRequest) (*entity.Document, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	semester := strings.TrimSpace(req.Semester)
	blobURL := strings.TrimSpace(req.BlobURL)
	if title == "" || description == "" || semester == "" || blobURL == "" {
		return nil, fmt.Errorf("title, description, semester, and blob_url are required: %w", apperror.ErrBadRequest)
	}
	if s.signer != nil && !s.signer.Owns(blobURL) {
		return nil, fmt.Errorf("blob_url must point into the document store: %w", apperror.ErrBadRequest)
	}

	release, err := s.limiter.Acquire(ctx, userID, ratelimiter.ScopeDocument)
	if err != nil {
		return nil, err
	}

	document := &entity.Document{
		Kind:         kind,
		Title:        title,
		Description:  description,
		Semester:     semester,
		Course:       optional(req.Course),
		Department:   optional(req.Department),
		YearOfStudy:  optional(req.YearOfStudy),
		BlobURL:      blobURL,
		UploadedByID: userID,
	}
	if err := s.repo.Create(ctx, document); err != nil {
		release()
		return nil, fmt.Errorf("failed to save %s metadata: %w", kind, err)
	}

	s.log.WithFields(logrus.Fields{
		"document_id": document.ID,
		"kind":        kind,
		"user_id":     userID,
	}).Info("document stored")
	return document, nil
}
