package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"anoa.com/alienvault/internal/modules/upload/dto"
	"anoa.com/alienvault/pkg/apperror"
	"anoa.com/alienvault/pkg/logger"
	"anoa.com/alienvault/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const MaxImageSize = 5 << 20

type UploadService interface {
	UploadImage(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*dto.UploadImageResponse, error)
	// DeleteImage removes an image the user uploaded earlier.
	DeleteImage(ctx context.Context, userID uuid.UUID, fileURL string) error
}

type uploadService struct {
	fileStorage storage.ImageStorage
	folder      string
	log         *logrus.Entry
}

func NewUploadService(fileStorage storage.ImageStorage, folder string) UploadService {
	return &uploadService{
		fileStorage: fileStorage,
		folder:      folder,
		log:         logger.WithComponent("upload"),
	}
}

func (s *uploadService) UploadImage(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*dto.UploadImageResponse, error) {
	if file == nil {
		return nil, fmt.Errorf("file is required: %w", apperror.ErrBadRequest)
	}
	if !storage.IsImageFile(file.Filename) {
		return nil, fmt.Errorf("only jpg, jpeg, png, gif and webp images are allowed: %w", apperror.ErrBadRequest)
	}
	if file.Size > MaxImageSize {
		return nil, fmt.Errorf("image must be at most 5MB: %w", apperror.ErrBadRequest)
	}
	if s.fileStorage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "image storage is not configured", nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fileURL, err := s.fileStorage.UploadImage(ctx, f, s.ownerFolder(userID), file.Filename)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"filename": file.Filename,
		}).Error("image upload failed")
		return nil, err
	}

	return &dto.UploadImageResponse{
		URL:      fileURL,
		FileType: file.Header.Get("Content-Type"),
		Size:     file.Size,
	}, nil
}

// ownerFolder scopes stored objects per uploader so deletes can be checked
// against the URL alone.
func (s *uploadService) ownerFolder(userID uuid.UUID) string {
	return path.Join(s.folder, userID.String())
}

func (s *uploadService) DeleteImage(ctx context.Context, userID uuid.UUID, fileURL string) error {
	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return fmt.Errorf("invalid image url: %w", apperror.ErrBadRequest)
	}
	if !strings.Contains(u.Path, "/"+s.ownerFolder(userID)+"/") {
		return fmt.Errorf("image belongs to another user: %w", apperror.ErrForbidden)
	}
	if s.fileStorage == nil {
		return apperror.New(http.StatusServiceUnavailable, "image storage is not configured", nil)
	}

	if err := s.fileStorage.DeleteImage(ctx, fileURL); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"url":     fileURL,
		}).Error("image delete failed")
		return err
	}
	return nil
}
