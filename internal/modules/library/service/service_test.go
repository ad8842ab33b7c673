package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/library/dto"
	"anoa.com/alienvault/internal/modules/library/repository"
	"anoa.com/alienvault/internal/modules/library/service"
	"anoa.com/alienvault/internal/testutil"
	"anoa.com/alienvault/pkg/apperror"
	"anoa.com/alienvault/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeURL = "https://files.test/library/"

type fakeSigner struct {
	folder string
	expiry time.Duration
	err    error
}

func (f *fakeSigner) PresignUpload(_ context.Context, folder, fileName string, expiry time.Duration) (*storage.PresignedUpload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.folder, f.expiry = folder, expiry
	key := folder + "/1-" + fileName
	return &storage.PresignedUpload{
		UploadURL: storeURL + key + "?X-Amz-Signature=abc",
		Key:       key,
		PublicURL: storeURL + key,
	}, nil
}

func (f *fakeSigner) Owns(fileURL string) bool {
	return strings.HasPrefix(fileURL, storeURL)
}

func metadata(title, semester string) dto.StoreMetadataRequest {
	return dto.StoreMetadataRequest{
		Title:       title,
		Description: "lecture notes",
		Semester:    semester,
		BlobURL:     storeURL + "pdfs/1-" + title + ".pdf",
	}
}

func TestGenerateUploadURL(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "uploader")
	ctx := context.Background()

	t.Run("presigns into the kind's folder", func(t *testing.T) {
		signer := &fakeSigner{}
		svc := service.NewLibraryService(repository.NewDocumentRepository(db), signer, nil)

		res, err := svc.GenerateUploadURL(ctx, entity.DocumentEbook, user.ID, dto.UploadURLRequest{
			Filename: "sicp.pdf", ContentType: "application/pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "ebooks", signer.folder)
		assert.Equal(t, service.UploadURLTTL, signer.expiry)
		assert.Equal(t, "ebooks/1-sicp.pdf", res.Pathname)
		assert.Equal(t, storeURL+"ebooks/1-sicp.pdf", res.BlobURL)
		assert.Contains(t, res.URL, "X-Amz-Signature=")
		assert.WithinDuration(t, time.Now().Add(service.UploadURLTTL), res.ExpiresAt, time.Minute)
	})

	t.Run("only pdfs", func(t *testing.T) {
		svc := service.NewLibraryService(repository.NewDocumentRepository(db), &fakeSigner{}, nil)
		_, err := svc.GenerateUploadURL(ctx, entity.DocumentPDF, user.ID, dto.UploadURLRequest{
			Filename: "cat.png", ContentType: "image/png",
		})
		assert.True(t, errors.Is(err, apperror.ErrBadRequest))
	})

	t.Run("no document store", func(t *testing.T) {
		svc := service.NewLibraryService(repository.NewDocumentRepository(db), nil, nil)
		_, err := svc.GenerateUploadURL(ctx, entity.DocumentPDF, user.ID, dto.UploadURLRequest{
			Filename: "a.pdf", ContentType: "application/pdf",
		})
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
	})

	t.Run("signer failure", func(t *testing.T) {
		boom := errors.New("boom")
		svc := service.NewLibraryService(repository.NewDocumentRepository(db), &fakeSigner{err: boom}, nil)
		_, err := svc.GenerateUploadURL(ctx, entity.DocumentPDF, user.ID, dto.UploadURLRequest{
			Filename: "a.pdf", ContentType: "application/pdf",
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestStoreMetadata(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "uploader")
	svc := service.NewLibraryService(repository.NewDocumentRepository(db), &fakeSigner{}, nil)
	ctx := context.Background()

	t.Run("blank optionals stay null", func(t *testing.T) {
		req := metadata("algorithms", "3")
		req.Course = "  "
		req.Department = "Informatics"
		doc, err := svc.StoreMetadata(ctx, entity.DocumentPDF, user.ID, req)
		require.NoError(t, err)
		assert.Equal(t, entity.DocumentPDF, doc.Kind)
		assert.Equal(t, user.ID, doc.UploadedByID)
		assert.Nil(t, doc.Course)
		require.NotNil(t, doc.Department)
		assert.Equal(t, "Informatics", *doc.Department)
	})

	t.Run("foreign blob url", func(t *testing.T) {
		req := metadata("algorithms", "3")
		req.BlobURL = "https://elsewhere.test/a.pdf"
		_, err := svc.StoreMetadata(ctx, entity.DocumentPDF, user.ID, req)
		assert.True(t, errors.Is(err, apperror.ErrBadRequest))
	})

	t.Run("required fields", func(t *testing.T) {
		req := metadata(" ", "3")
		_, err := svc.StoreMetadata(ctx, entity.DocumentPDF, user.ID, req)
		assert.True(t, errors.Is(err, apperror.ErrBadRequest))
	})

	t.Run("without a signer any url is accepted", func(t *testing.T) {
		open := service.NewLibraryService(repository.NewDocumentRepository(db), nil, nil)
		req := metadata("networks", "5")
		req.BlobURL = "https://elsewhere.test/networks.pdf"
		_, err := open.StoreMetadata(ctx, entity.DocumentPDF, user.ID, req)
		assert.NoError(t, err)
	})
}

func TestListDocuments(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "uploader")
	svc := service.NewLibraryService(repository.NewDocumentRepository(db), &fakeSigner{}, nil)
	ctx := context.Background()

	for _, doc := range []struct {
		kind     entity.DocumentKind
		title    string
		semester string
	}{
		{entity.DocumentPDF, "calculus", "1"},
		{entity.DocumentPDF, "physics", "2"},
		{entity.DocumentPDF, "compilers", "2"},
		{entity.DocumentEbook, "sicp", "2"},
	} {
		_, err := svc.StoreMetadata(ctx, doc.kind, user.ID, metadata(doc.title, doc.semester))
		require.NoError(t, err)
	}

	titles := func(res *dto.PaginatedDocumentResponse) []string {
		out := make([]string, 0, len(res.Data))
		for _, d := range res.Data {
			out = append(out, d.Title)
		}
		return out
	}

	t.Run("kinds are separate shelves, newest first", func(t *testing.T) {
		res, err := svc.List(ctx, entity.DocumentPDF, dto.DocumentFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"compilers", "physics", "calculus"}, titles(res))
		assert.Equal(t, int64(3), res.Meta.TotalItems)
		assert.Equal(t, "uploader", res.Data[0].UploaderUsername)
		assert.Equal(t, user.ID, res.Data[0].UploadedByUserID)

		res, err = svc.List(ctx, entity.DocumentEbook, dto.DocumentFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"sicp"}, titles(res))
	})

	t.Run("semester filter", func(t *testing.T) {
		res, err := svc.List(ctx, entity.DocumentPDF, dto.DocumentFilter{Semester: "2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"compilers", "physics"}, titles(res))
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := svc.List(ctx, entity.DocumentPDF, dto.DocumentFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"calculus"}, titles(res))
		assert.Equal(t, 2, res.Meta.TotalPages)
	})
}
