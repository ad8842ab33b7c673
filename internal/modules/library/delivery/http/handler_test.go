package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/alienvault/internal/entity"
	handler "anoa.com/alienvault/internal/modules/library/delivery/http"
	"anoa.com/alienvault/internal/modules/library/repository"
	"anoa.com/alienvault/internal/modules/library/service"
	"anoa.com/alienvault/internal/testutil"
	"anoa.com/alienvault/pkg/response"
	"anoa.com/alienvault/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSigner struct{}

func (stubSigner) PresignUpload(_ context.Context, folder, fileName string, _ time.Duration) (*storage.PresignedUpload, error) {
	key := folder + "/1-" + fileName
	return &storage.PresignedUpload{
		UploadURL: "https://files.test/library/" + key + "?X-Amz-Signature=abc",
		Key:       key,
		PublicURL: "https://files.test/library/" + key,
	}, nil
}

func (stubSigner) Owns(string) bool { return true }

func newRouter(t *testing.T, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	if userID != "" {
		user := testutil.CreateUser(t, db, "uploader")
		userID = user.ID.String()
	}
	svc := service.NewLibraryService(repository.NewDocumentRepository(db), stubSigner{}, nil)

	r := gin.New()
	auth := func(c *gin.Context) {
		if userID != "" {
			c.Set(response.ContextUserID, userID)
		}
		c.Next()
	}
	for path, kind := range map[string]entity.DocumentKind{"/api/pdfs": entity.DocumentPDF, "/api/ebooks": entity.DocumentEbook} {
		h := handler.NewLibraryHandler(svc, kind)
		r.GET(path, h.List)
		r.POST(path+"/generate-upload-url", auth, h.GenerateUploadURL)
		r.POST(path+"/store-metadata", auth, h.StoreMetadata)
	}
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLibraryUploadFlow(t *testing.T) {
	r := newRouter(t, "signed-in")

	w := do(r, http.MethodPost, "/api/ebooks/generate-upload-url", map[string]string{
		"filename": "sicp.pdf", "contentType": "application/pdf",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var upload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	assert.Equal(t, "ebooks/1-sicp.pdf", upload["pathname"])

	w = do(r, http.MethodPost, "/api/ebooks/store-metadata", map[string]string{
		"title":       "SICP",
		"description": "wizard book",
		"semester":    "2",
		"blob_url":    upload["blob_url"].(string),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "E-book metadata stored successfully", created["message"])

	w = do(r, http.MethodGet, "/api/ebooks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []map[string]any `json:"data"`
		Meta map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, created["id"], list.Data[0]["id"])
	assert.Equal(t, "uploader", list.Data[0]["uploader_username"])
	assert.EqualValues(t, 1, list.Meta["total_items"])

	w = do(r, http.MethodGet, "/api/pdfs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, mustField(t, w.Body.Bytes(), "data"))
}

func mustField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return string(m[field])
}

func TestLibraryRejects(t *testing.T) {
	t.Run("anonymous upload", func(t *testing.T) {
		r := newRouter(t, "")
		w := do(r, http.MethodPost, "/api/pdfs/generate-upload-url", map[string]string{
			"filename": "a.pdf", "contentType": "application/pdf",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("anonymous metadata", func(t *testing.T) {
		r := newRouter(t, "")
		w := do(r, http.MethodPost, "/api/pdfs/store-metadata", map[string]string{"title": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing semester", func(t *testing.T) {
		r := newRouter(t, "signed-in")
		w := do(r, http.MethodPost, "/api/pdfs/store-metadata", map[string]string{
			"title": "x", "description": "y", "blob_url": "https://files.test/library/pdfs/x.pdf",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not a pdf", func(t *testing.T) {
		r := newRouter(t, "signed-in")
		w := do(r, http.MethodPost, "/api/pdfs/generate-upload-url", map[string]string{
			"filename": "a.docx", "contentType": "application/msword",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
