package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/pkg/apperror"
	"anoa.com/alienvault/pkg/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mapUsers map[uuid.UUID]*entity.User

func (m mapUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestTokenAuthenticator(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	user := &entity.User{ID: uuid.New(), Username: "ripley"}
	auth := NewTokenAuthenticator(tokens, mapUsers{user.ID: user})

	valid, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	identity, err := auth.Authenticate(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "ripley", identity.Username)

	ghost, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	for name, cred := range map[string]string{
		"missing": "",
		"garbage": "not-a-jwt",
		"ghost":   ghost,
	} {
		_, err := auth.Authenticate(context.Background(), cred)
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized), name)
	}
}

func TestCredentialFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ws?token=query", nil)
	req.Header.Set("Authorization", "Bearer header")
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie"})
	assert.Equal(t, "header", CredentialFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/api/ws?token=query", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie"})
	assert.Equal(t, "query", CredentialFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie"})
	assert.Equal(t, "cookie", CredentialFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", CredentialFromRequest(req))
}
