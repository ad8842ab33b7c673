package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/pkg/apperror"
	"anoa.com/alienvault/pkg/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Authenticator admits a connection before it is upgraded.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*Identity, error)
}

// UserFinder is the slice of the user repository the authenticator needs.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type TokenAuthenticator struct {
	tokens *token.Manager
	users  UserFinder
}

func NewTokenAuthenticator(tokens *token.Manager, users UserFinder) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens, users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, fmt.Errorf("authentication required: %w", apperror.ErrUnauthorized)
	}

	userID, err := a.tokens.Parse(credential)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrUnauthorized)
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	return &Identity{UserID: user.ID, Username: user.Username}, nil
}

// CredentialFromRequest looks for a token in the Authorization header, then
// the token query parameter, then the token cookie.
func CredentialFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if q := r.URL.Query().Get("token"); q != "" {
		return q
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}
