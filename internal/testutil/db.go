// Package testutil provides an in-memory database for repository and service tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"anoa.com/alienvault/internal/bootstrap"
	"anoa.com/alienvault/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

// CreateUser inserts a user with a predictable email.
func CreateUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()

	user := &entity.User{
		Username:     username,
		Email:        username + "@alienvault.test",
		PasswordHash: "x",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

func CreateDiscussion(t *testing.T, db *gorm.DB, author *entity.User, title string) *entity.Discussion {
	t.Helper()

	d := &entity.Discussion{
		AuthorID: author.ID,
		Title:    title,
		Content:  title + " body",
		Category: "general",
	}
	require.NoError(t, db.Create(d).Error)
	return d
}

func CreateAnswer(t *testing.T, db *gorm.DB, discussion *entity.Discussion, author *entity.User, content string) *entity.Answer {
	t.Helper()

	a := &entity.Answer{
		DiscussionID: discussion.ID,
		AuthorID:     author.ID,
		Content:      content,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func CreateReply(t *testing.T, db *gorm.DB, answer *entity.Answer, author *entity.User, content string) *entity.Reply {
	t.Helper()

	r := &entity.Reply{
		AnswerID: answer.ID,
		AuthorID: author.ID,
		Content:  content,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}
