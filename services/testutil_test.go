package services

import (
	"testing"
	"time"

	"chirp/db"
	"chirp/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, db.ConnectTestDB())
}

// createTestUser создает пользователя напрямую в БД, как это делает webhook
func createTestUser(t *testing.T) *models.User {
	t.Helper()

	user := &models.User{
		ID:              gofakeit.UUID(),
		Username:        gofakeit.Username(),
		ProfileImageURL: gofakeit.URL(),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	require.NoError(t, db.ORM.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, authorID string, content string, replyingTo int64) *models.Post {
	t.Helper()

	now := time.Now()
	post := &models.Post{
		AuthorID:   authorID,
		Content:    content,
		ReplyingTo: replyingTo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.ORM.Create(post).Error)
	return post
}
