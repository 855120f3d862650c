package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chirp/api/routes"
	"chirp/db"
	"chirp/models"
	"chirp/services"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier принимает токены вида token_<userID> вместо похода к провайдеру
type stubVerifier struct{}

func (stubVerifier) VerifySession(_ context.Context, token string) (string, error) {
	if strings.HasPrefix(token, "token_") {
		return strings.TrimPrefix(token, "token_"), nil
	}
	return "", fmt.Errorf("invalid token")
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	require.NoError(t, db.ConnectTestDB())
	services.Identity = stubVerifier{}
	if services.PostLimiter == nil {
		services.PostLimiter = services.NewMemoryLimiter(1, 3*time.Second)
		services.LikeLimiter = services.NewMemoryLimiter(10, time.Minute)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes.PublicApi(router)
	return router
}

func createAPIUser(t *testing.T) *models.User {
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

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreatePostRequiresAuth(t *testing.T) {
	router := setupRouter(t)

	var before int64
	require.NoError(t, db.ORM.Model(&models.Post{}).Count(&before).Error)

	w := doJSON(router, http.MethodPost, "/api/v1/posts/create", "", map[string]any{"content": "😀"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Без identity до хранилища дело не доходит
	var after int64
	require.NoError(t, db.ORM.Model(&models.Post{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestCreatePostRoundTrip(t *testing.T) {
	router := setupRouter(t)
	user := createAPIUser(t)
	token := "token_" + user.ID

	w := doJSON(router, http.MethodPost, "/api/v1/posts/create", token, map[string]any{"content": "🚀"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, user.ID, post.AuthorID)
	assert.Equal(t, "🚀", post.Content)

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/posts/get/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view models.PostView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, post.ID, view.ID)
	assert.Equal(t, "🚀", view.Content)
	assert.Equal(t, user.Username, view.AuthorName)
}

func TestCreatePostRejectsNonEmoji(t *testing.T) {
	router := setupRouter(t)
	user := createAPIUser(t)

	w := doJSON(router, http.MethodPost, "/api/v1/posts/create", "token_"+user.ID, map[string]any{"content": "hello world"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePostRateLimited(t *testing.T) {
	router := setupRouter(t)
	user := createAPIUser(t)
	token := "token_" + user.ID

	w := doJSON(router, http.MethodPost, "/api/v1/posts/create", token, map[string]any{"content": "⏱️"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Второй пост в окне 1/3s отбивается до записи в хранилище
	w = doJSON(router, http.MethodPost, "/api/v1/posts/create", token, map[string]any{"content": "⏱️"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var count int64
	require.NoError(t, db.ORM.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetPostNotFound(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/posts/get/99999999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeCreateDeleteFlow(t *testing.T) {
	router := setupRouter(t)
	author := createAPIUser(t)
	liker := createAPIUser(t)
	token := "token_" + liker.ID

	post := &models.Post{AuthorID: author.ID, Content: "❤️", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, db.ORM.Create(post).Error)

	w := doJSON(router, http.MethodPost, "/api/v1/likes/create", token, map[string]any{"post_id": post.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Дубликат - конфликт уникальности
	w = doJSON(router, http.MethodPost, "/api/v1/likes/create", token, map[string]any{"post_id": post.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/likes/count/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var countResp struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &countResp))
	assert.EqualValues(t, 1, countResp.Count)

	w = doJSON(router, http.MethodPost, "/api/v1/likes/delete", token, map[string]any{"post_id": post.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	// Повторное снятие - лайка уже нет
	w = doJSON(router, http.MethodPost, "/api/v1/likes/delete", token, map[string]any{"post_id": post.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetLikedTargetState(t *testing.T) {
	router := setupRouter(t)
	author := createAPIUser(t)
	liker := createAPIUser(t)
	token := "token_" + liker.ID

	post := &models.Post{AuthorID: author.ID, Content: "🔁", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, db.ORM.Create(post).Error)

	likeURL := fmt.Sprintf("/api/v1/posts/like/%d", post.ID)

	// Передается целевое состояние, повтор не меняет ничего
	w := doJSON(router, http.MethodPost, likeURL, token, map[string]any{"liked": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(router, http.MethodPost, likeURL, token, map[string]any{"liked": true})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.ORM.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Авторизованное чтение видит свой лайк
	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/posts/get/%d", post.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view models.PostView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.LikedByMe)

	w = doJSON(router, http.MethodPost, likeURL, token, map[string]any{"liked": false})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.ORM.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProfileLookup(t *testing.T) {
	router := setupRouter(t)
	user := createAPIUser(t)

	w := doJSON(router, http.MethodGet, "/api/v1/profile/get/"+user.Username, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, user.ID, profile.ID)

	w = doJSON(router, http.MethodGet, "/api/v1/profile/get/nonexistent_user_404", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
