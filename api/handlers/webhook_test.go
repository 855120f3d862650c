package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chirp/db"
	"chirp/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityWebhookUserCreated(t *testing.T) {
	router := setupRouter(t)

	id := gofakeit.UUID()
	username := gofakeit.Username()
	event := map[string]any{
		"object": "event",
		"type":   "user.created",
		"data": map[string]any{
			"id":                id,
			"username":          username,
			"profile_image_url": gofakeit.URL(),
		},
	}

	w := doJSON(router, http.MethodPost, "/api/webhooks/identity", "", event)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.ORM.Where("id = ?", id).Take(&user).Error)
	assert.Equal(t, username, user.Username)

	// Повторная доставка того же события
	w = doJSON(router, http.MethodPost, "/api/webhooks/identity", "", event)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestIdentityWebhookDerivesNameFromFirstLast(t *testing.T) {
	router := setupRouter(t)

	id := gofakeit.UUID()
	event := map[string]any{
		"object": "event",
		"type":   "user.created",
		"data": map[string]any{
			"id":         id,
			"first_name": "Jane",
			"last_name":  "Doe",
		},
	}

	w := doJSON(router, http.MethodPost, "/api/webhooks/identity", "", event)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.ORM.Where("id = ?", id).Take(&user).Error)
	assert.Equal(t, "Jane Doe", user.Username)
}

func TestIdentityWebhookUnknownEventType(t *testing.T) {
	router := setupRouter(t)

	event := map[string]any{
		"object": "event",
		"type":   "user.updated",
		"data":   map[string]any{"id": gofakeit.UUID()},
	}

	w := doJSON(router, http.MethodPost, "/api/webhooks/identity", "", event)
	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestIdentityWebhookRejectsNonPost(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/webhooks/identity", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestIdentityWebhookRejectsMalformedBody(t *testing.T) {
	router := setupRouter(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/webhooks/identity", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
