package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/backend/internal/auth"
)

func (e *testEnv) get(t *testing.T, token, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func seed(t *testing.T, env *testEnv, userID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := env.repo.CreateForUser(context.Background(), userID, "T", "M", "INFO", nil)
		require.NoError(t, err)
	}
}

func TestListNotifications(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := uuid.New()
	seed(t, env, userID, 3)
	seed(t, env, uuid.New(), 2) // someone else's rows

	resp := env.get(t, env.token(t, userID, auth.RoleStudent), "/api/v1/notifications?page=1&limit=20")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Notifications []struct {
			UserID string `json:"user_id"`
			IsRead bool   `json:"is_read"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	decodeData(t, resp, &data)
	require.Len(t, data.Notifications, 3)
	assert.Equal(t, 3, data.Unread)
	for _, n := range data.Notifications {
		assert.Equal(t, userID.String(), n.UserID)
		assert.False(t, n.IsRead)
	}
}

func TestListRequiresAuth(t *testing.T) {
	env := newTestEnv(t, nil)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/v1/notifications", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := uuid.New()
	seed(t, env, owner, 1)
	id := env.repo.All()[0].ID

	// A stranger cannot flip someone else's notification.
	resp := env.post(t, env.token(t, uuid.New(), auth.RoleStudent),
		"/api/v1/notifications/"+id.String()+"/read", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.post(t, env.token(t, owner, auth.RoleStudent),
		"/api/v1/notifications/"+id.String()+"/read", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.repo.All()[0].IsRead)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.post(t, env.token(t, uuid.New(), auth.RoleStudent),
		"/api/v1/notifications/"+uuid.NewString()+"/read", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.post(t, env.token(t, uuid.New(), auth.RoleStudent),
		"/api/v1/notifications/not-a-uuid/read", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMarkAllReadAndUnreadCount(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := uuid.New()
	seed(t, env, userID, 5)
	token := env.token(t, userID, auth.RoleStudent)

	resp := env.get(t, token, "/api/v1/notifications/unread-count")
	var count map[string]int
	decodeData(t, resp, &count)
	assert.Equal(t, 5, count["unread"])

	resp = env.post(t, token, "/api/v1/notifications/read-all", "")
	var updated map[string]int64
	decodeData(t, resp, &updated)
	assert.EqualValues(t, 5, updated["updated"])

	resp = env.get(t, token, "/api/v1/notifications/unread-count")
	decodeData(t, resp, &count)
	assert.Zero(t, count["unread"])
}

func TestAnnounceValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.token(t, uuid.New(), auth.RoleAdmin)

	resp := env.post(t, admin, "/api/v1/notifications/broadcast", `{"title":"","message":"M"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.post(t, admin, "/api/v1/users/"+uuid.NewString()+"/notifications", `{not json`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, env.repo.All())
}
