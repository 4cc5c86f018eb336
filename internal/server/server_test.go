package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"icarus/internal/config"
	"icarus/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	*Server
	app *fiber.App
	db  *gorm.DB
}

func newTestConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		SessionSecret:   "test-secret",
		SessionTTLHours: 24 * 7,
		FeedLimit:       50,
		PageSize:        20,
	}
}

// newTestServer builds the full app on a private in-memory database.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := NewServerWithDeps(newTestConfig(), db, nil)
	require.NoError(t, err)
	return &testServer{Server: s, app: s.NewApp(), db: db}
}

// do sends a JSON request, authenticating with token when non-empty, and
// decodes the JSON response body.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

// signup registers an account and returns its session token and user id.
func (ts *testServer) signup(t *testing.T, email, password string) (string, uint) {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/api/signup", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), uint(user["id"].(float64))
}

// createPost publishes content in category and returns the new post id.
func (ts *testServer) createPost(t *testing.T, token, content, category string) uint {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/api/posts", token, fiber.Map{
		"content":  content,
		"category": category,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	post := body["post"].(map[string]interface{})
	return uint(post["id"].(float64))
}

func TestNewServerWithDeps_RequiresDatabase(t *testing.T) {
	_, err := NewServerWithDeps(newTestConfig(), nil, nil)
	assert.Error(t, err)

	_, err = NewServerWithDeps(nil, nil, nil)
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "up", body["status"])

	resp, body = ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	ts := newTestServer(t)
	sqlDB, err := ts.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, body := ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSwaggerDoc(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/swagger/doc.json", nil)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		BasePath string                            `json:"basePath"`
		Paths    map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/posts/{id}/like")
	assert.Contains(t, doc.Paths["/posts"], "post")
	assert.Contains(t, doc.Paths["/user/delete"], "delete")
}
