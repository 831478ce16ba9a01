package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rishipandey14/HRMS-Backend/src/internal/cache"
	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	repo   *memoryRepository
	cache  cache.Service
}

func newTestEnv(t *testing.T, requester identity.Identity) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Configuration{
		App:        config.Application{Timeout: 5},
		Cache:      config.CacheConfig{UserStatKey: "user-stats", UserStatExpirationMinutes: 5},
		Pagination: config.PaginationConfig{DefaultLimit: 50, MaxLimit: 100},
	}
	repo := seededRepository()
	cacheService := cache.NewCacheService(client, cfg)
	h := NewHandler(cfg, newTestService(repo), cacheService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(identity.ContextKey, requester)
		c.Next()
	})
	router.GET("/admin/users", h.GetAllUsers)
	router.GET("/admin/users/stats", h.GetUserStats)
	router.POST("/admin/users/approve", h.ApproveUser)

	return &testEnv{router: router, repo: repo, cache: cacheService}
}

func (e *testEnv) do(method, target string, body interface{}) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&payload).Encode(body)
	}
	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

var admin = identity.User{ID: "100001000001", CompanyCode: "100001"}

func TestHandler_GetAllUsers(t *testing.T) {
	env := newTestEnv(t, admin)

	w := env.do(http.MethodGet, "/admin/users?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                `json:"success"`
		Data    GetAllUsersResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(3), body.Data.TotalCount)
	assert.Equal(t, 10, body.Data.Limit)
	for _, u := range body.Data.Users {
		assert.Equal(t, "100001", u.CompanyCode)
	}

	w = env.do(http.MethodGet, "/admin/users?role=client", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetUserStatsIsCached(t *testing.T) {
	env := newTestEnv(t, admin)

	w := env.do(http.MethodGet, "/admin/users/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User statistics retrieved successfully")
	assert.NotContains(t, w.Body.String(), "from cache")

	cached, err := env.cache.GetUserStats(context.Background(), "100001")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, int64(3), cached.Total)

	w = env.do(http.MethodGet, "/admin/users/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "from cache")
}

func TestHandler_ApproveUser(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		env := newTestEnv(t, admin)
		require.NoError(t, env.cache.SaveUserStats(context.Background(), &models.Stats{CompanyCode: "100001", Total: 3}))

		w := env.do(http.MethodPost, "/admin/users/approve", ApproveRequest{UserID: "100001000002", Action: ActionApprove})
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "User approved successfully", body["message"])
		assert.Equal(t, RoleUser, body["role"])
		assert.Equal(t, RoleUser, env.repo.role("100001000002"))

		cached, err := env.cache.GetUserStats(context.Background(), "100001")
		require.NoError(t, err)
		assert.Nil(t, cached)
	})

	t.Run("reject", func(t *testing.T) {
		env := newTestEnv(t, admin)
		w := env.do(http.MethodPost, "/admin/users/approve", ApproveRequest{UserID: "100001000003", Action: ActionReject})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "User rejected successfully")
	})

	cases := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"invalid action", ApproveRequest{UserID: "100001000002", Action: "promote"}, http.StatusBadRequest},
		{"unknown user", ApproveRequest{UserID: "404", Action: ActionApprove}, http.StatusNotFound},
		{"other company", ApproveRequest{UserID: "200002000001", Action: ActionApprove}, http.StatusForbidden},
		{"missing fields", map[string]string{"userId": "100001000002"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, admin)
			w := env.do(http.MethodPost, "/admin/users/approve", tc.body)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
