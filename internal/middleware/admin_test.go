package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/apierr"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGate struct {
	identity *services.AdminIdentity
	err      error
	token    string
}

func (g *stubGate) Authorize(_ context.Context, token string) (*services.AdminIdentity, error) {
	g.token = token
	return g.identity, g.err
}

func newAdminRouter(gate Authorizer, reached *bool) *gin.Engine {
	r := gin.New()
	r.POST("/admin", RequireAdmin(gate, logger.Nop()), func(c *gin.Context) {
		*reached = true
		admin, ok := AdminFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": admin.UserID.String()})
	})
	return r
}

func TestRequireAdmin_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Unauthenticated", apierr.Unauthorized("missing bearer token"), http.StatusUnauthorized},
		{"NotAdmin", apierr.Forbidden("admin role required"), http.StatusForbidden},
		{"LookupFailure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			r := newAdminRouter(&stubGate{err: tt.err}, &reached)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, reached, "handler ran despite rejection")

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.err.Error(), body["error"])
			assert.NotContains(t, body, "results")
		})
	}
}

func TestRequireAdmin_PassesIdentity(t *testing.T) {
	userID := uuid.New()
	gate := &stubGate{identity: &services.AdminIdentity{UserID: userID}}
	reached := false
	r := newAdminRouter(gate, &reached)

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reached)
	assert.Equal(t, "abc.def.ghi", gate.token)
	assert.JSONEq(t, `{"user":"`+userID.String()+`"}`, w.Body.String())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer", ""},
		{"Bearer ", ""},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer token-1", "token-1"},
		{"bearer token-2 ", "token-2"},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, bearerToken(c), "header %q", tt.header)
	}
}

func TestJSONRecovery(t *testing.T) {
	r := gin.New()
	r.Use(JSONRecovery(logger.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, w.Body.String())
}
