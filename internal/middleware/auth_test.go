package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authSecret = "middleware-secret-that-is-long-enough"

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(authSecret), func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		ctxUser, _ := GetUserIDFromCtx(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": userID, "ctxUser": ctxUser})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	valid, err := utils.IssueToken("clerk-7", authSecret, time.Hour)
	require.NoError(t, err)
	expired, err := utils.IssueToken("clerk-7", authSecret, -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, `{"ctxUser":"clerk-7","user":"clerk-7"}`},
		{"missing header", "", http.StatusUnauthorized, `{"error":"Authorization header required"}`},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, `{"error":"Authorization header format must be Bearer {token}"}`},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, `{"error":"Token has expired"}`},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized, `{"error":"Invalid token"}`},
	}

	r := authRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
