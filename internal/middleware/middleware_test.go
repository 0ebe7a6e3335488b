package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/toolhatch-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		id, _ := utils.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "is_admin": c.GetBool("is_admin")})
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, userID uint, isAdmin bool) string {
	t.Helper()
	token, err := utils.GenerateJWT(userID, "tester", isAdmin, 1)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	r := protectedEngine()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, 12, false))
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":12,"is_admin":false}`, w.Body.String())
}

func TestAdminRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	r := protectedEngine()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, 3, false))
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, 1, true))
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4000"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Second), 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.getVisitor("10.0.0.1")
	now = now.Add(visitorTTL + time.Second)
	rl.getVisitor("10.0.0.2")
	rl.cleanupVisitors()

	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetRequestIDFromContext(c))
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	requestID := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(requestID)
	require.NoError(t, err)
	assert.Equal(t, requestID, w.Body.String())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, requestID, entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = serve(r, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:5173"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
