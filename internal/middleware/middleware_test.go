package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func validClaims(role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"uid":  "7",
		"role": role,
		"name": "Priya",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

func newRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/secure", OAuth2Auth(testSecret), RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": CurrentUserID(c),
			"role":    CurrentRole(c),
			"name":    CurrentUserName(c),
		})
	})
	return router
}

func TestOAuth2AuthAcceptsValidToken(t *testing.T) {
	router := newRouter(models.RoleChief, models.RoleManager)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(models.RoleChief)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"chief","name":"Priya"}`, w.Body.String())
}

func TestOAuth2AuthQueryToken(t *testing.T) {
	router := newRouter(models.RoleManager)

	req := httptest.NewRequest(http.MethodGet, "/secure?access_token="+signToken(t, validClaims("stakeholder")), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "stakeholder tokens act as manager")
}

func TestOAuth2AuthRejections(t *testing.T) {
	router := newRouter(models.RoleManager)

	expired := validClaims(models.RoleManager)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noUID := validClaims(models.RoleManager)
	delete(noUID, "uid")

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "authorization_required"},
		{"wrong scheme", "Basic abc", "invalid_request"},
		{"garbage token", "Bearer not-a-jwt", "invalid_token"},
		{"expired", "Bearer " + signToken(t, expired), "invalid_token"},
		{"no uid", "Bearer " + signToken(t, noUID), "invalid_token"},
		{"unknown role", "Bearer " + signToken(t, validClaims("admin")), "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestOAuth2AuthSetsClientID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/client", OAuth2Auth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client_id": c.GetString(ContextClientID), "auth_type": c.GetString("auth_type")})
	})

	tests := []struct {
		name string
		aud  interface{}
	}{
		{"string audience", "pos-terminal"},
		{"audience list", []string{"pos-terminal", "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims(models.RoleReceptionist)
			claims["aud"] = tt.aud

			req := httptest.NewRequest(http.MethodGet, "/client", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"client_id":"pos-terminal","auth_type":"oauth2"}`, w.Body.String())
		})
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	router := newRouter(models.RoleManager)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(models.RoleReceptionist)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrForbidden)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "abc-123", hook.LastEntry().Data["request_id"])
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"https://pos.example.com"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://pos.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://pos.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
