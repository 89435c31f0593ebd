package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenRouter(oauthService *OAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", oauthService.HandleToken)
	return router
}

func postToken(router *gin.Engine, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)

	owner := &models.User{Username: "chef", Name: "Chef", PasswordHash: "x", Role: models.RoleChief}
	require.NoError(t, db.Create(owner).Error)
	createClient(t, db, "test_client_id", "test_secret", owner.ID)

	w := postToken(tokenRouter(oauthService), "grant_type=client_credentials&client_id=test_client_id&client_secret=test_secret&scope=read")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bearer", response["token_type"])
	assert.Equal(t, float64(3600), response["expires_in"])

	claims := parseClaims(t, response["access_token"].(string))
	assert.Equal(t, models.RoleChief, claims["role"])
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)

	owner := &models.User{Username: "chef", PasswordHash: "x", Role: models.RoleChief}
	require.NoError(t, db.Create(owner).Error)
	createClient(t, db, "test_client_id", "correct_secret", owner.ID)

	w := postToken(tokenRouter(oauthService), "grant_type=client_credentials&client_id=test_client_id&client_secret=wrong_secret")
	assert.True(t, w.Code >= 400)
	assert.NotContains(t, w.Body.String(), "access_token")
}

func TestTokenEndpointRejectsOtherGrants(t *testing.T) {
	db := setupTestDB(t)
	router := tokenRouter(NewOAuthService(db, testSecret, time.Hour))

	w := postToken(router, "grant_type=password&username=a&password=b")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrUnsupportedGrantType)

	w = postToken(router, "grant_type=client_credentials")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrInvalidRequest)
}
