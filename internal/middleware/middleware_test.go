package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"uid":  "7",
		"role": models.RoleUser,
		"jti":  "token-7",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": CurrentUserID(c),
			"role":    c.GetString(ContextUserRole),
			"jti":     c.GetString(ContextTokenID),
			"admin":   IsAdmin(c),
		})
	})
	router.GET("/resource", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeOAuthError(t *testing.T, w *httptest.ResponseRecorder) models.OAuth2Error {
	t.Helper()
	var body models.OAuth2Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate_ValidToken(t *testing.T) {
	router := newRouter(Authenticate(testSecret, &fakeRevocations{}))

	for _, scheme := range []string{"Bearer ", "Token "} {
		w := doRequest(router, scheme+signToken(t, validClaims()))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(7), body["user_id"])
		assert.Equal(t, models.RoleUser, body["role"])
		assert.Equal(t, "token-7", body["jti"])
		assert.Equal(t, false, body["admin"])
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noUID := validClaims()
	delete(noUID, "uid")

	badRole := validClaims()
	badRole["role"] = "superuser"

	noExp := validClaims()
	delete(noExp, "exp")

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("other"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		header    string
		errorCode string
	}{
		{"missing header", "", "authorization_required"},
		{"wrong scheme", "Basic abc", "invalid_request"},
		{"empty token", "Bearer ", "invalid_token"},
		{"garbage", "Bearer not.a.jwt", "invalid_token"},
		{"wrong key", "Bearer " + otherKey, "invalid_token"},
		{"expired", "Bearer " + signToken(t, expired), "invalid_token"},
		{"no uid", "Bearer " + signToken(t, noUID), "invalid_token"},
		{"unknown role", "Bearer " + signToken(t, badRole), "invalid_token"},
		{"no exp", "Bearer " + signToken(t, noExp), "invalid_token"},
	}

	router := newRouter(Authenticate(testSecret, &fakeRevocations{}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.errorCode, decodeOAuthError(t, w).Error)
		})
	}
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	router := newRouter(Authenticate(testSecret, &fakeRevocations{revoked: map[string]bool{"token-7": true}}))

	w := doRequest(router, "Bearer "+signToken(t, validClaims()))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decodeOAuthError(t, w).ErrorDescription, "revoked")
}

func TestAuthenticate_RevocationLookupFails(t *testing.T) {
	router := newRouter(Authenticate(testSecret, &fakeRevocations{err: errors.New("db down")}))

	w := doRequest(router, "Bearer "+signToken(t, validClaims()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestOptionalAuthenticate(t *testing.T) {
	router := newRouter(OptionalAuthenticate(testSecret, &fakeRevocations{}))

	w := doRequest(router, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)

	w = doRequest(router, "Bearer "+signToken(t, validClaims()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)

	w = doRequest(router, "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := newRouter(Authenticate(testSecret, nil), RequireRole(models.RoleAdmin))

	w := doRequest(router, "Bearer "+signToken(t, validClaims()))
	assert.Equal(t, http.StatusForbidden, w.Code)
	var apiErr models.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, models.ErrForbidden, apiErr.Code)

	admin := validClaims()
	admin["role"] = models.RoleAdmin
	w = doRequest(router, "Bearer "+signToken(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":true`)
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	router := newRouter(RequireRole(models.RoleAdmin))

	w := doRequest(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsAndLogging(t *testing.T) {
	router := newRouter(RequestLogger(), Metrics())
	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/resource", "200"))

	w := doRequest(router, "")
	require.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/resource", "200"))
	assert.Equal(t, before+1, after)
}
