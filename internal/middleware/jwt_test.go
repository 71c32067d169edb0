package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
	"github.com/edukit/academia-api/internal/service"
	"github.com/edukit/academia-api/pkg/config"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, secret string, role models.UserRole, expiresIn time.Duration) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID:   "user-1",
		Username: "tester",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func buildProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(nil, config.JWTConfig{Secret: testSecret, Expiration: time.Hour}, nil, nil)

	r := gin.New()
	secured := r.Group("", JWT(authSvc))
	secured.GET("/anyone", func(c *gin.Context) {
		claims, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": claims.Username})
	})
	secured.GET("/admin-only", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := buildProtectedRouter()

	resp := doRequest(r, "/anyone", "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/anyone", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAcceptsValidToken(t *testing.T) {
	r := buildProtectedRouter()

	token := signToken(t, testSecret, models.RoleTeacher, time.Hour)
	resp := doRequest(r, "/anyone", token)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "tester")
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	r := buildProtectedRouter()

	expired := signToken(t, testSecret, models.RoleAdmin, -time.Minute)
	require.Equal(t, http.StatusUnauthorized, doRequest(r, "/anyone", expired).Code)

	foreign := signToken(t, "some-other-secret", models.RoleAdmin, time.Hour)
	require.Equal(t, http.StatusUnauthorized, doRequest(r, "/anyone", foreign).Code)
}

func TestRequireRolesEnforcesRole(t *testing.T) {
	r := buildProtectedRouter()

	teacher := signToken(t, testSecret, models.RoleTeacher, time.Hour)
	require.Equal(t, http.StatusForbidden, doRequest(r, "/admin-only", teacher).Code)

	admin := signToken(t, testSecret, models.RoleAdmin, time.Hour)
	require.Equal(t, http.StatusOK, doRequest(r, "/admin-only", admin).Code)
}
