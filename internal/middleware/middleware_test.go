package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekly-attendance-api/internal/models"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	v.token = token
	return v.claims, v.err
}

type observerStub struct {
	method string
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.method, o.path, o.status = method, path, status
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, claims)
	})
	r.GET("/submissions/:id", handlers...)
	return r
}

func perform(r http.Handler, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/submissions/abc", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMissingHeader(t *testing.T) {
	w := perform(newRouter(JWT(&validatorStub{})), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	stub := &validatorStub{}
	w := perform(newRouter(JWT(stub)), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, stub.token)
}

func TestJWTInvalidToken(t *testing.T) {
	w := perform(newRouter(JWT(&validatorStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")})), "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTValidToken(t *testing.T) {
	stub := &validatorStub{claims: &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent}}
	w := perform(newRouter(JWT(stub)), "bearer  good-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "good-token", stub.token)
	assert.Contains(t, w.Body.String(), "parent-1")
}

func TestRequireRoles(t *testing.T) {
	admin := &validatorStub{claims: &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}}
	parent := &validatorStub{claims: &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent}}

	w := perform(newRouter(JWT(admin), RequireRoles(models.RoleAdmin, models.RoleStaff)), "Bearer t")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(newRouter(JWT(parent), RequireRoles(models.RoleAdmin, models.RoleStaff)), "Bearer t")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(newRouter(RequireRoles(models.RoleAdmin)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &observerStub{}
	r := newRouter(Metrics(observer))
	perform(r, "")
	assert.Equal(t, http.MethodGet, observer.method)
	assert.Equal(t, "/submissions/:id", observer.path)
	assert.Equal(t, http.StatusOK, observer.status)

	w := httptest.NewRecorder()
	r.Use(Metrics(observer))
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, "unmatched", observer.path)
}
