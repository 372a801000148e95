package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
	"github.com/PicassoPreem-86/subletly-sub000/internal/auth"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

const (
	testSecret     = "test-secret"
	testCookieName = "subletly_session"
)

func authTestRouter(landlordOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", middleware.AuthMiddleware(testSecret, testCookieName))
	if landlordOnly {
		group.Use(middleware.LandlordMiddleware())
	}
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": middleware.CallerID(c)})
	})
	return r
}

func sessionTokenFor(t *testing.T, accountType models.AccountType) string {
	t.Helper()
	token, err := auth.GenerateSessionToken(&models.User{
		ID:          "user-1",
		AccountType: accountType,
		FirstName:   "Test",
		LastName:    "User",
	}, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	r := authTestRouter(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: sessionTokenFor(t, models.AccountTypeRenter)})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthMiddleware_BearerFallback(t *testing.T) {
	r := authTestRouter(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sessionTokenFor(t, models.AccountTypeRenter))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	r := authTestRouter(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	r := authTestRouter(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "not-a-token"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	r := authTestRouter(false)

	token, err := auth.GenerateSessionToken(&models.User{ID: "user-1", AccountType: models.AccountTypeRenter}, testSecret, -time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLandlordMiddleware(t *testing.T) {
	r := authTestRouter(true)

	// A renter session is rejected.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: sessionTokenFor(t, models.AccountTypeRenter)})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A landlord session passes.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: sessionTokenFor(t, models.AccountTypeLandlord)})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
