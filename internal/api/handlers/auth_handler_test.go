package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/handlers"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
)

func authTestRouter(svc *MockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewAuthHandler(testConfig(), svc)

	r := gin.New()
	r.POST("/v1/auth/signup", handler.Signup)
	r.POST("/v1/auth/login", handler.Login)
	r.POST("/v1/auth/logout", handler.Logout)
	r.GET("/v1/auth/me", asUser("user-1", models.AccountTypeRenter), handler.Me)
	return r
}

func sessionCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	user := &models.User{ID: "user-1", Email: "ana@example.com", AccountType: models.AccountTypeRenter, FirstName: "Ana", LastName: "Lopez"}
	mockSvc.On("Register", mock.Anything, services.RegisterInput{
		Email:       "ana@example.com",
		Password:    "s3cretpass",
		FirstName:   "Ana",
		LastName:    "Lopez",
		AccountType: models.AccountTypeRenter,
	}).Return(user, nil)

	body := `{"email":"ana@example.com","password":"s3cretpass","firstName":"Ana","lastName":"Lopez","accountType":"RENTER"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(w, "subletly_session")
	assert.NotNil(t, cookie, "signup starts a session")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var respBody struct {
		User models.User `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "ana@example.com", respBody.User.Email)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	// Short password and an unknown account type.
	body := `{"email":"ana@example.com","password":"short","firstName":"Ana","lastName":"Lopez","accountType":"ADMIN"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var respBody struct {
		Error   string `json:"error"`
		Details []struct {
			Field string `json:"field"`
			Issue string `json:"issue"`
		} `json:"details"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "Validation failed", respBody.Error)
	assert.NotEmpty(t, respBody.Details)
	mockSvc.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Signup_EmailExists(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrEmailExists)

	body := `{"email":"dup@example.com","password":"s3cretpass","firstName":"Ana","lastName":"Lopez","accountType":"RENTER"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Nil(t, sessionCookie(w, "subletly_session"))
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	user := &models.User{ID: "user-1", Email: "ana@example.com", AccountType: models.AccountTypeLandlord}
	mockSvc.On("Authenticate", mock.Anything, "ana@example.com", models.AccountTypeLandlord, "s3cretpass").Return(user, nil)

	body := `{"email":"ana@example.com","password":"s3cretpass","accountType":"LANDLORD"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, sessionCookie(w, "subletly_session"))
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	mockSvc.On("Authenticate", mock.Anything, "ana@example.com", models.AccountTypeRenter, "wrong").Return(nil, services.ErrInvalidCredentials)

	body := `{"email":"ana@example.com","password":"wrong","accountType":"RENTER"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w, "subletly_session"))
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/logout", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w, "subletly_session")
	assert.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestAuthHandler_Me(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	user := &models.User{ID: "user-1", Email: "ana@example.com", AccountType: models.AccountTypeRenter}
	mockSvc.On("FindByID", mock.Anything, "user-1").Return(user, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/auth/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		User models.User `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "user-1", respBody.User.ID)
}

func TestAuthHandler_Me_UserGone(t *testing.T) {
	mockSvc := new(MockUserService)
	r := authTestRouter(mockSvc)

	mockSvc.On("FindByID", mock.Anything, "user-1").Return(nil, services.ErrNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/auth/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
