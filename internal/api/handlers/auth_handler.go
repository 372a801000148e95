package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
	"github.com/PicassoPreem-86/subletly-sub000/internal/auth"
	"github.com/PicassoPreem-86/subletly-sub000/internal/config"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
)

// AuthHandler handles signup, login and session endpoints.
type AuthHandler struct {
	cfg         *config.Config
	userService services.IUserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, userService services.IUserService) *AuthHandler {
	return &AuthHandler{cfg: cfg, userService: userService}
}

// SignupRequest is the request body for POST /v1/auth/signup.
type SignupRequest struct {
	Email       string             `json:"email" binding:"required,email"`
	Password    string             `json:"password" binding:"required,min=8,max=72"`
	FirstName   string             `json:"firstName" binding:"required,max=100"`
	LastName    string             `json:"lastName" binding:"required,max=100"`
	AccountType models.AccountType `json:"accountType" binding:"required,oneof=RENTER LANDLORD"`
}

// Signup handles POST /v1/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		AccountType: req.AccountType,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account of this type already exists for this email"})
			return
		}
		log.Printf("Error registering user %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// LoginRequest is the request body for POST /v1/auth/login.
type LoginRequest struct {
	Email       string             `json:"email" binding:"required,email"`
	Password    string             `json:"password" binding:"required"`
	AccountType models.AccountType `json:"accountType" binding:"required,oneof=RENTER LANDLORD"`
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.AccountType, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Error authenticating user %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /v1/auth/logout by clearing the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}

// Me handles GET /v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.FindByID(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// Session references a user that no longer exists.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session no longer valid"})
			return
		}
		log.Printf("Error loading session user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// startSession issues a session token and sets the cookie. Returns false if
// the 500 response was already written.
func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	token, err := auth.GenerateSessionToken(user, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		log.Printf("Error generating session token for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, token, int(h.cfg.JwtTTL.Seconds()), "/", "", false, true)
	return true
}
