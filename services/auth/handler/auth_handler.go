package handler

import (
	"fmt"
	"net/http"
	"strings"

	model "voicebid/internal/models"
	"voicebid/services/auction/helpers"
	"voicebid/utils"

	"github.com/gin-gonic/gin"
)

type AuthServiceInterface interface {
	Signup(username, email, password string) (model.Profile, string, error)
	Login(username, password string) (model.Profile, string, error)
	Logout(token string) error
}

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

func newAuthResponse(p model.Profile, token string) AuthResponse {
	return AuthResponse{
		Token: token,
		Profile: ProfileResponse{
			UserID:   p.UserID,
			Username: p.Username,
			Email:    p.Email,
		},
	}
}

// SignupHandler handles POST /auth/signup
func (h *AuthHandler) SignupHandler(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SignupHandler", err)
		return
	}

	profile, token, err := h.service.Signup(req.Username, req.Email, req.Password)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("SignupHandler: signup failed", map[string]any{"username": req.Username, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, newAuthResponse(profile, token), "signup successful")
	helpers.LogSuccess("SignupHandler", "signup successful", map[string]any{
		"user_id":  profile.UserID,
		"username": profile.Username,
	})
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	profile, token, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("LoginHandler: login failed", map[string]any{"username": req.Username, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, newAuthResponse(profile, token), "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{
		"user_id":  profile.UserID,
		"username": profile.Username,
	})
}

// LogoutHandler handles POST /auth/logout. The auth middleware has already
// validated the token; here it is only invalidated.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))

	if err := h.service.Logout(token); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("LogoutHandler: logout failed", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "logged out successfully")
}

// MeHandler handles GET /auth/me
func (h *AuthHandler) MeHandler(c *gin.Context) {
	profile, ok := helpers.CallerProfile(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, fmt.Errorf("no profile in context"), "not authenticated")
		return
	}

	utils.JSONResponse(c, http.StatusOK, ProfileResponse{
		UserID:   profile.UserID,
		Username: profile.Username,
		Email:    profile.Email,
	}, "profile retrieved successfully")
}
