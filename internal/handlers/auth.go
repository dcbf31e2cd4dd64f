package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"course-management-server/internal/auth"
	"course-management-server/internal/token"
	"course-management-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Auth *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{Auth: authService}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	RoleID      *int64 `json:"roleId"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return // Error response handled by BindAndValidate
	}

	result, err := h.Auth.Register(auth.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		RoleID:      req.RoleID,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			utils.BadRequest(c, err.Error())
		case errors.Is(err, auth.ErrRoleNotFound):
			utils.NotFound(c, err.Error())
		default:
			utils.InternalServerError(c, "Failed to register user: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.Unauthorized(c, err.Error())
		} else {
			utils.InternalServerError(c, "Failed to login: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshTokenRequest represents the request body for token refresh and logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken handles minting a new access token from a refresh token. The
// refresh token string is echoed back unchanged.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.Auth.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenNotFound):
			utils.NotFound(c, err.Error())
		case errors.Is(err, token.ErrTokenRevoked), errors.Is(err, token.ErrTokenExpired):
			utils.Unauthorized(c, err.Error())
		default:
			utils.InternalServerError(c, "Failed to refresh token: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logout handles user logout by revoking the refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.Auth.Logout(req.RefreshToken); err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			utils.NotFound(c, err.Error())
		} else {
			utils.InternalServerError(c, "Failed to logout: "+err.Error())
		}
		return
	}

	c.Status(http.StatusNoContent)
}
