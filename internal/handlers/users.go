package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"course-management-server/internal/middleware"
	"course-management-server/internal/models"
	"course-management-server/internal/token"
	"course-management-server/internal/utils"
)

// UserHandler handles user management requests.
type UserHandler struct {
	DB     *gorm.DB
	Ledger *token.Ledger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, ledger *token.Ledger) *UserHandler {
	return &UserHandler{DB: db, Ledger: ledger}
}

// GetMe handles fetching the currently authenticated user's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	c.JSON(200, user.Sanitize())
}

// UpdateUserRequest represents the request body for profile updates. Email
// and role changes are not part of the profile path.
type UpdateUserRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// UpdateMe handles updating the currently authenticated user's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	h.updateUser(c, userID)
}

// CreateUserRequest represents the admin request body for creating a user.
type CreateUserRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Role        string `json:"role" binding:"required,oneof=INSTRUCTOR STUDENT ADMIN"`
}

// CreateUser handles creating a user directly. Admin only.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Role:        models.Role(req.Role),
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	c.JSON(201, user.Sanitize())
}

// GetUsers handles listing all users. Admin only.
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at desc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitize())
	}

	c.JSON(200, sanitized)
}

// GetUserByID handles fetching a single user. Admin only.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	c.JSON(200, user.Sanitize())
}

// GetUserByEmail handles fetching a single user by email. Admin only.
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	var user models.User
	if err := h.DB.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	c.JSON(200, user.Sanitize())
}

// UpdateUser handles updating a user by id. Admin only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	h.updateUser(c, c.Param("id"))
}

func (h *UserHandler) updateUser(c *gin.Context, userID string) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	c.JSON(200, user.Sanitize())
}

// DeleteUser handles deleting a user by id. Admin only. Any outstanding
// refresh tokens are revoked first so the deleted account cannot keep
// refreshing its session.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.Ledger.RevokeAll(user.ID); err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh tokens: "+err.Error())
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	c.Status(204)
}
