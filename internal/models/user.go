package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
	RoleAdmin      Role = "ADMIN"
)

// DefaultRole is assigned on registration when no role id is supplied.
const DefaultRole = RoleInstructor

// roleIDs maps the numeric role ids accepted on the wire to the closed role
// set. The ids follow the seeding order of the roles table this schema
// replaced: INSTRUCTOR first, then STUDENT, with ADMIN reserved.
var roleIDs = map[int64]Role{
	1: RoleInstructor,
	2: RoleStudent,
	3: RoleAdmin,
}

// RoleFromID resolves a numeric role id to a Role.
func RoleFromID(id int64) (Role, error) {
	role, ok := roleIDs[id]
	if !ok {
		return "", fmt.Errorf("role not found with id: %d", id)
	}
	return role, nil
}

// User represents a user account in the system
type User struct {
	BaseModel
	Email       string `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Password    string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName   string `gorm:"size:100" json:"firstName"`
	LastName    string `gorm:"size:100" json:"lastName"`
	Role        Role   `gorm:"size:20;default:'INSTRUCTOR'" json:"role"`
	PhoneNumber string `gorm:"size:20" json:"phoneNumber,omitempty"`
	Address     string `gorm:"size:255" json:"address,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken  `gorm:"foreignKey:UserID" json:"-"`
	Courses       []Course        `gorm:"foreignKey:InstructorID" json:"-"`
	Uploads       []CourseContent `gorm:"foreignKey:UploadedByID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Role        Role      `json:"role"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
