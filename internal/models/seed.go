package models

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"
)

// Seed creates the sample instructor account used for first-run logins if it
// does not exist yet. Safe to run on every startup.
func Seed(db *gorm.DB, log *slog.Logger) error {
	const email = "instructor@example.com"

	var existing User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Info("sample instructor already exists", "email", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	instructor := User{
		FirstName:   "Sample",
		LastName:    "Instructor",
		Email:       email,
		PhoneNumber: "0000000000",
		Address:     "123, Address",
		Role:        RoleInstructor,
	}
	if err := instructor.SetPassword("12345678"); err != nil {
		return err
	}
	if err := db.Create(&instructor).Error; err != nil {
		return err
	}

	log.Info("created sample instructor", "email", email, "id", instructor.ID)
	return nil
}
