package models

// Course represents a course taught by an instructor
type Course struct {
	BaseModel
	CourseName   string `gorm:"size:200;not null" json:"courseName"`
	CourseCode   string `gorm:"uniqueIndex;size:20" json:"courseCode"`
	Description  string `gorm:"size:1000" json:"description"`
	InstructorID string `gorm:"size:36;index;not null" json:"instructorId"`

	// Relations
	Instructor User            `gorm:"foreignKey:InstructorID" json:"-"`
	Contents   []CourseContent `gorm:"foreignKey:CourseID" json:"contents,omitempty"`
}
