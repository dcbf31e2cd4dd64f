package models

// CourseContent represents an uploaded file (document, video or image)
// belonging to a course. The file itself lives on the filesystem; this row
// only carries its metadata and the path relative to the upload directory.
type CourseContent struct {
	BaseModel
	FileName     string `gorm:"size:255;not null" json:"fileName"`
	FilePath     string `gorm:"size:255;not null" json:"-"`
	FileType     string `gorm:"size:50;not null" json:"fileType"`
	FileSize     int64  `gorm:"not null" json:"fileSize"`
	CourseID     string `gorm:"size:36;index;not null" json:"courseId"`
	UploadedByID string `gorm:"size:36;index;not null" json:"uploadedByUserId"`
	IsDeleted    bool   `gorm:"default:false" json:"-"`

	// Relations
	Course     Course `gorm:"foreignKey:CourseID" json:"-"`
	UploadedBy User   `gorm:"foreignKey:UploadedByID" json:"-"`
}
