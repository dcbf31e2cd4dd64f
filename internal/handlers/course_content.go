package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"course-management-server/internal/middleware"
	"course-management-server/internal/models"
	"course-management-server/internal/storage"
	"course-management-server/internal/utils"
)

// CourseContentHandler handles course content upload, download and metadata
// requests.
type CourseContentHandler struct {
	DB    *gorm.DB
	Store *storage.Store
}

// NewCourseContentHandler creates a new CourseContentHandler.
func NewCourseContentHandler(db *gorm.DB, store *storage.Store) *CourseContentHandler {
	return &CourseContentHandler{DB: db, Store: store}
}

// ContentResponse represents content metadata in API responses. The on-disk
// path never leaves the server.
type ContentResponse struct {
	ID                 string `json:"id"`
	FileName           string `json:"fileName"`
	FileType           string `json:"fileType"`
	FileSize           int64  `json:"fileSize"`
	CourseID           string `json:"courseId"`
	CourseName         string `json:"courseName,omitempty"`
	UploadedByUserID   string `json:"uploadedByUserId"`
	UploadedByUserName string `json:"uploadedByUserName,omitempty"`
	UploadDate         string `json:"uploadDate"`
}

func contentResponse(content models.CourseContent) ContentResponse {
	resp := ContentResponse{
		ID:               content.ID,
		FileName:         content.FileName,
		FileType:         content.FileType,
		FileSize:         content.FileSize,
		CourseID:         content.CourseID,
		UploadedByUserID: content.UploadedByID,
		UploadDate:       content.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if content.Course.ID != "" {
		resp.CourseName = content.Course.CourseName
	}
	if content.UploadedBy.ID != "" {
		resp.UploadedByUserName = content.UploadedBy.FullName()
	}
	return resp
}

// Upload handles a multipart file upload for a course. Instructors and admins
// only. Form fields: "file" and "courseId".
func (h *CourseContentHandler) Upload(c *gin.Context) {
	courseID := c.PostForm("courseId")
	if courseID == "" {
		utils.BadRequest(c, "courseId form field is required")
		return
	}

	var course models.Course
	if err := h.DB.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Course not found with id: "+courseID)
		} else {
			utils.InternalServerError(c, "Database error verifying course: "+err.Error())
		}
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "Error retrieving file from form: "+err.Error())
		return
	}

	if err := h.Store.Validate(header); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	relPath, err := h.Store.Save(header, course.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to store file: "+err.Error())
		return
	}

	content := models.CourseContent{
		FileName:     header.Filename,
		FilePath:     relPath,
		FileType:     header.Header.Get("Content-Type"),
		FileSize:     header.Size,
		CourseID:     course.ID,
		UploadedByID: userID,
	}
	if err := h.DB.Create(&content).Error; err != nil {
		// Keep disk and metadata consistent when the insert fails.
		h.Store.Remove(relPath)
		utils.InternalServerError(c, "Failed to save content metadata: "+err.Error())
		return
	}

	content.Course = course
	c.JSON(201, contentResponse(content))
}

// GetByID handles fetching content metadata by id.
func (h *CourseContentHandler) GetByID(c *gin.Context) {
	content, ok := h.findContent(c, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(200, contentResponse(*content))
}

// GetByCourse handles listing non-deleted content of a course.
func (h *CourseContentHandler) GetByCourse(c *gin.Context) {
	var contents []models.CourseContent
	err := h.DB.Preload("Course").Preload("UploadedBy").
		Where("course_id = ? AND is_deleted = ?", c.Param("courseId"), false).
		Order("created_at desc").Find(&contents).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch course contents: "+err.Error())
		return
	}

	c.JSON(200, contentResponses(contents))
}

// GetByUser handles listing non-deleted content uploaded by a user.
func (h *CourseContentHandler) GetByUser(c *gin.Context) {
	var contents []models.CourseContent
	err := h.DB.Preload("Course").Preload("UploadedBy").
		Where("uploaded_by_id = ? AND is_deleted = ?", c.Param("userId"), false).
		Order("created_at desc").Find(&contents).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch user contents: "+err.Error())
		return
	}

	c.JSON(200, contentResponses(contents))
}

// Download handles serving the stored file as an attachment.
func (h *CourseContentHandler) Download(c *gin.Context) {
	content, ok := h.findContent(c, c.Param("id"))
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", content.FileName))
	c.Header("Content-Type", content.FileType)
	c.File(h.Store.Path(content.FilePath))
}

// Delete handles soft-deleting content and removing its file from disk.
// Instructors and admins only.
func (h *CourseContentHandler) Delete(c *gin.Context) {
	content, ok := h.findContent(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.Store.Remove(content.FilePath); err != nil {
		utils.InternalServerError(c, "Failed to remove file: "+err.Error())
		return
	}

	content.IsDeleted = true
	if err := h.DB.Save(content).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete content: "+err.Error())
		return
	}

	c.Status(204)
}

func (h *CourseContentHandler) findContent(c *gin.Context, id string) (*models.CourseContent, bool) {
	var content models.CourseContent
	err := h.DB.Preload("Course").Preload("UploadedBy").
		Where("is_deleted = ?", false).
		First(&content, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Content not found with id: "+id)
		} else {
			utils.InternalServerError(c, "Database error fetching content: "+err.Error())
		}
		return nil, false
	}
	return &content, true
}

func contentResponses(contents []models.CourseContent) []ContentResponse {
	responses := make([]ContentResponse, 0, len(contents))
	for i := range contents {
		responses = append(responses, contentResponse(contents[i]))
	}
	return responses
}
