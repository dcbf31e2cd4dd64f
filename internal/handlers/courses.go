package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"course-management-server/internal/middleware"
	"course-management-server/internal/models"
	"course-management-server/internal/utils"
)

// CourseHandler handles course CRUD requests.
type CourseHandler struct {
	DB *gorm.DB
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{DB: db}
}

// CourseRequest represents the request body for creating or updating a course.
type CourseRequest struct {
	CourseName   string `json:"courseName" binding:"required"`
	CourseCode   string `json:"courseCode" binding:"required"`
	Description  string `json:"description"`
	InstructorID string `json:"instructorId" binding:"required,uuid"`
}

// CourseResponse represents a course in API responses.
type CourseResponse struct {
	models.Course
	InstructorName string `json:"instructorName"`
}

func courseResponse(course models.Course, instructor models.User) CourseResponse {
	return CourseResponse{Course: course, InstructorName: instructor.FullName()}
}

// CreateCourse handles creating a new course. Instructors and admins only.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CourseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Course codes are unique across the system
	var existing models.Course
	if err := h.DB.Where("course_code = ?", req.CourseCode).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Course with code "+req.CourseCode+" already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	var instructor models.User
	if err := h.DB.First(&instructor, "id = ?", req.InstructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Instructor not found with id: "+req.InstructorID)
		} else {
			utils.InternalServerError(c, "Database error verifying instructor: "+err.Error())
		}
		return
	}

	course := models.Course{
		CourseName:   req.CourseName,
		CourseCode:   req.CourseCode,
		Description:  req.Description,
		InstructorID: instructor.ID,
	}
	if err := h.DB.Create(&course).Error; err != nil {
		utils.InternalServerError(c, "Failed to create course: "+err.Error())
		return
	}

	c.JSON(201, courseResponse(course, instructor))
}

// GetCourses handles listing all courses.
func (h *CourseHandler) GetCourses(c *gin.Context) {
	var courses []models.Course
	if err := h.DB.Preload("Instructor").Order("created_at desc").Find(&courses).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch courses: "+err.Error())
		return
	}

	responses := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		responses = append(responses, courseResponse(courses[i], courses[i].Instructor))
	}

	c.JSON(200, responses)
}

// GetCourseByID handles fetching a single course with its non-deleted contents.
func (h *CourseHandler) GetCourseByID(c *gin.Context) {
	var course models.Course
	err := h.DB.Preload("Instructor").
		Preload("Contents", "is_deleted = ?", false).
		First(&course, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Course not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	c.JSON(200, courseResponse(course, course.Instructor))
}

// GetCoursesByInstructor handles listing all courses of one instructor.
func (h *CourseHandler) GetCoursesByInstructor(c *gin.Context) {
	var courses []models.Course
	err := h.DB.Preload("Instructor").
		Where("instructor_id = ?", c.Param("instructorId")).
		Order("created_at desc").Find(&courses).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch courses: "+err.Error())
		return
	}

	responses := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		responses = append(responses, courseResponse(courses[i], courses[i].Instructor))
	}

	c.JSON(200, responses)
}

// UpdateCourse handles updating an existing course. Instructors and admins only.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req CourseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var course models.Course
	if err := h.DB.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Course not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if course.CourseCode != req.CourseCode {
		var existing models.Course
		if err := h.DB.Where("course_code = ?", req.CourseCode).First(&existing).Error; err == nil {
			utils.BadRequest(c, "Course with code "+req.CourseCode+" already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}

	var instructor models.User
	if err := h.DB.First(&instructor, "id = ?", req.InstructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Instructor not found with id: "+req.InstructorID)
		} else {
			utils.InternalServerError(c, "Database error verifying instructor: "+err.Error())
		}
		return
	}

	course.CourseName = req.CourseName
	course.CourseCode = req.CourseCode
	course.Description = req.Description
	course.InstructorID = instructor.ID

	if err := h.DB.Save(&course).Error; err != nil {
		utils.InternalServerError(c, "Failed to update course: "+err.Error())
		return
	}

	c.JSON(200, courseResponse(course, instructor))
}

// DeleteCourse handles deleting a course. Admins can delete any course,
// instructors only their own.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	var course models.Course
	if err := h.DB.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Course not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	isAdmin := role == models.RoleAdmin
	isOwner := role == models.RoleInstructor && userID == course.InstructorID
	if !isAdmin && !isOwner {
		utils.Forbidden(c, "You are not authorized to delete this course")
		return
	}

	if err := h.DB.Delete(&course).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete course: "+err.Error())
		return
	}

	c.Status(204)
}
