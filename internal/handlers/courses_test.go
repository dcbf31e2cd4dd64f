package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"course-management-server/internal/models"
)

// asUser stands in for the auth middleware in handler tests.
func asUser(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userEmail", "test@example.com")
		c.Set("userRole", role)
		c.Next()
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, user.SetPassword("pw123456"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func newCourseRouter(t *testing.T, db *gorm.DB, userID string, role models.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewCourseHandler(db)
	router := gin.New()
	courses := router.Group("/api/courses", asUser(userID, role))
	courses.POST("", handler.CreateCourse)
	courses.GET("", handler.GetCourses)
	courses.GET("/:id", handler.GetCourseByID)
	courses.GET("/instructor/:instructorId", handler.GetCoursesByInstructor)
	courses.PUT("/:id", handler.UpdateCourse)
	courses.DELETE("/:id", handler.DeleteCourse)
	return router
}

func courseBody(instructorID, code string) map[string]string {
	return map[string]string{
		"courseName":   "Distributed Systems",
		"courseCode":   code,
		"description":  "Consensus and friends",
		"instructorId": instructorID,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCourseHandler_Create(t *testing.T) {
	db := initTestDB(t)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	router := newCourseRouter(t, db, instructor.ID, models.RoleInstructor)

	rec := doJSON(t, router, http.MethodPost, "/api/courses", courseBody(instructor.ID, "CS-501"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CourseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "CS-501", created.CourseCode)
	assert.Equal(t, instructor.ID, created.InstructorID)
	assert.Equal(t, "Test User", created.InstructorName)
	assert.NotEmpty(t, created.ID)

	// Duplicate course code is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/courses", courseBody(instructor.ID, "CS-501"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseHandler_Create_UnknownInstructor(t *testing.T) {
	db := initTestDB(t)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	router := newCourseRouter(t, db, instructor.ID, models.RoleInstructor)

	body := courseBody("9e2c5f40-0000-0000-0000-000000000009", "CS-502")
	rec := doJSON(t, router, http.MethodPost, "/api/courses", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseHandler_GetByID(t *testing.T) {
	db := initTestDB(t)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	router := newCourseRouter(t, db, instructor.ID, models.RoleInstructor)

	rec := doJSON(t, router, http.MethodPost, "/api/courses", courseBody(instructor.ID, "CS-503"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CourseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/api/courses/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/courses/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseHandler_ListByInstructor(t *testing.T) {
	db := initTestDB(t)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	other := createTestUser(t, db, "other@x.com", models.RoleInstructor)
	router := newCourseRouter(t, db, instructor.ID, models.RoleInstructor)

	require.Equal(t, http.StatusCreated,
		doJSON(t, router, http.MethodPost, "/api/courses", courseBody(instructor.ID, "CS-504")).Code)
	require.Equal(t, http.StatusCreated,
		doJSON(t, router, http.MethodPost, "/api/courses", courseBody(other.ID, "CS-505")).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/courses/instructor/"+instructor.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var courses []CourseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "CS-504", courses[0].CourseCode)
}

func TestCourseHandler_Update(t *testing.T) {
	db := initTestDB(t)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	router := newCourseRouter(t, db, instructor.ID, models.RoleInstructor)

	require.Equal(t, http.StatusCreated,
		doJSON(t, router, http.MethodPost, "/api/courses", courseBody(instructor.ID, "CS-506")).Code)
	rec := doJSON(t, router, http.MethodPost, "/api/courses", courseBody(instructor.ID, "CS-507"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CourseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Changing to an already-used code is rejected.
	rec = doJSON(t, router, http.MethodPut, "/api/courses/"+created.ID, courseBody(instructor.ID, "CS-506"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := courseBody(instructor.ID, "CS-507")
	body["courseName"] = "Advanced Distributed Systems"
	rec = doJSON(t, router, http.MethodPut, "/api/courses/"+created.ID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated CourseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Advanced Distributed Systems", updated.CourseName)
}

func TestCourseHandler_Delete_OwnerAndStranger(t *testing.T) {
	db := initTestDB(t)
	owner := createTestUser(t, db, "owner@x.com", models.RoleInstructor)
	stranger := createTestUser(t, db, "stranger@x.com", models.RoleInstructor)

	ownerRouter := newCourseRouter(t, db, owner.ID, models.RoleInstructor)
	strangerRouter := newCourseRouter(t, db, stranger.ID, models.RoleInstructor)

	rec := doJSON(t, ownerRouter, http.MethodPost, "/api/courses", courseBody(owner.ID, "CS-508"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CourseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// A different instructor cannot delete someone else's course.
	rec = doJSON(t, strangerRouter, http.MethodDelete, "/api/courses/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, ownerRouter, http.MethodDelete, "/api/courses/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, ownerRouter, http.MethodGet, "/api/courses/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseHandler_Delete_Admin(t *testing.T) {
	db := initTestDB(t)
	owner := createTestUser(t, db, "owner@x.com", models.RoleInstructor)
	admin := createTestUser(t, db, "admin@x.com", models.RoleAdmin)

	ownerRouter := newCourseRouter(t, db, owner.ID, models.RoleInstructor)
	adminRouter := newCourseRouter(t, db, admin.ID, models.RoleAdmin)

	rec := doJSON(t, ownerRouter, http.MethodPost, "/api/courses", courseBody(owner.ID, "CS-509"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CourseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, adminRouter, http.MethodDelete, "/api/courses/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
