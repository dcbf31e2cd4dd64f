package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"course-management-server/internal/models"
	"course-management-server/internal/storage"
)

func newContentRouter(t *testing.T, db *gorm.DB, store *storage.Store, userID string, role models.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewCourseContentHandler(db, store)
	router := gin.New()
	contents := router.Group("/api/course-content", asUser(userID, role))
	contents.POST("/upload", handler.Upload)
	contents.GET("/:id", handler.GetByID)
	contents.GET("/course/:courseId", handler.GetByCourse)
	contents.GET("/user/:userId", handler.GetByUser)
	contents.GET("/download/:id", handler.Download)
	contents.DELETE("/:id", handler.Delete)
	return router
}

func newTestStore(t *testing.T, maxBytes int64) *storage.Store {
	t.Helper()

	store, err := storage.NewStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return store
}

func createTestCourse(t *testing.T, db *gorm.DB, instructorID string) *models.Course {
	t.Helper()

	course := &models.Course{
		CourseName:   "Operating Systems",
		CourseCode:   "CS-301",
		InstructorID: instructorID,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func uploadRequest(t *testing.T, courseID, fileName, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("courseId", courseID))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/course-content/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestContentHandler_UploadAndDownload(t *testing.T) {
	db := initTestDB(t)
	store := newTestStore(t, 1<<20)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	course := createTestCourse(t, db, instructor.ID)
	router := newContentRouter(t, db, store, instructor.ID, models.RoleInstructor)

	fileData := []byte("%PDF-1.4 lecture notes")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "notes.pdf", "application/pdf", fileData))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var uploaded ContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, "notes.pdf", uploaded.FileName)
	assert.Equal(t, "application/pdf", uploaded.FileType)
	assert.EqualValues(t, len(fileData), uploaded.FileSize)
	assert.Equal(t, course.ID, uploaded.CourseID)
	assert.Equal(t, instructor.ID, uploaded.UploadedByUserID)
	assert.Equal(t, "Operating Systems", uploaded.CourseName)

	// The file landed under the course's directory.
	entries, err := os.ReadDir(filepath.Join(store.Dir, course.ID))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/course-content/download/"+uploaded.ID, nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fileData, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "notes.pdf")
}

func TestContentHandler_Upload_Validation(t *testing.T) {
	db := initTestDB(t)
	store := newTestStore(t, 16)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	course := createTestCourse(t, db, instructor.ID)
	router := newContentRouter(t, db, store, instructor.ID, models.RoleInstructor)

	// Disallowed type.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "malware.exe", "application/octet-stream", []byte("MZ")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Allowed MIME but disallowed extension.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "notes.txt", "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Over the size limit.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 64)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty file.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "empty.pdf", "application/pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown course.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "does-not-exist", "notes.pdf", "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentHandler_ListByCourseAndUser(t *testing.T) {
	db := initTestDB(t)
	store := newTestStore(t, 1<<20)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	course := createTestCourse(t, db, instructor.ID)
	router := newContentRouter(t, db, store, instructor.ID, models.RoleInstructor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "a.pdf", "application/pdf", []byte("%PDF a")))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "b.png", "image/png", []byte{0x89, 'P', 'N', 'G'}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/course-content/course/"+course.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var byCourse []ContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byCourse))
	assert.Len(t, byCourse, 2)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/course-content/user/"+instructor.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var byUser []ContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byUser))
	assert.Len(t, byUser, 2)
}

func TestContentHandler_Delete(t *testing.T) {
	db := initTestDB(t)
	store := newTestStore(t, 1<<20)
	instructor := createTestUser(t, db, "inst@x.com", models.RoleInstructor)
	course := createTestCourse(t, db, instructor.ID)
	router := newContentRouter(t, db, store, instructor.ID, models.RoleInstructor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, course.ID, "gone.pdf", "application/pdf", []byte("%PDF")))
	require.Equal(t, http.StatusCreated, rec.Code)
	var uploaded ContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/course-content/"+uploaded.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Soft-deleted content is no longer served.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/course-content/"+uploaded.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The file itself was removed from disk.
	entries, err := os.ReadDir(filepath.Join(store.Dir, course.ID))
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The row survives as a soft-deleted tombstone.
	var content models.CourseContent
	require.NoError(t, db.First(&content, "id = ?", uploaded.ID).Error)
	assert.True(t, content.IsDeleted)
}
