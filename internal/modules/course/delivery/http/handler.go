package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/courseplatform/internal/modules/course/dto"
	course "anoa.com/courseplatform/internal/modules/course/service"
	commonDto "anoa.com/courseplatform/pkg/dto"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxThumbnailSize = 5 << 20

var allowedThumbnailExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type CourseHandler struct {
	service course.Service
}

func NewCourseHandler(service course.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

// @Summary Create a course
// @Description The instructor defaults to the caller. Only admins may name another instructor.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.CourseResponse "Created course"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Instructor or admin role required"
// @Failure 404 {object} response.ErrorResponse "Category or instructor not found"
// @Failure 409 {object} response.ErrorResponse "Title already taken"
// @Router /api/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.CreateCourse(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary List courses
// @Tags courses
// @Produce json
// @Param page query integer false "Page number, starting at 1"
// @Param limit query integer false "Page size (max 100)"
// @Param category_id query string false "Filter by category" format(uuid)
// @Param published query boolean false "Filter by published flag"
// @Param search query string false "Match on title or description"
// @Success 200 {object} dto.PaginatedCourseResponse "One page of courses"
// @Failure 400 {object} response.ErrorResponse "Invalid query"
// @Router /api/courses [get]
func (h *CourseHandler) GetCourses(c *gin.Context) {
	var filter dto.CourseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.GetCourses(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Get a course
// @Tags courses
// @Produce json
// @Param course_id path string true "Course ID" format(uuid)
// @Success 200 {object} dto.CourseResponse "Course with lesson count"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Course not found"
// @Router /api/courses/{course_id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}

	res, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID" format(uuid)
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.CourseResponse "Updated course"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Course not found"
// @Failure 409 {object} response.ErrorResponse "Title already taken"
// @Router /api/courses/{course_id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateCourse(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID" format(uuid)
// @Success 204
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Course not found"
// @Failure 409 {object} response.ErrorResponse "Course still has modules"
// @Router /api/courses/{course_id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Upload a course thumbnail
// @Tags courses
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID" format(uuid)
// @Param thumbnail formData file true "jpg, png or webp image up to 5MB"
// @Success 200 {object} dto.CourseResponse "Course with the new thumbnail"
// @Failure 400 {object} response.ErrorResponse "Missing or invalid image"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Course not found"
// @Failure 503 {object} response.ErrorResponse "Image storage is not configured"
// @Router /api/courses/{course_id}/thumbnail [post]
func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail file is required"})
		return
	}
	if fileHeader.Size > maxThumbnailSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail must be at most 5MB"})
		return
	}
	if !allowedThumbnailExt[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail must be a jpg, png or webp image"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read thumbnail"})
		return
	}
	defer file.Close()

	res, err := h.service.UploadThumbnail(c.Request.Context(), userID, id, commonDto.ImageFile{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
