package handler

import (
	"net/http"

	"anoa.com/courseplatform/internal/modules/enrollment/dto"
	enrollment "anoa.com/courseplatform/internal/modules/enrollment/service"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	service enrollment.EnrollmentService
}

func NewEnrollmentHandler(service enrollment.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// @Summary Enroll in a course
// @Description user_id defaults to the caller. Enrolling someone else requires the admin role.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollRequest true "Course and optional user"
// @Success 201 {object} dto.EnrollmentResponse "Created enrollment"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Only admins may enroll others"
// @Failure 404 {object} response.ErrorResponse "Course or user not found"
// @Failure 409 {object} response.ErrorResponse "Already enrolled"
// @Router /api/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.Enroll(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Location", "/api/enrollments/"+res.ID.String())
	c.JSON(http.StatusCreated, res)
}

// @Summary List a user's enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID" format(uuid)
// @Success 200 {object} map[string][]dto.EnrollmentResponse "Enrollments"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not yourself and not an admin"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Router /api/enrollments/user/{user_id} [get]
func (h *EnrollmentHandler) GetUserEnrollments(c *gin.Context) {
	targetID, ok := response.ParseUUIDParam(c, "user_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	enrollments, err := h.service.GetUserEnrollments(c.Request.Context(), userID, targetID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

// @Summary List a course's enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID" format(uuid)
// @Success 200 {object} map[string][]dto.EnrollmentResponse "Enrollments"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Course not found"
// @Router /api/enrollments/course/{course_id} [get]
func (h *EnrollmentHandler) GetCourseEnrollments(c *gin.Context) {
	courseID, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	enrollments, err := h.service.GetCourseEnrollments(c.Request.Context(), userID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

// @Summary Get an enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param enrollment_id path string true "Enrollment ID" format(uuid)
// @Success 200 {object} dto.EnrollmentResponse "Enrollment"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not your enrollment"
// @Failure 404 {object} response.ErrorResponse "Enrollment not found"
// @Router /api/enrollments/{enrollment_id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "enrollment_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetEnrollment(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Complete a lesson
// @Description Records the lesson as completed, recomputes the progress percentage and sets the last watched lesson.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param enrollment_id path string true "Enrollment ID" format(uuid)
// @Param request body dto.UpdateProgressRequest true "Completed lesson"
// @Success 200 {object} dto.EnrollmentResponse "Enrollment with new progress"
// @Failure 400 {object} response.ErrorResponse "Lesson belongs to another course"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not your enrollment"
// @Failure 404 {object} response.ErrorResponse "Enrollment or lesson not found"
// @Router /api/enrollments/{enrollment_id}/progress [put]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "enrollment_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateProgress(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Unenroll
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param enrollment_id path string true "Enrollment ID" format(uuid)
// @Success 204
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not your enrollment"
// @Failure 404 {object} response.ErrorResponse "Enrollment not found"
// @Router /api/enrollments/{enrollment_id} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "enrollment_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
