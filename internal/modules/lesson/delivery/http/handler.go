package handler

import (
	"net/http"

	"anoa.com/courseplatform/internal/modules/lesson/dto"
	lesson "anoa.com/courseplatform/internal/modules/lesson/service"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LessonHandler struct {
	service lesson.LessonService
}

func NewLessonHandler(service lesson.LessonService) *LessonHandler {
	return &LessonHandler{service: service}
}

// @Summary Create a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param module_id path string true "Module ID" format(uuid)
// @Param request body dto.CreateLessonRequest true "Lesson"
// @Success 201 {object} dto.LessonResponse "Created lesson"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Module not found"
// @Failure 409 {object} response.ErrorResponse "Title or order already taken"
// @Router /api/modules/{module_id}/lessons [post]
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	moduleID, ok := response.ParseUUIDParam(c, "module_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.CreateLesson(c.Request.Context(), userID, moduleID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary List module lessons
// @Tags lessons
// @Produce json
// @Param module_id path string true "Module ID" format(uuid)
// @Success 200 {object} map[string][]dto.LessonResponse "Lessons ordered by order_index"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Module not found"
// @Router /api/modules/{module_id}/lessons [get]
func (h *LessonHandler) GetLessons(c *gin.Context) {
	moduleID, ok := response.ParseUUIDParam(c, "module_id")
	if !ok {
		return
	}

	lessons, err := h.service.GetLessons(c.Request.Context(), moduleID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lessons})
}

// @Summary Get a lesson
// @Tags lessons
// @Produce json
// @Param module_id path string true "Module ID" format(uuid)
// @Param lesson_id path string true "Lesson ID" format(uuid)
// @Success 200 {object} dto.LessonResponse "Lesson"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Lesson not found in module"
// @Router /api/modules/{module_id}/lessons/{lesson_id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	moduleID, lessonID, ok := lessonParams(c)
	if !ok {
		return
	}

	res, err := h.service.GetLesson(c.Request.Context(), moduleID, lessonID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Update a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param module_id path string true "Module ID" format(uuid)
// @Param lesson_id path string true "Lesson ID" format(uuid)
// @Param request body dto.UpdateLessonRequest true "Fields to change"
// @Success 200 {object} dto.LessonResponse "Updated lesson"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Lesson not found in module"
// @Failure 409 {object} response.ErrorResponse "Title or order already taken"
// @Router /api/modules/{module_id}/lessons/{lesson_id} [put]
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	moduleID, lessonID, ok := lessonParams(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateLesson(c.Request.Context(), userID, moduleID, lessonID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Delete a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param module_id path string true "Module ID" format(uuid)
// @Param lesson_id path string true "Lesson ID" format(uuid)
// @Success 204
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Lesson not found in module"
// @Router /api/modules/{module_id}/lessons/{lesson_id} [delete]
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	moduleID, lessonID, ok := lessonParams(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteLesson(c.Request.Context(), userID, moduleID, lessonID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func lessonParams(c *gin.Context) (moduleID, lessonID uuid.UUID, ok bool) {
	if moduleID, ok = response.ParseUUIDParam(c, "module_id"); !ok {
		return
	}
	lessonID, ok = response.ParseUUIDParam(c, "lesson_id")
	return
}
