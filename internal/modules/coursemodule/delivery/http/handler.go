package handler

import (
	"net/http"

	"anoa.com/courseplatform/internal/modules/coursemodule/dto"
	coursemodule "anoa.com/courseplatform/internal/modules/coursemodule/service"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type ModuleHandler struct {
	service coursemodule.ModuleService
}

func NewModuleHandler(service coursemodule.ModuleService) *ModuleHandler {
	return &ModuleHandler{service: service}
}

// @Summary Create a module
// @Tags modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID" format(uuid)
// @Param request body dto.CreateModuleRequest true "Module"
// @Success 201 {object} dto.ModuleResponse "Created module"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Course not found"
// @Failure 409 {object} response.ErrorResponse "Title or order already taken"
// @Router /api/courses/{course_id}/modules [post]
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	courseID, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.CreateModule(c.Request.Context(), userID, courseID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary List course modules
// @Tags modules
// @Produce json
// @Param course_id path string true "Course ID" format(uuid)
// @Success 200 {object} map[string][]dto.ModuleResponse "Modules ordered by order_index"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Course not found"
// @Router /api/courses/{course_id}/modules [get]
func (h *ModuleHandler) GetModules(c *gin.Context) {
	courseID, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}

	modules, err := h.service.GetModules(c.Request.Context(), courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": modules})
}

// @Summary Get a module
// @Tags modules
// @Produce json
// @Param course_id path string true "Course ID" format(uuid)
// @Param module_id path string true "Module ID" format(uuid)
// @Success 200 {object} dto.ModuleResponse "Module"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Module not found in course"
// @Router /api/courses/{course_id}/modules/{module_id} [get]
func (h *ModuleHandler) GetModule(c *gin.Context) {
	courseID, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}
	moduleID, ok := response.ParseUUIDParam(c, "module_id")
	if !ok {
		return
	}

	res, err := h.service.GetModule(c.Request.Context(), courseID, moduleID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Update a module
// @Tags modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID" format(uuid)
// @Param module_id path string true "Module ID" format(uuid)
// @Param request body dto.UpdateModuleRequest true "Fields to change"
// @Success 200 {object} dto.ModuleResponse "Updated module"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Module not found in course"
// @Failure 409 {object} response.ErrorResponse "Title or order already taken"
// @Router /api/courses/{course_id}/modules/{module_id} [put]
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	courseID, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}
	moduleID, ok := response.ParseUUIDParam(c, "module_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateModule(c.Request.Context(), userID, courseID, moduleID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Delete a module
// @Description Deletes the module with its lessons and their completion records.
// @Tags modules
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID" format(uuid)
// @Param module_id path string true "Module ID" format(uuid)
// @Success 204
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not the course owner"
// @Failure 404 {object} response.ErrorResponse "Module not found in course"
// @Router /api/courses/{course_id}/modules/{module_id} [delete]
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	courseID, ok := response.ParseUUIDParam(c, "course_id")
	if !ok {
		return
	}
	moduleID, ok := response.ParseUUIDParam(c, "module_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteModule(c.Request.Context(), userID, courseID, moduleID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
