package handler

import (
	"net/http"

	"anoa.com/courseplatform/internal/modules/category/dto"
	category "anoa.com/courseplatform/internal/modules/category/service"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service category.CategoryService
}

func NewCategoryHandler(service category.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Category name"
// @Success 201 {object} dto.CategoryResponse "Created category"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Instructor or admin role required"
// @Failure 409 {object} response.ErrorResponse "Name already taken"
// @Router /api/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary List categories
// @Tags categories
// @Produce json
// @Param search query string false "Match on name"
// @Success 200 {object} map[string][]dto.CategoryResponse "Categories"
// @Router /api/categories [get]
func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	var filter dto.CategoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	categories, err := h.service.GetAllCategories(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// @Summary Get a category
// @Tags categories
// @Produce json
// @Param category_id path string true "Category ID" format(uuid)
// @Success 200 {object} dto.CategoryResponse "Category"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Router /api/categories/{category_id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "category_id")
	if !ok {
		return
	}

	res, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Rename a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category_id path string true "Category ID" format(uuid)
// @Param request body dto.UpdateCategoryRequest true "New name"
// @Success 200 {object} dto.CategoryResponse "Updated category"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Admin role required"
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Failure 409 {object} response.ErrorResponse "Name already taken"
// @Router /api/categories/{category_id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "category_id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Delete a category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param category_id path string true "Category ID" format(uuid)
// @Success 204
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Admin role required"
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Failure 409 {object} response.ErrorResponse "Category is used by courses"
// @Router /api/categories/{category_id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "category_id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
