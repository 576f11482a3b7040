package handler

import (
	"net/http"

	"anoa.com/courseplatform/internal/modules/admin/dto"
	adminService "anoa.com/courseplatform/internal/modules/admin/service"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// @Summary Create a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserInput true "User with roles"
// @Success 201 {object} dto.UserResponse "Created user"
// @Failure 400 {object} response.ErrorResponse "Invalid request or unknown role"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Admin role required"
// @Failure 409 {object} response.ErrorResponse "Email already registered"
// @Router /api/admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input dto.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.CreateUser(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query integer false "Page number, starting at 1"
// @Param limit query integer false "Page size (max 100)"
// @Param search query string false "Match on email or name"
// @Success 200 {object} dto.PaginatedUserResponse "One page of users"
// @Failure 400 {object} response.ErrorResponse "Invalid query"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Admin role required"
// @Router /api/admin/users [get]
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var filter dto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.GetAllUsers(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Replace user roles
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID" format(uuid)
// @Param request body dto.UpdateRolesInput true "New role set"
// @Success 200 {object} dto.UserResponse "Updated user"
// @Failure 400 {object} response.ErrorResponse "Invalid request or unknown role"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Admin role required"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Router /api/admin/users/{user_id}/roles [put]
func (h *AdminHandler) UpdateUserRoles(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "user_id")
	if !ok {
		return
	}

	var input dto.UpdateRolesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.UpdateUserRoles(c.Request.Context(), id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Delete a user
// @Description Removes the user with their enrollments. Users who still own courses cannot be deleted.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID" format(uuid)
// @Success 204
// @Failure 400 {object} response.ErrorResponse "Cannot delete yourself"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Admin role required"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 409 {object} response.ErrorResponse "User owns courses"
// @Router /api/admin/users/{user_id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := response.ParseUUIDParam(c, "user_id")
	if !ok {
		return
	}

	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), adminID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
