package http

import (
	"net/http"

	"anoa.com/courseplatform/internal/modules/stat/dto"
	statService "anoa.com/courseplatform/internal/modules/stat/service"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PlatformStats "Counts of users, courses and enrollments"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Admin role required"
// @Router /api/admin/stats [get]
func (h *StatHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.statService.GetPlatformStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Popular courses
// @Description Published courses ordered by enrollment count.
// @Tags stats
// @Produce json
// @Param limit query integer false "Number of courses (default 10, max 50)"
// @Success 200 {object} map[string][]dto.PopularCourse "Popular courses"
// @Failure 400 {object} response.ErrorResponse "Invalid query"
// @Router /api/stats/popular-courses [get]
func (h *StatHandler) GetPopularCourses(c *gin.Context) {
	var query dto.PopularQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	courses, err := h.statService.GetPopularCourses(c.Request.Context(), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": courses,
	})
}
