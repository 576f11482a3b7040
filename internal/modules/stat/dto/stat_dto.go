package dto

import "github.com/google/uuid"

type PlatformStats struct {
	TotalUsers           int64            `json:"total_users"`
	UsersByRole          map[string]int64 `json:"users_by_role"`
	TotalCourses         int64            `json:"total_courses"`
	PublishedCourses     int64            `json:"published_courses"`
	TotalEnrollments     int64            `json:"total_enrollments"`
	CompletedEnrollments int64            `json:"completed_enrollments"`
}

type PopularCourse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Enrollments int64     `json:"enrollments"`
}

type PopularQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}
