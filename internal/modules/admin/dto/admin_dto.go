package dto

import (
	userDto "anoa.com/courseplatform/internal/modules/user/dto"
	commonDto "anoa.com/courseplatform/pkg/dto"
)

type CreateUserInput struct {
	Email     string   `json:"email" binding:"required,email,max=100"`
	Password  string   `json:"password" binding:"required,min=6,max=30"`
	FirstName string   `json:"first_name" binding:"required,notblank,max=100"`
	LastName  string   `json:"last_name" binding:"required,notblank,max=100"`
	Roles     []string `json:"roles" binding:"required,min=1,dive,oneof=ROLE_ADMIN ROLE_INSTRUCTOR ROLE_STUDENT"`
}

type UpdateRolesInput struct {
	Roles []string `json:"roles" binding:"required,min=1,dive,oneof=ROLE_ADMIN ROLE_INSTRUCTOR ROLE_STUDENT"`
}

type UserFilter struct {
	commonDto.PageQuery
	Search string `form:"search" binding:"max=100"`
}

type UserResponse = userDto.UserResponse

type PaginatedUserResponse = commonDto.Paginated[UserResponse]
