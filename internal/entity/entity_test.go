package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func userWith(roles ...string) *User {
	u := &User{ID: uuid.New()}
	for _, r := range roles {
		u.Roles = append(u.Roles, Role{Name: r})
	}
	return u
}

func TestUserHasRole(t *testing.T) {
	u := userWith(RoleInstructor, RoleStudent)

	assert.True(t, u.HasRole(RoleInstructor))
	assert.True(t, u.HasRole(RoleAdmin, RoleStudent))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.False(t, u.IsAdmin())
	assert.Equal(t, []string{RoleInstructor, RoleStudent}, u.RoleNames())
}

func TestCourseCanBeManagedBy(t *testing.T) {
	owner := userWith(RoleInstructor)
	other := userWith(RoleInstructor)
	admin := userWith(RoleAdmin)
	course := &Course{InstructorID: owner.ID}

	assert.True(t, course.CanBeManagedBy(owner))
	assert.True(t, course.CanBeManagedBy(admin))
	assert.False(t, course.CanBeManagedBy(other))
	assert.False(t, course.CanBeManagedBy(nil))
}

func TestEnrollmentCanBeAccessedBy(t *testing.T) {
	student := userWith(RoleStudent)
	stranger := userWith(RoleStudent)
	admin := userWith(RoleAdmin)
	enrollment := &Enrollment{UserID: student.ID}

	assert.True(t, enrollment.CanBeAccessedBy(student))
	assert.True(t, enrollment.CanBeAccessedBy(admin))
	assert.False(t, enrollment.CanBeAccessedBy(stranger))
}
