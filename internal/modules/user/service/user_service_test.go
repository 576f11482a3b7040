package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/modules/user/dto"
	"anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/internal/testutil"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpdateMe(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewUserService(repo, NewAuthService(repo, nil, testConfig(), logger.Nop()))
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "me@example.com", entity.RoleStudent)
	testutil.CreateUser(t, db, "taken@example.com", entity.RoleStudent)

	_, err := svc.UpdateMe(ctx, me.ID, dto.UpdateMeRequest{Email: strPtr("Taken@example.com")})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	res, err := svc.UpdateMe(ctx, me.ID, dto.UpdateMeRequest{
		Email:     strPtr("New@Example.com"),
		FirstName: strPtr("  Grace "),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.Equal(t, "Grace", res.User.FirstName)
	assert.Equal(t, "User", res.User.LastName)
	assert.Equal(t, []string{entity.RoleStudent}, res.User.Roles)
}

func TestGetMeUnknownUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewUserService(repo, NewAuthService(repo, nil, testConfig(), logger.Nop()))

	_, err := svc.GetMe(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateMeRejectsMarkupOnlyNames(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewUserService(repo, NewAuthService(repo, nil, testConfig(), logger.Nop()))
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "me@example.com", entity.RoleStudent)

	_, err := svc.UpdateMe(ctx, me.ID, dto.UpdateMeRequest{FirstName: strPtr("<b></b>")})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	_, err = svc.UpdateMe(ctx, me.ID, dto.UpdateMeRequest{LastName: strPtr("<script>alert(1)</script>")})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	stored, err := repo.FindByID(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", stored.FirstName)
	assert.Equal(t, "User", stored.LastName)
}
