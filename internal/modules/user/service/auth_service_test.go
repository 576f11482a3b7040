package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/courseplatform/internal/config"
	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/modules/user/dto"
	"anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/internal/testutil"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/ratelimiter"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTIssuer:        "course-platform",
		JWTTTL:           time.Hour,
		LoginMaxAttempts: 3,
		LoginWindow:      time.Minute,
		RegisterCooldown: 10 * time.Second,
	}
}

func newAuthService(t *testing.T, rdb *redis.Client) (*authService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), rdb, testConfig(), logger.Nop())
	return svc.(*authService), db
}

func registerRequest(email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:     email,
		Password:  "secret1",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func TestRegisterAssignsRole(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	res, err := svc.Register(context.Background(), registerRequest("Ada@Example.com"), entity.RoleInstructor, "")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", res.Email)
	assert.Equal(t, []string{entity.RoleInstructor}, res.Roles)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("ada@example.com"), entity.RoleStudent, "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest("ADA@example.com"), entity.RoleStudent, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestRegisterRejectsMarkupOnlyNames(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	req := registerRequest("ada@example.com")
	req.FirstName = "<b></b>"
	_, err := svc.Register(context.Background(), req, entity.RoleStudent, "")
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestRegisterCooldownPerClient(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	svc, _ := newAuthService(t, rdb)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("one@example.com"), entity.RoleStudent, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest("two@example.com"), entity.RoleStudent, "10.0.0.1")
	var rlErr *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Greater(t, rlErr.RetryAfter, time.Duration(0))

	_, err = svc.Register(ctx, registerRequest("three@example.com"), entity.RoleStudent, "10.0.0.2")
	require.NoError(t, err)
}

func TestRegisterConflictKeepsCooldownFree(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	svc, _ := newAuthService(t, rdb)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("one@example.com"), entity.RoleStudent, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest("ONE@example.com"), entity.RoleStudent, "10.0.0.2")
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	blank := registerRequest("blank@example.com")
	blank.FirstName = "<b></b>"
	_, err = svc.Register(ctx, blank, entity.RoleStudent, "10.0.0.2")
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	_, err = svc.Register(ctx, registerRequest("two@example.com"), entity.RoleStudent, "10.0.0.2")
	require.NoError(t, err)
}

func TestLoginIssuesToken(t *testing.T) {
	svc, db := newAuthService(t, nil)
	user := testutil.CreateUser(t, db, "student@example.com", entity.RoleStudent)

	res, err := svc.Login(context.Background(), dto.LoginInput{Email: "Student@Example.com", Password: testutil.Password})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, user.ID, res.User.ID)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(res.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "course-platform", claims.Issuer)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, db := newAuthService(t, nil)
	testutil.CreateUser(t, db, "student@example.com", entity.RoleStudent)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginInput{Email: "student@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	_, err = svc.Login(ctx, dto.LoginInput{Email: "nobody@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestLoginRateLimited(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	svc, db := newAuthService(t, rdb)
	testutil.CreateUser(t, db, "student@example.com", entity.RoleStudent)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, dto.LoginInput{Email: "student@example.com", Password: "wrong"})
		require.True(t, errors.Is(err, apperror.ErrUnauthorized))
	}

	_, err := svc.Login(ctx, dto.LoginInput{Email: "student@example.com", Password: testutil.Password})
	var rlErr *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &rlErr)

	mr.FastForward(time.Minute + time.Second)

	_, err = svc.Login(ctx, dto.LoginInput{Email: "student@example.com", Password: testutil.Password})
	require.NoError(t, err)
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	svc, db := newAuthService(t, rdb)
	testutil.CreateUser(t, db, "student@example.com", entity.RoleStudent)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = svc.Login(ctx, dto.LoginInput{Email: "student@example.com", Password: "wrong"})
	}
	_, err := svc.Login(ctx, dto.LoginInput{Email: "student@example.com", Password: testutil.Password})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Login(ctx, dto.LoginInput{Email: "student@example.com", Password: "wrong"})
		require.True(t, errors.Is(err, apperror.ErrUnauthorized))
	}
}

func TestGoogleLoginNotConfigured(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	_, err := svc.GoogleLogin("state")
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))

	_, err = svc.GoogleCallback(context.Background(), "code")
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))
}

func TestGoogleLoginURLCarriesState(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	svc.googleConfig.ClientID = "client-id"

	url, err := svc.GoogleLogin("abc123")
	require.NoError(t, err)
	assert.Contains(t, url, "state=abc123")
	assert.Contains(t, url, "client_id=client-id")
}

func TestLoginGoogleUserRegistersStudent(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	user, err := svc.loginGoogleUser(context.Background(), &GoogleUser{
		ID:            "g-1",
		Email:         "New.Person@gmail.com",
		VerifiedEmail: true,
		GivenName:     "New",
		FamilyName:    "Person",
	})
	require.NoError(t, err)

	assert.Equal(t, "new.person@gmail.com", user.Email)
	assert.True(t, user.HasRole(entity.RoleStudent))
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "g-1", *user.GoogleID)
}

func TestLoginGoogleUserLinksExistingAccount(t *testing.T) {
	svc, db := newAuthService(t, nil)
	existing := testutil.CreateUser(t, db, "teacher@example.com", entity.RoleInstructor)

	user, err := svc.loginGoogleUser(context.Background(), &GoogleUser{ID: "g-2", Email: "teacher@example.com", VerifiedEmail: true})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	var reloaded entity.User
	require.NoError(t, db.First(&reloaded, "id = ?", existing.ID).Error)
	require.NotNil(t, reloaded.GoogleID)
	assert.Equal(t, "g-2", *reloaded.GoogleID)
}

func TestLoginGoogleUserRequiresVerifiedEmail(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	_, err := svc.loginGoogleUser(context.Background(), &GoogleUser{ID: "g-3", Email: "x@example.com"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}
