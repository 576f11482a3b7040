package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/courseplatform/internal/config"
	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/modules/user/dto"
	"anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/ratelimiter"
	"anoa.com/courseplatform/pkg/sanitizer"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, roleName, clientKey string) (*dto.UserResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GoogleLogin(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
	IssueToken(user *entity.User) (*dto.AuthResponse, error)
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

type authService struct {
	repo         repository.UserRepository
	rdb          *redis.Client
	cfg          *config.Config
	log          *logger.Logger
	googleConfig *oauth2.Config
	userInfoURL  string
}

func NewAuthService(repo repository.UserRepository, rdb *redis.Client, cfg *config.Config, log *logger.Logger) AuthService {
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		repo:         repo,
		rdb:          rdb,
		cfg:          cfg,
		log:          log,
		googleConfig: googleConfig,
		userInfoURL:  googleUserInfoURL,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, roleName, clientKey string) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.repo.EmailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	}

	firstName, lastName := sanitizer.Text(req.FirstName), sanitizer.Text(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("first_name and last_name must contain text: %w", apperror.ErrBadRequest)
	}

	if clientKey != "" {
		allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.rdb, clientKey, ratelimiter.ScopeRegister, s.cfg.RegisterCooldown)
		if err != nil {
			s.log.Warn("register rate limit check failed", "error", err)
		} else if !allowed {
			ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.rdb, clientKey, ratelimiter.ScopeRegister)
			return nil, &ratelimiter.RateLimitError{
				Message:    "please wait before registering another account",
				RetryAfter: ttl,
			}
		}
	}

	role, err := s.repo.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("role %s is not seeded: %w", roleName, apperror.ErrInternal)
		}
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        []entity.Role{*role},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if clientKey != "" {
			if clearErr := ratelimiter.ClearRateLimit(ctx, s.rdb, clientKey, ratelimiter.ScopeRegister); clearErr != nil {
				s.log.Warn("failed to release register cooldown", "error", clearErr)
			}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID, "role", roleName)
	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	subject := strings.ToLower(strings.TrimSpace(input.Email))

	allowed, retryAfter, err := ratelimiter.Allow(ctx, s.rdb, subject, ratelimiter.ScopeLogin, s.cfg.LoginMaxAttempts, s.cfg.LoginWindow)
	if err != nil {
		s.log.Warn("login rate limit check failed", "error", err)
	} else if !allowed {
		return nil, &ratelimiter.RateLimitError{
			Message:    "too many login attempts, try again later",
			RetryAfter: retryAfter,
		}
	}

	user, err := s.repo.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	if err := ratelimiter.ClearRateLimit(ctx, s.rdb, subject, ratelimiter.ScopeLogin); err != nil {
		s.log.Warn("failed to clear login attempts", "error", err)
	}

	return s.IssueToken(user)
}

func (s *authService) GoogleLogin(state string) (string, error) {
	if s.googleConfig.ClientID == "" {
		return "", fmt.Errorf("google login is not configured: %w", apperror.ErrUnavailable)
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.googleConfig.ClientID == "" {
		return nil, fmt.Errorf("google login is not configured: %w", apperror.ErrUnavailable)
	}

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", apperror.ErrUnauthorized)
	}

	googleUser, err := s.fetchGoogleUser(ctx, s.googleConfig.Client(ctx, token))
	if err != nil {
		return nil, err
	}

	user, err := s.loginGoogleUser(ctx, googleUser)
	if err != nil {
		return nil, err
	}
	return s.IssueToken(user)
}

func (s *authService) fetchGoogleUser(ctx context.Context, client *http.Client) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned %d: %w", resp.StatusCode, apperror.ErrUnauthorized)
	}

	var googleUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &googleUser, nil
}

// loginGoogleUser links a Google account to an existing user, registering a student when
// the email is unknown.
func (s *authService) loginGoogleUser(ctx context.Context, g *GoogleUser) (*entity.User, error) {
	if g.Email == "" || !g.VerifiedEmail {
		return nil, fmt.Errorf("google account email is not verified: %w", apperror.ErrUnauthorized)
	}

	user, err := s.repo.FindByEmail(ctx, g.Email)
	if err == nil {
		if user.GoogleID == nil || *user.GoogleID != g.ID {
			user.GoogleID = &g.ID
			if err := s.repo.Update(ctx, user); err != nil {
				s.log.Warn("failed to link google account", "user_id", user.ID, "error", err)
			}
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("default role not found: %w", apperror.ErrInternal)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	firstName := sanitizer.Text(g.GivenName)
	if firstName == "" {
		firstName = strings.Split(g.Email, "@")[0]
	}

	user = &entity.User{
		Email:        strings.ToLower(g.Email),
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     sanitizer.Text(g.FamilyName),
		GoogleID:     &g.ID,
		Roles:        []entity.Role{*role},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered via google", "user_id", user.ID)
	return user, nil
}

func (s *authService) IssueToken(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		Issuer:    s.cfg.JWTIssuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
