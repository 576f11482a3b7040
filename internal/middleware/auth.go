package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/courseplatform/internal/config"
	"anoa.com/courseplatform/internal/entity"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContextUserKey holds the authenticated *entity.User.
const ContextUserKey = "user"

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
	issuer   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   cfg.JWTSecret,
		issuer:   cfg.JWTIssuer,
	}
}

// RequireAuth verifies the bearer token and loads the user it names.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
		if m.issuer != "" {
			opts = append(opts, jwt.WithIssuer(m.issuer))
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		}, opts...)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		c.Set(response.ContextUserIDKey, user.ID.String())
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireRoles lets the request through when the authenticated user holds any of roles.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		if !user.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRoles(entity.RoleAdmin)
}

func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}
