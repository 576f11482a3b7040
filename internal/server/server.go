package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/courseplatform/docs"
	"anoa.com/courseplatform/internal/config"
	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/middleware"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/response"
	"anoa.com/courseplatform/pkg/storage"
	"anoa.com/courseplatform/pkg/validator"

	adminHttp "anoa.com/courseplatform/internal/modules/admin/delivery/http"
	adminService "anoa.com/courseplatform/internal/modules/admin/service"

	categoryHttp "anoa.com/courseplatform/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/courseplatform/internal/modules/category/repository"
	categoryService "anoa.com/courseplatform/internal/modules/category/service"

	courseHttp "anoa.com/courseplatform/internal/modules/course/delivery/http"
	courseRepo "anoa.com/courseplatform/internal/modules/course/repository"
	courseService "anoa.com/courseplatform/internal/modules/course/service"

	moduleHttp "anoa.com/courseplatform/internal/modules/coursemodule/delivery/http"
	moduleRepo "anoa.com/courseplatform/internal/modules/coursemodule/repository"
	moduleService "anoa.com/courseplatform/internal/modules/coursemodule/service"

	enrollmentHttp "anoa.com/courseplatform/internal/modules/enrollment/delivery/http"
	enrollmentRepo "anoa.com/courseplatform/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/courseplatform/internal/modules/enrollment/service"

	statHttp "anoa.com/courseplatform/internal/modules/stat/delivery/http"
	statRepo "anoa.com/courseplatform/internal/modules/stat/repository"
	statService "anoa.com/courseplatform/internal/modules/stat/service"

	lessonCache "anoa.com/courseplatform/internal/modules/lesson/cache"
	lessonHttp "anoa.com/courseplatform/internal/modules/lesson/delivery/http"
	lessonRepo "anoa.com/courseplatform/internal/modules/lesson/repository"
	lessonService "anoa.com/courseplatform/internal/modules/lesson/service"

	userHttp "anoa.com/courseplatform/internal/modules/user/delivery/http"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	userService "anoa.com/courseplatform/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	log         *logger.Logger
	httpServer  *http.Server
}

// NewServer wires every module onto a gin engine. redisClient and imageStorage may be nil:
// caching and rate limiting are then skipped and thumbnail uploads answer 503.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, imageStorage storage.ImageStorage, log *logger.Logger) (*Server, error) {
	if err := validator.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	response.SetLogger(log)

	userRepo := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepo, redisClient, cfg, log)
	authHandler := userHttp.NewAuthHandler(authSvc)
	userHandler := userHttp.NewUserHandler(userService.NewUserService(userRepo, authSvc))

	adminSvc := adminService.NewAdminService(userRepo, log)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	lessonRepo := lessonRepo.NewLessonRepository(db)
	lessonCount := lessonCache.NewCountCache(redisClient, lessonRepo, cfg.LessonCountTTL, log)

	categoryRepo := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categoryRepo)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	courseRepo := courseRepo.NewCourseRepository(db)
	courseSvc := courseService.NewService(courseRepo, userRepo, categoryRepo, lessonCount, imageStorage, cfg.CloudinaryUploadFolder, log)
	courseHandler := courseHttp.NewCourseHandler(courseSvc)

	moduleRepo := moduleRepo.NewModuleRepository(db)
	moduleSvc := moduleService.NewModuleService(moduleRepo, courseRepo, userRepo, lessonCount, log)
	moduleHandler := moduleHttp.NewModuleHandler(moduleSvc)

	lessonSvc := lessonService.NewLessonService(lessonRepo, moduleRepo, userRepo, lessonCount, log)
	lessonHandler := lessonHttp.NewLessonHandler(lessonSvc)

	enrollmentRepo := enrollmentRepo.NewEnrollmentRepository(db)
	enrollmentSvc := enrollmentService.NewEnrollmentService(enrollmentRepo, courseRepo, userRepo, lessonRepo, lessonCount, log)
	enrollmentHandler := enrollmentHttp.NewEnrollmentHandler(enrollmentSvc)

	statHandler := statHttp.NewStatHandler(statService.NewStatService(statRepo.NewStatRepository(db)))

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.OtelServiceName))
	router.Use(middleware.RequestLogger(log, "/health"))

	s := &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
	router.GET("/health", s.health)
	registerDocs(router)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg)
	teaching := authMiddleware.RequireRoles(entity.RoleInstructor, entity.RoleAdmin)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register/student", authHandler.RegisterStudent)
		auth.POST("/register/instructor", authHandler.RegisterInstructor)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	api.GET("/categories", categoryHandler.GetAllCategories)
	api.GET("/categories/:category_id", categoryHandler.GetCategory)
	api.GET("/courses", courseHandler.GetCourses)
	api.GET("/courses/:course_id", courseHandler.GetCourse)
	api.GET("/courses/:course_id/modules", moduleHandler.GetModules)
	api.GET("/courses/:course_id/modules/:module_id", moduleHandler.GetModule)
	api.GET("/modules/:module_id/lessons", lessonHandler.GetLessons)
	api.GET("/modules/:module_id/lessons/:lesson_id", lessonHandler.GetLesson)
	api.GET("/stats/popular-courses", statHandler.GetPopularCourses)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.PUT("/users/:user_id/roles", adminHandler.UpdateUserRoles)
			adminGroup.DELETE("/users/:user_id", adminHandler.DeleteUser)
			adminGroup.GET("/stats", statHandler.GetPlatformStats)
		}

		protected.GET("/users/me", userHandler.GetMe)
		protected.PUT("/users/me", userHandler.UpdateMe)

		protected.POST("/categories", teaching, categoryHandler.CreateCategory)
		protected.PUT("/categories/:category_id", authMiddleware.RequireAdmin(), categoryHandler.UpdateCategory)
		protected.DELETE("/categories/:category_id", authMiddleware.RequireAdmin(), categoryHandler.DeleteCategory)

		protected.POST("/courses", teaching, courseHandler.CreateCourse)
		protected.PUT("/courses/:course_id", teaching, courseHandler.UpdateCourse)
		protected.DELETE("/courses/:course_id", teaching, courseHandler.DeleteCourse)
		protected.POST("/courses/:course_id/thumbnail", teaching, courseHandler.UploadThumbnail)

		protected.POST("/courses/:course_id/modules", teaching, moduleHandler.CreateModule)
		protected.PUT("/courses/:course_id/modules/:module_id", teaching, moduleHandler.UpdateModule)
		protected.DELETE("/courses/:course_id/modules/:module_id", teaching, moduleHandler.DeleteModule)

		protected.POST("/modules/:module_id/lessons", teaching, lessonHandler.CreateLesson)
		protected.PUT("/modules/:module_id/lessons/:lesson_id", teaching, lessonHandler.UpdateLesson)
		protected.DELETE("/modules/:module_id/lessons/:lesson_id", teaching, lessonHandler.DeleteLesson)

		protected.POST("/enrollments", enrollmentHandler.Enroll)
		protected.GET("/enrollments/user/:user_id", enrollmentHandler.GetUserEnrollments)
		protected.GET("/enrollments/course/:course_id", enrollmentHandler.GetCourseEnrollments)
		protected.GET("/enrollments/:enrollment_id", enrollmentHandler.GetEnrollment)
		protected.PUT("/enrollments/:enrollment_id/progress", enrollmentHandler.UpdateProgress)
		protected.DELETE("/enrollments/:enrollment_id", enrollmentHandler.Unenroll)
	}

	return s, nil
}

// Handler exposes the router, mostly for tests.
// registerDocs serves the generated OpenAPI document and Swagger UI under /docs.
func registerDocs(router *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/docs/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until Shutdown is called.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("http server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// @Summary Health check
// @Description Pings the database and, when configured, Redis.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string "All dependencies reachable"
// @Failure 503 {object} map[string]string "A dependency is down"
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok"}
	code := http.StatusOK

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["database"] = "down"
		code = http.StatusServiceUnavailable
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			code = http.StatusServiceUnavailable
		} else {
			status["redis"] = "ok"
		}
	}

	c.JSON(code, status)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
