package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collabtrack/internal/api/handler"
	"collabtrack/internal/api/middleware"
	"collabtrack/internal/pkg/config"
	"collabtrack/internal/pkg/database"
	"collabtrack/internal/pkg/jwt"
	"collabtrack/internal/pkg/logger"
	"collabtrack/internal/repository"
	"collabtrack/internal/service"
	"collabtrack/pkg/utils"
)

// Setup 设置路由, limiter 为 nil 时不限流
func Setup(cfg *config.Config, db *gorm.DB, limiter *middleware.RateLimiter) *gin.Engine {
	// 设置Gin模式
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}
	utils.RegisterJSONTagNames()

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.CORS))
	r.Use(middleware.TimeoutMiddleware(cfg.Server.Timeout()))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			logger.Warn("健康检查失败", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 初始化Repository
	store := repository.NewStore(db)
	tokens := jwt.NewManager(cfg.Auth.JWT)

	// 初始化Service
	authz := service.NewAuthorizationService(store)
	identityService := service.NewIdentityService(tokens, store.Users)
	ldapService := service.NewLDAPService(&cfg.Auth.LDAP)
	authService := service.NewAuthService(&cfg.Auth, tokens, store.Users, ldapService)
	userService := service.NewUserService(store, authz)
	workspaceService := service.NewWorkspaceService(store, authz)
	projectService := service.NewProjectService(store, authz)
	taskService := service.NewTaskService(store, authz)
	commentService := service.NewCommentService(store, authz)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	projectHandler := handler.NewProjectHandler(projectService, taskService)
	taskHandler := handler.NewTaskHandler(taskService)
	commentHandler := handler.NewCommentHandler(commentService)

	// API v1
	v1 := r.Group("/api/v1")
	{
		registerAuthRoutes(v1, authHandler, limiter)

		// 需要认证的路由
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(identityService))
		{
			authed.GET("/auth/me", authHandler.GetMe)

			// 用户管理
			users := authed.Group("/users")
			{
				users.GET("", userHandler.List)
				users.GET("/profile", userHandler.Profile)
				users.PUT("/:id/role", userHandler.UpdateRole)
				users.DELETE("/:id", userHandler.Delete)
			}

			// 工作空间
			workspaces := authed.Group("/workspaces")
			{
				workspaces.GET("", workspaceHandler.List)
				workspaces.POST("", workspaceHandler.Create)
				workspaces.GET("/:id", workspaceHandler.Get)
				workspaces.PUT("/:id", workspaceHandler.Update)
				workspaces.DELETE("/:id", workspaceHandler.Delete)
				workspaces.GET("/:id/projects", workspaceHandler.ListProjects)
				workspaces.GET("/:id/members", workspaceHandler.ListMembers)
				workspaces.POST("/:id/members", workspaceHandler.AddMember)
				workspaces.PUT("/:id/members/:userId", workspaceHandler.UpdateMember)
				workspaces.DELETE("/:id/members/:userId", workspaceHandler.RemoveMember)
			}

			// 项目
			projects := authed.Group("/projects")
			{
				projects.GET("", projectHandler.List)
				projects.POST("", projectHandler.Create)
				projects.GET("/analytics", projectHandler.Analytics)
				projects.GET("/:id", projectHandler.GetByID)
				projects.PUT("/:id", projectHandler.Update)
				projects.DELETE("/:id", projectHandler.Delete)
				projects.GET("/:id/tasks", projectHandler.ListTasks)
				projects.GET("/:id/members", projectHandler.ListMembers)
				projects.POST("/:id/members", projectHandler.AddMember)
				projects.PUT("/:id/members/:userId", projectHandler.UpdateMember)
				projects.DELETE("/:id/members/:userId", projectHandler.RemoveMember)
				projects.GET("/:id/comments", commentHandler.ListForProject)
				projects.POST("/:id/comments", commentHandler.CreateForProject)
			}

			// 任务
			tasks := authed.Group("/tasks")
			{
				tasks.GET("", taskHandler.List)
				tasks.POST("", taskHandler.Create)
				tasks.GET("/user-assigned", taskHandler.ListAssigned)
				tasks.GET("/:id", taskHandler.GetByID)
				tasks.PUT("/:id", taskHandler.Update)
				tasks.DELETE("/:id", taskHandler.Delete)
				tasks.GET("/:id/comments", commentHandler.ListForTask)
				tasks.POST("/:id/comments", commentHandler.CreateForTask)
			}

			// 评论
			comments := authed.Group("/comments")
			{
				comments.GET("", commentHandler.List)
				comments.POST("", commentHandler.Create)
				comments.GET("/:id", commentHandler.GetByID)
				comments.PUT("/:id", commentHandler.Update)
				comments.DELETE("/:id", commentHandler.Delete)
			}
		}
	}

	return r
}
