package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"kb-portal/internal/conf"
	"kb-portal/internal/data"
	"kb-portal/internal/handler"
	"kb-portal/internal/middleware"
	"kb-portal/internal/ragflow"
	"kb-portal/internal/repository"
	"kb-portal/internal/service"
	"kb-portal/internal/utils"
	"kb-portal/internal/worker"
)

func main() {
	// 1. 加载配置
	cfg := conf.LoadConfig()
	utils.InitJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTExpire)

	// 2. 初始化数据层 (Postgres, Redis, MinIO)
	d, cleanup, err := data.NewData(cfg)
	if err != nil {
		logrus.Fatalf("❌ 数据层初始化失败: %v", err)
	}
	defer cleanup()

	userRepo := repository.NewUserRepository(d.DB)

	// 3. 初始化 RAGFlow 代理客户端 (按服务器记录动态解析凭证)
	ragClient := ragflow.NewClient(d.DB, cfg.Rag.Timeout)

	// 4. 初始化服务层
	auditSvc := service.NewAuditService(d)
	teamSvc := service.NewTeamService(d)
	sourceSvc := service.NewSourceService(d, teamSvc)
	permSvc := service.NewPermissionService(d, teamSvc, auditSvc)
	projectSvc := service.NewProjectService(d)
	serverSvc := service.NewServerService(d)
	datasetSvc := service.NewDatasetService(d, ragClient, auditSvc)
	fileSvc := service.NewFileService(d, permSvc)
	historySvc := service.NewHistoryService(d)
	authSvc := service.NewAuthService(userRepo)

	// 5. 初始化 Handler
	authH := handler.NewAuthHandler(authSvc)
	teamH := handler.NewTeamHandler(teamSvc)
	sourceH := handler.NewSourceHandler(sourceSvc, authSvc)
	permH := handler.NewPermissionHandler(permSvc)
	datasetH := handler.NewDatasetHandler(datasetSvc, projectSvc, serverSvc)
	fileH := handler.NewFileHandler(fileSvc)
	historyH := handler.NewHistoryHandler(historySvc)
	auditH := handler.NewAuditHandler(auditSvc)

	// 6. 启动历史采集 Worker
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	worker.NewHistoryWorker(d).Start(workerCtx, 2)

	// 7. 初始化 Gin Web Server
	r := gin.Default()
	r.Use(middleware.TraceMiddleware())

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 8. 注册路由
	api := r.Group("/api/v1")
	{
		// 用户认证模块
		auth := api.Group("/auth")
		{
			auth.POST("/register", authH.Register)
			auth.POST("/login", authH.Login)
		}

		// 匿名可访问：来源列表 (未登录只看到 public，登录后按 ACL 展开)
		api.GET("/sources/available", middleware.OptionalAuth(), sourceH.ListAvailable)

		// 受保护的路由 (Protected Routes)
		protected := api.Group("/")
		protected.Use(middleware.JWTAuth())
		{
			// 文档桶文件 (Mode B 权限门控)
			protected.POST("/files/upload", fileH.Upload)
			protected.GET("/files/*object", fileH.Download)
			protected.DELETE("/files/*object", fileH.Delete)

			// 历史采集
			protected.POST("/history/chat", historyH.IngestChat)
			protected.POST("/history/search", historyH.IngestSearch)
			protected.GET("/history/chat", historyH.ListChat)

			// 管理端接口
			admin := protected.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				// 团队
				admin.POST("/teams", teamH.Create)
				admin.GET("/teams", teamH.List)
				admin.DELETE("/teams/:id", teamH.Delete)
				admin.POST("/teams/:id/members", teamH.AddMember)
				admin.PUT("/teams/:id/members/:userId", teamH.UpdateMemberRole)
				admin.DELETE("/teams/:id/members/:userId", teamH.RemoveMember)

				// 知识库来源
				admin.POST("/sources", sourceH.Create)
				admin.PUT("/sources/:id", sourceH.Update)
				admin.DELETE("/sources/:id", sourceH.Delete)

				// 权限
				admin.POST("/permissions/documents", permH.SetDocumentPermission)
				admin.POST("/permissions/prompts", permH.SetPromptPermission)
				admin.GET("/permissions/documents/effective", permH.GetEffectiveDocumentPermission)
				admin.GET("/permissions/prompts/effective", permH.GetEffectivePromptPermission)

				// 项目 / 分类 / 版本 (RAGFlow 数据集生命周期)
				admin.POST("/projects", datasetH.CreateProject)
				admin.GET("/projects", datasetH.ListProjects)
				admin.POST("/categories", datasetH.CreateCategory)
				admin.DELETE("/categories/:id", datasetH.DeleteCategory)
				admin.GET("/categories/:id/versions", datasetH.ListVersions)
				admin.POST("/versions", datasetH.CreateVersion)
				admin.POST("/versions/:id/sync", datasetH.SyncVersion)
				admin.POST("/versions/:id/archive", datasetH.ArchiveVersion)
				admin.DELETE("/versions/:id", datasetH.DeleteVersion)

				// RAGFlow 服务器
				admin.POST("/servers", datasetH.CreateServer)
				admin.GET("/servers", datasetH.ListServers)
				admin.PUT("/servers/:id/active", datasetH.SetServerActive)
				admin.DELETE("/servers/:id", datasetH.DeleteServer)

				// 审计
				admin.GET("/audit", auditH.List)
			}
		}
	}

	logrus.Infof("🚀 kb-portal 后端已启动，监听端口 :%s", cfg.App.Port)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		logrus.Fatalf("❌ Server 启动失败: %v", err)
	}
}
