package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/handlers"
	customMiddleware "nav-panel-backend/pkg/middleware"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

// maxRequestBody 全局请求体上限，需容纳 multipart 上传与大数据集导入
const maxRequestBody = 4 << 20

// New 创建HTTP路由器
func New(cfg *config.Config, st *store.Store, logger *zap.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupRoutes(router, cfg, st, logger)

	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *zap.Logger) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// 路径规范化要先于日志与路由匹配
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.RequestLogger(logger))
	router.Use(customMiddleware.Recovery(logger))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件（出站探测最长10秒，留缓冲）
	router.Use(middleware.Timeout(25 * time.Second))

	// 全局请求体上限；上传路由内部另有2MiB的文件上限
	router.Use(customMiddleware.MaxBodySize(maxRequestBody))

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, st *store.Store, logger *zap.Logger) {
	// 创建处理器
	setupHandler := handlers.NewSetupHandler(cfg, st, logger)
	authHandler := handlers.NewAuthHandler(cfg, st, logger)
	groupsHandler := handlers.NewGroupsHandler(cfg, st, logger)
	sitesHandler := handlers.NewSitesHandler(cfg, st, logger)
	accountHandler := handlers.NewAccountHandler(cfg, st, logger)
	uploadHandler := handlers.NewUploadHandler(cfg, st, logger)
	iconsHandler := handlers.NewIconsHandler(cfg, st, logger)
	transferHandler := handlers.NewTransferHandler(cfg, st, logger)

	// 公开路由（不需要认证）
	router.Route("/setup", func(r chi.Router) {
		r.Use(customMiddleware.ContentTypeJSON)
		r.Get("/status", setupHandler.Status)
		r.Post("/init", setupHandler.Init)
	})

	router.With(customMiddleware.ContentTypeJSON).Post("/auth/login", authHandler.Login)

	// 完整数据集的公开读取
	router.Get("/sites", sitesHandler.PublicData)

	// 上传文件的静态访问
	router.Get("/uploads/*", uploadHandler.Serve)

	// 管理路由（需要认证）
	router.Route("/admin", func(r chi.Router) {
		r.Use(customMiddleware.AuthMiddleware(st))

		r.Route("/groups", func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeJSON)
			r.Get("/", groupsHandler.List)
			r.Post("/", groupsHandler.Create)
			r.Put("/reorder", groupsHandler.Reorder)
			r.Put("/{id}", groupsHandler.Update)
			r.Delete("/{id}", groupsHandler.Delete)
		})

		r.Route("/sites", func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeJSON)
			r.Get("/", sitesHandler.List)
			r.Post("/", sitesHandler.Create)
			r.Put("/reorder", sitesHandler.Reorder)
			r.Put("/{id}", sitesHandler.Update)
			r.Delete("/{id}", sitesHandler.Delete)
		})

		r.Get("/account", accountHandler.Get)
		r.With(customMiddleware.ContentTypeJSON).Put("/account", accountHandler.Update)

		// multipart 上传，不走JSON校验
		r.Post("/upload", uploadHandler.Upload)
		r.Get("/favicon", iconsHandler.Favicon)
		r.Get("/iconify/search", iconsHandler.IconifySearch)

		r.Get("/export", transferHandler.Export)
		r.Get("/export-all", transferHandler.ExportAll)
		r.With(customMiddleware.ContentTypeJSON).Post("/import", transferHandler.Import)
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
	})
}
