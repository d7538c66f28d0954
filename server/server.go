package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stemhub/cache"
	"stemhub/config"
	"stemhub/core/auth"
	"stemhub/db"
	"stemhub/logger"
	"stemhub/repository"
	"stemhub/service"
	"stemhub/storage"

	"github.com/gorilla/mux"
	"github.com/zeebo/errs"
)

// NewRouter 使用 gorilla/mux 注册所有路由
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestLogger)

	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/uploads/{kind}/{name}", h.ServeUploadHandler).Methods(http.MethodGet, http.MethodHead)

	router.HandleFunc("/api-docs/openapi.json", h.OpenAPIHandler).Methods(http.MethodGet)

	api := router.PathPrefix(APIBasePath).Subrouter()
	for _, rt := range h.apiRoutes() {
		api.HandleFunc(rt.path, rt.handler).Methods(rt.method)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Response{Status: statusError, Message: "route not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Status: statusError, Message: "method not allowed"})
	})
	return router
}

// OpenDocumentStore selects the document store for DB_DRIVER and wraps it
// with the Redis cache when REDIS_ENABLED is set. The returned func releases
// the connections.
func OpenDocumentStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, func(), error) {
	var (
		store   repository.DocumentStore
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DBDriver == "memory" {
		logger.Warn("[DB] 使用内存文档存储，重启后数据会丢失")
		store = repository.NewMemoryDocumentStore()
	} else {
		gdb, err := db.OpenGorm(cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := db.CloseGorm(gdb); err != nil {
				logger.Warn("[DB] 关闭数据库连接失败", logger.ErrorField(err))
			}
		})
		store = repository.NewGormDocumentStore(gdb)
	}

	if cfg.RedisEnabled {
		client, err := db.ConnectRedis(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("[Redis] 关闭连接失败", logger.ErrorField(err))
			}
		})
		logger.Info("Successfully connected to Redis",
			logger.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
			logger.Duration("ttl", cfg.RedisCacheTTL))
		store = cache.NewDocumentCache(store, client, cfg.RedisCacheTTL)
	}

	return store, cleanup, nil
}

// Start initializes and starts the HTTP server. It blocks until SIGINT or
// SIGTERM and then shuts down gracefully.
func Start(cfg *config.Config) error {
	ctx := context.Background()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return errs.New("JWT_SECRET must be set: %v", err)
	}

	store, closeStore, err := OpenDocumentStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	files, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}

	tracks := service.NewTrackService(store, files)
	handler := NewAPIHandler(Deps{
		Tracks:        tracks,
		Stems:         service.NewStemService(store, files, tracks),
		Comments:      service.NewCommentService(store),
		Files:         files,
		Issuer:        issuer,
		MaxUploadSize: cfg.MaxUploadSize,
		DocsServerURL: cfg.SwaggerServerURL,
	})

	// 设置服务器超时
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewRouter(handler),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			logger.String("addr", server.Addr),
			logger.String("docs", "/api-docs/openapi.json"),
			logger.String("dbDriver", cfg.DBDriver),
			logger.String("storage", cfg.StorageBackend),
			logger.Bool("redisCache", cfg.RedisEnabled))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errs.New("failed to start server: %v", err)
		}
		return nil
	case <-stop:
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errs.New("server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped")
	return nil
}
