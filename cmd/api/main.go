package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	minioSDK "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yourusername/reviewbot-api/internal/config"
	"github.com/yourusername/reviewbot-api/internal/handler"
	"github.com/yourusername/reviewbot-api/internal/middleware"
	pgRepo "github.com/yourusername/reviewbot-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/reviewbot-api/internal/repository/redis"
	"github.com/yourusername/reviewbot-api/internal/service"
	minioStorage "github.com/yourusername/reviewbot-api/internal/storage/minio"
	"github.com/yourusername/reviewbot-api/pkg/auth"
	"github.com/yourusername/reviewbot-api/pkg/database"
	"github.com/yourusername/reviewbot-api/pkg/session"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db, "file://migrations"); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Credential hasher used by the identity store's write path.
	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Printf("Failed to initialize PasswordHasher: %v", err)
		os.Exit(1)
	}

	// Repositories.
	userRepo, err := pgRepo.NewUserRepo(db, hasher)
	if err != nil {
		log.Printf("Failed to initialize UserRepo: %v", err)
		os.Exit(1)
	}
	videoRepo, err := pgRepo.NewVideoRepo(db)
	if err != nil {
		log.Printf("Failed to initialize VideoRepo: %v", err)
		os.Exit(1)
	}
	sessionRepo, err := redisRepo.NewSessionRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize SessionRepo: %v", err)
		os.Exit(1)
	}
	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Object storage for video blobs.
	minioClient, err := minioSDK.New(cfg.Storage.Endpoint, &minioSDK.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Printf("Failed to initialize object storage client: %v", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 15*time.Second)
	blobStorage, err := minioStorage.NewClient(storageCtx, minioClient, cfg.Storage.Bucket, cfg.Storage.PublicURL)
	storageCancel()
	if err != nil {
		log.Printf("Failed to initialize blob storage: %v", err)
		os.Exit(1)
	}

	// Session manager. The cookie mirrors the store TTL; Secure and
	// SameSite follow the gin mode the way the cross-origin frontend
	// needs them.
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	sessions, err := session.NewManager(sessionRepo, sessionTTL)
	if err != nil {
		log.Printf("Failed to initialize session Manager: %v", err)
		os.Exit(1)
	}
	isProduction := gin.Mode() == gin.ReleaseMode
	sameSitePolicy := http.SameSiteLaxMode
	if isProduction {
		// None requires Secure=true and is only honored over HTTPS.
		sameSitePolicy = http.SameSiteNoneMode
	}
	sessions.SetCookieAttributes("/", cfg.Session.CookieDomain, isProduction, true, sameSitePolicy)

	// Services.
	authService, err := service.NewAuthService(userRepo, hasher)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	oauthService, err := service.NewOAuthService(userRepo, cacheRepo, cfg.OAuth)
	if err != nil {
		log.Printf("Failed to initialize OAuthService: %v", err)
		os.Exit(1)
	}
	userService, err := service.NewUserService(userRepo)
	if err != nil {
		log.Printf("Failed to initialize UserService: %v", err)
		os.Exit(1)
	}
	videoService, err := service.NewVideoService(videoRepo, blobStorage)
	if err != nil {
		log.Printf("Failed to initialize VideoService: %v", err)
		os.Exit(1)
	}

	// Handlers and middleware.
	authMiddleware, err := middleware.NewAuthMiddleware(sessions)
	if err != nil {
		log.Printf("Failed to initialize AuthMiddleware: %v", err)
		os.Exit(1)
	}
	authHandler := handler.NewAuthHandler(authService, oauthService, userService, sessions, cfg.Client)
	userHandler := handler.NewUserHandler(userService, authService)
	videoHandler := handler.NewVideoHandler(videoService)

	router := gin.Default()
	// Multipart uploads go through c.FormFile; keep gin's in-memory part
	// buffer small so large files spill to disk instead of RAM.
	router.MaxMultipartMemory = 32 << 20

	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Client.URL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	api := router.Group("/api")
	{
		api.POST("/signup", authHandler.SignUp)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", authHandler.Logout)
		api.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		api.PUT("/me/password", authMiddleware.RequireAuth(), userHandler.ChangePassword)

		// The gin tree cannot mix a static segment with the :provider
		// wildcard, so /me lives directly under /api.
		authGroup := api.Group("/auth")
		{
			authGroup.GET("/:provider", authHandler.OAuthBegin)
			authGroup.GET("/:provider/callback", authHandler.OAuthCallback)
		}

		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("", userHandler.ListUsers)

			userWithID := users.Group("/:id")
			userWithID.Use(middleware.ExtractUUIDParam("id", "userID"))
			{
				userWithID.GET("", userHandler.GetUser)
				userWithID.DELETE("", userHandler.DeleteUser)
			}
		}

		videos := api.Group("/videos")
		videos.Use(authMiddleware.RequireAuth())
		{
			videos.POST("", videoHandler.Upload)
			videos.GET("", videoHandler.ListVideos)

			videoWithID := videos.Group("/:id")
			videoWithID.Use(middleware.ExtractUUIDParam("id", "videoID"))
			{
				videoWithID.GET("", videoHandler.GetVideo)
				videoWithID.DELETE("", videoHandler.DeleteVideo)
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
