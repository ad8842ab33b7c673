package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	_ "anoa.com/alienvault/docs"
	"anoa.com/alienvault/internal/config"
	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/middleware"
	"anoa.com/alienvault/internal/realtime"
	"anoa.com/alienvault/internal/scheduler"
	"anoa.com/alienvault/pkg/logger"
	"anoa.com/alienvault/pkg/ratelimiter"
	"anoa.com/alienvault/pkg/storage"
	"anoa.com/alienvault/pkg/token"

	discussionHttp "anoa.com/alienvault/internal/modules/discussion/delivery/http"
	discussionRepo "anoa.com/alienvault/internal/modules/discussion/repository"
	discussionService "anoa.com/alienvault/internal/modules/discussion/service"

	feedbackHttp "anoa.com/alienvault/internal/modules/feedback/delivery/http"
	feedbackRepo "anoa.com/alienvault/internal/modules/feedback/repository"
	feedbackService "anoa.com/alienvault/internal/modules/feedback/service"

	libraryHttp "anoa.com/alienvault/internal/modules/library/delivery/http"
	libraryRepo "anoa.com/alienvault/internal/modules/library/repository"
	libraryService "anoa.com/alienvault/internal/modules/library/service"

	notiHttp "anoa.com/alienvault/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/alienvault/internal/modules/notification/repository"
	notifService "anoa.com/alienvault/internal/modules/notification/service"

	searchService "anoa.com/alienvault/internal/modules/search/service"

	uploadHttp "anoa.com/alienvault/internal/modules/upload/delivery/http"
	uploadService "anoa.com/alienvault/internal/modules/upload/service"

	userHttp "anoa.com/alienvault/internal/modules/user/delivery/http"
	userRepo "anoa.com/alienvault/internal/modules/user/repository"
	userService "anoa.com/alienvault/internal/modules/user/service"

	viewService "anoa.com/alienvault/internal/modules/view/service"

	voteHttp "anoa.com/alienvault/internal/modules/vote/delivery/http"
	voteRepo "anoa.com/alienvault/internal/modules/vote/repository"
	voteService "anoa.com/alienvault/internal/modules/vote/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client

	broadcaster *realtime.Broadcaster
	scheduler   *scheduler.Scheduler
	closers     []func() error

	background context.Context
	cancel     context.CancelFunc
	log        *logrus.Entry
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	background, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler.New(),
		background:  background,
		cancel:      cancel,
		log:         logger.WithComponent("server"),
	}

	if err := s.setup(); err != nil {
		cancel()
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *Server) setup() error {
	cfg := s.cfg
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	imageStorage, documentSigner, err := s.setupStorage()
	if err != nil {
		return err
	}

	router, broadcaster, err := s.setupRealtime()
	if err != nil {
		return err
	}
	s.broadcaster = broadcaster

	limiter := ratelimiter.NewLimiter(s.redisClient, cfg.RateLimitGlobal, map[string]time.Duration{
		ratelimiter.ScopeDiscussion: cfg.RateLimitDiscussion,
		ratelimiter.ScopeAnswer:     cfg.RateLimitAnswer,
		ratelimiter.ScopeReply:      cfg.RateLimitReply,
		ratelimiter.ScopeFeedback:   cfg.RateLimitFeedback,
		ratelimiter.ScopeDocument:   cfg.RateLimitDocument,
	})

	var searchSvc searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = searchService.NewMeiliSearchService(meiliClient)
	}

	userRepository := userRepo.NewUserRepository(s.db)
	authSvc := userService.NewAuthService(userRepository, tokens, cfg.IsAdminEmail)
	authHandler := userHttp.NewAuthHandler(authSvc)

	notificationRepository := notifRepo.NewNotificationRepository(s.db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, broadcaster)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc)

	discussionRepository := discussionRepo.NewDiscussionRepository(s.db)
	voteRepository := voteRepo.NewVoteRepository(s.db)

	viewSvc := viewService.NewViewService(s.redisClient, discussionRepository)
	if s.redisClient != nil {
		if err := s.scheduler.Register(viewService.NewSyncJob(viewSvc, cfg.ViewSyncSchedule)); err != nil {
			return err
		}
	}

	discussionSvc := discussionService.NewDiscussionService(discussionService.Deps{
		Discussions:   discussionRepository,
		Users:         userRepository,
		Votes:         voteRepository,
		Notifications: notificationSvc,
		Publisher:     broadcaster,
		Limiter:       limiter,
		Search:        searchSvc,
		Views:         viewSvc,
	})
	discussionHandler := discussionHttp.NewDiscussionHandler(discussionSvc)

	voteSvc := voteService.NewVoteService(voteRepository, discussionRepository, broadcaster)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	feedbackSvc := feedbackService.NewFeedbackService(feedbackRepo.NewFeedbackRepository(s.db), limiter)
	feedbackHandler := feedbackHttp.NewFeedbackHandler(feedbackSvc)

	uploadSvc := uploadService.NewUploadService(imageStorage, cfg.CloudinaryUploadFolder)
	uploadHandler := uploadHttp.NewUploadHandler(uploadSvc)

	librarySvc := libraryService.NewLibraryService(libraryRepo.NewDocumentRepository(s.db), documentSigner, limiter)
	pdfHandler := libraryHttp.NewLibraryHandler(librarySvc, entity.DocumentPDF)
	ebookHandler := libraryHttp.NewLibraryHandler(librarySvc, entity.DocumentEbook)

	hub := realtime.NewHub(router, realtime.NewTokenAuthenticator(tokens, userRepository), broadcaster, cfg.AllowedOrigins)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	s.setupCORS(engine)

	engine.Use(gin.Recovery())
	engine.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/health"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepository, cfg.IsAdminEmail)

	api := engine.Group("/api")
	api.GET("/health", s.health)
	api.GET("/ws", hub.ServeWS)

	if !cfg.IsProduction() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
	}

	// Reads work anonymously; a token only adds user_vote to the response.
	optional := api.Group("")
	optional.Use(authMiddleware.OptionalAuth())
	{
		optional.GET("/discussions", discussionHandler.GetDiscussions)
		optional.GET("/discussions/:id", discussionHandler.GetDiscussion)

		optional.POST("/feedback/feature-suggestions", feedbackHandler.SubmitSuggestion)
		optional.POST("/feedback/bug-reports", feedbackHandler.SubmitBugReport)

		optional.GET("/pdfs", pdfHandler.List)
		optional.GET("/ebooks", ebookHandler.List)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/discussions", discussionHandler.CreateDiscussion)
		protected.POST("/discussions/:id/answers", discussionHandler.AddAnswer)
		protected.POST("/answers/:id/replies", discussionHandler.AddReply)
		protected.POST("/answers/:id/best", discussionHandler.MarkBestAnswer)

		protected.POST("/discussions/:id/vote", voteHandler.VoteDiscussion)
		protected.POST("/answers/:id/vote", voteHandler.VoteAnswer)
		protected.POST("/replies/:id/vote", voteHandler.VoteReply)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		protected.POST("/upload", uploadHandler.UploadImage)
		protected.DELETE("/upload", uploadHandler.DeleteImage)

		protected.POST("/pdfs/generate-upload-url", pdfHandler.GenerateUploadURL)
		protected.POST("/pdfs/store-metadata", pdfHandler.StoreMetadata)
		protected.POST("/ebooks/generate-upload-url", ebookHandler.GenerateUploadURL)
		protected.POST("/ebooks/store-metadata", ebookHandler.StoreMetadata)

		adminGroup := protected.Group("/feedback/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/feature-suggestions", feedbackHandler.ListSuggestions)
			adminGroup.PUT("/feature-suggestions/:id", feedbackHandler.UpdateSuggestion)
			adminGroup.GET("/bug-reports", feedbackHandler.ListBugReports)
			adminGroup.PUT("/bug-reports/:id", feedbackHandler.UpdateBugReport)
			adminGroup.GET("/stats", feedbackHandler.Stats)
		}
	}

	s.engine = engine
	return nil
}

// setupStorage returns nil when no image store is reachable; uploads then
// answer 503 and the rest of the API keeps working. Only MinIO can presign,
// so the document signer is nil unless MinIO is reachable.
func (s *Server) setupStorage() (storage.ImageStorage, storage.DocumentSigner, error) {
	cfg := s.cfg
	switch cfg.StorageDriver {
	case "minio":
		store, err := s.newMinio()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize minio storage: %w", err)
		}
		signer, _ := store.(storage.DocumentSigner)
		return store, signer, nil
	default:
		var signer storage.DocumentSigner
		if cfg.MinioEndpoint != "" {
			if docs, err := s.newMinio(); err != nil {
				s.log.WithError(err).Warn("minio unreachable, document uploads disabled")
			} else {
				signer, _ = docs.(storage.DocumentSigner)
			}
		}

		store, err := storage.NewCloudinaryStorage(storage.CloudinaryOptions{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
		if err != nil {
			s.log.WithError(err).Warn("cloudinary not configured, uploads disabled")
			return nil, signer, nil
		}
		return store, signer, nil
	}
}

func (s *Server) newMinio() (storage.ImageStorage, error) {
	cfg := s.cfg
	ctx, cancel := context.WithTimeout(s.background, 10*time.Second)
	defer cancel()
	return storage.NewMinioStorage(ctx, storage.MinioOptions{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		Region:    cfg.MinioRegion,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
	})
}

func (s *Server) setupRealtime() (*realtime.Router, *realtime.Broadcaster, error) {
	cfg := s.cfg
	router := realtime.NewRouter()

	var transport realtime.Transport
	switch cfg.RealtimeTransport {
	case "redis":
		if s.redisClient == nil {
			return nil, nil, errors.New("redis realtime transport needs REDIS_URL")
		}
		transport = realtime.NewRedisTransport(s.redisClient)
		relay := realtime.NewRelay(s.redisClient, router)
		go s.runRelay("redis", relay.Run)
	case "kafka":
		kafkaTransport := realtime.NewKafkaTransport(cfg.KafkaBrokers, cfg.KafkaTopic)
		s.closers = append(s.closers, kafkaTransport.Close)
		transport = kafkaTransport
		relay := realtime.NewKafkaRelay(cfg.KafkaBrokers, cfg.KafkaTopic, router)
		go s.runRelay("kafka", relay.Run)
	default:
		transport = realtime.NewLocalTransport(router)
	}

	s.log.WithField("transport", cfg.RealtimeTransport).Info("realtime ready")
	return router, realtime.NewBroadcaster(transport, cfg.RealtimeQueueSize), nil
}

func (s *Server) runRelay(name string, run func(context.Context) error) {
	if err := run(s.background); err != nil {
		s.log.WithError(err).WithField("relay", name).Error("realtime relay stopped")
	}
}

func (s *Server) setupCORS(engine *gin.Engine) {
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "database": "ok"}
	code := http.StatusOK

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}

	if s.redisClient != nil {
		status["redis"] = "ok"
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			status["status"] = "degraded"
			status["redis"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, status)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests, stops
// background jobs and flushes queued realtime events.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.engine,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Warn("http shutdown incomplete")
	}

	s.scheduler.Stop()
	// One last flush so buffered views are not lost on deploy.
	if s.redisClient != nil {
		if err := s.scheduler.RunByName(shutdownCtx, "view-sync"); err != nil {
			s.log.WithError(err).Warn("final view sync failed")
		}
	}

	s.close()
	return serveErr
}

func (s *Server) close() {
	s.cancel()
	if s.broadcaster != nil {
		s.broadcaster.Close()
	}
	for _, closer := range s.closers {
		if err := closer(); err != nil {
			s.log.WithError(err).Warn("close failed")
		}
	}
}
