package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentisounds/config"
	"sentisounds/core/auth"
	"sentisounds/core/classifier"
	"sentisounds/core/recommend"
	"sentisounds/core/spotify"
	"sentisounds/core/youtube"
	"sentisounds/db"
	"sentisounds/logger"
	"sentisounds/repository"

	"github.com/gorilla/mux"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// Start initializes every collaborator and runs the HTTP server until a
// shutdown signal arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(getEnvLogLevel()),
		OutputPath: "logs/sentisounds.log",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})

	// Missing provider secrets are fatal here; no request ever sees an
	// unconfigured collaborator.
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	ctx := context.Background()

	youtubeService, err := youtubeapi.NewService(ctx, option.WithAPIKey(cfg.YouTubeKey))
	if err != nil {
		logger.Fatal("Failed to create YouTube service", logger.ErrorField(err))
	}

	matcher, err := youtube.NewMatchIndex(youtubeService, cfg.MatchCachePath, cfg.MatchWorkerCount)
	if err != nil {
		logger.Fatal("Failed to load match cache", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	tokenRepo := repository.NewMySQLSpotifyTokenRepository(db.DB)

	genreClassifier := classifier.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.GenrePrompt, db.RedisClient, cfg.GenreCacheTTL)
	authenticator := spotify.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	recommender := recommend.NewService(
		tokenRepo,
		genreClassifier,
		recommend.NewSpotifyFactory(authenticator),
		matcher,
		cfg.SongsPerGenre,
		cfg.PopularityFloor,
	)

	pending := auth.NewPendingCache(cfg.AuthCodeTTL)
	mailer := auth.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword)
	jwtIssuer := auth.NewTokenIssuer(cfg.JWTSecret)

	apiHandler := NewAPIHandler(cfg, userRepo, pending, mailer, jwtIssuer, recommender)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(apiHandler.sessionMiddleware)

	router.HandleFunc("/api/auth/signup", apiHandler.SignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/verify", apiHandler.VerifyHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	router.HandleFunc("/api/spotify/auth-link", apiHandler.SpotifyAuthLinkHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/spotify/authenticate", apiHandler.SpotifyAuthenticateHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/spotify/check", apiHandler.SpotifyCheckHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/songs/recommend", apiHandler.RecommendHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/like", apiHandler.LikeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/unlike", apiHandler.UnlikeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/export", apiHandler.ExportHandler).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopSweeper := make(chan struct{})
	startSweeper(pending, userRepo, cfg.SweepInterval, cfg.AuthCodeTTL, stopSweeper)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")
	close(stopSweeper)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	// Persist whatever the match index learned during this run.
	if err := matcher.SaveCache(); err != nil {
		logger.Error("Failed to save match cache on shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

func getEnvLogLevel() string {
	if level, exists := os.LookupEnv("LOG_LEVEL"); exists {
		return level
	}
	return "info"
}
