package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"lesson-server/services/chat-api/internal/config"
	"lesson-server/services/chat-api/internal/domain/chatroom"
	"lesson-server/services/chat-api/internal/domain/provider"
	"lesson-server/services/chat-api/internal/domain/reveal"
	"lesson-server/services/chat-api/internal/infrastructure/database"
	"lesson-server/services/chat-api/internal/infrastructure/database/repository/chatroomrepo"
	"lesson-server/services/chat-api/internal/infrastructure/demoprovider"
	"lesson-server/services/chat-api/internal/infrastructure/demostore"
	"lesson-server/services/chat-api/internal/infrastructure/dify"
	"lesson-server/services/chat-api/internal/infrastructure/localstore"
	"lesson-server/services/chat-api/internal/infrastructure/logger"
	"lesson-server/services/chat-api/internal/interfaces/httpserver"
	"lesson-server/services/chat-api/internal/interfaces/httpserver/handlers/chatroomhandler"
)

// @title Chat API
// @version 1.0
// @description AI chat room service for the lesson platform
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := localstore.Open(cfg.DemoDataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("open local store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close local store")
		}
	}()

	demoGateway := demostore.NewGateway(store, log)
	if err := demoGateway.Seed(ctx, cfg.DemoOwnerID); err != nil {
		log.Fatal().Err(err).Msg("seed demo rooms")
	}
	demoExchanger := demoprovider.NewExchanger(cfg.DemoResponseDelay, log)

	var liveGateway chatroom.Gateway = demoGateway
	var liveExchanger provider.Exchanger = demoExchanger
	if !cfg.DemoModeForced {
		db, err := database.Connect(database.Config{
			DatabaseURL: cfg.DBPostgresqlDSN,
			MaxIdle:     cfg.DBMaxIdleConns,
			MaxOpen:     cfg.DBMaxOpenConns,
			MaxLifetime: cfg.DBConnLifetime,
			LogLevel:    gormlogger.Warn,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
		liveGateway = chatroomrepo.NewRepository(db)

		creds, err := config.LoadModelCredentialConfig(cfg.ModelCredentialFile)
		if err != nil {
			log.Fatal().Err(err).Msg("load model credentials")
		}
		liveExchanger = dify.NewClient(cfg, creds, log)
	}

	seenStore := localstore.NewSeenStore(store)
	revealManager := reveal.NewManager(reveal.Config{
		CharInterval:    cfg.RevealCharInterval,
		MinRevealLength: cfg.RevealMinLength,
	}, seenStore, log)

	chatRoomService := chatroom.NewService(liveGateway, demoGateway, liveExchanger, demoExchanger, log)
	chatRoomHandler := chatroomhandler.NewHandler(cfg, chatRoomService, revealManager, log)

	httpServer := httpserver.New(cfg, log, chatRoomHandler)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
