//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
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

var chatSet = wire.NewSet(
	provideLocalStore,
	demostore.NewGateway,
	provideDemoExchanger,
	provideLiveGateway,
	provideLiveExchanger,
	provideChatRoomService,
	provideRevealManager,
	chatroomhandler.NewHandler,
)

// BuildApplication assembles the chat API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		provideLogger,
		chatSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func provideLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

func provideLocalStore(cfg *config.Config) (*localstore.Store, error) {
	return localstore.Open(cfg.DemoDataDir)
}

func provideDemoExchanger(cfg *config.Config, log zerolog.Logger) *demoprovider.Exchanger {
	return demoprovider.NewExchanger(cfg.DemoResponseDelay, log)
}

func provideLiveGateway(ctx context.Context, cfg *config.Config, demo *demostore.Gateway, log zerolog.Logger) (chatroom.Gateway, error) {
	if cfg.DemoModeForced {
		return demo, nil
	}
	db, err := database.Connect(database.Config{
		DatabaseURL: cfg.DBPostgresqlDSN,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxLifetime: cfg.DBConnLifetime,
		LogLevel:    gormlogger.Warn,
	})
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return chatroomrepo.NewRepository(db), nil
}

func provideLiveExchanger(cfg *config.Config, demo *demoprovider.Exchanger, log zerolog.Logger) (provider.Exchanger, error) {
	if cfg.DemoModeForced {
		return demo, nil
	}
	creds, err := config.LoadModelCredentialConfig(cfg.ModelCredentialFile)
	if err != nil {
		return nil, err
	}
	return dify.NewClient(cfg, creds, log), nil
}

func provideChatRoomService(live chatroom.Gateway, demo *demostore.Gateway, liveExch provider.Exchanger, demoExch *demoprovider.Exchanger, log zerolog.Logger) *chatroom.Service {
	return chatroom.NewService(live, demo, liveExch, demoExch, log)
}

func provideRevealManager(cfg *config.Config, store *localstore.Store, log zerolog.Logger) *reveal.Manager {
	return reveal.NewManager(reveal.Config{
		CharInterval:    cfg.RevealCharInterval,
		MinRevealLength: cfg.RevealMinLength,
	}, localstore.NewSeenStore(store), log)
}
