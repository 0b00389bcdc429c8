package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"vending-machine/internal/api"
	"vending-machine/internal/config"
	"vending-machine/internal/db"
	"vending-machine/internal/logger"
	"vending-machine/internal/middleware"
	"vending-machine/internal/service"
	"vending-machine/internal/vending"
	"vending-machine/internal/wallet"
	"vending-machine/pkg"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger := logger.NewLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(zapLogger)
	appLogger := pkg.NewZapLogger(zapLogger)

	ctx := context.Background()

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		log.Fatalf("Failed to connect to node: %v", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		log.Fatalf("Failed to get chain ID: %v", err)
	}

	machine, err := vending.New(common.HexToAddress(cfg.ContractAddress), client)
	if err != nil {
		log.Fatalf("Failed to bind vending machine: %v", err)
	}

	provider, err := wallet.New(wallet.Config{
		KeystoreDir:      cfg.KeystoreDir,
		KeystorePassword: cfg.KeystorePassword,
		PrivateKey:       cfg.PrivateKey,
		ChainID:          chainID,
	})
	if errors.Is(err, wallet.ErrNoProvider) {
		appLogger.Warn("No wallet provider configured, connecting will do nothing")
	} else if err != nil {
		log.Fatalf("Failed to set up wallet: %v", err)
	}

	var journal db.Journal = db.NopJournal{}
	if cfg.JournalEnabled {
		dbConn, err := db.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbConn.Close()

		if err := db.Migrate(dbConn); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		journal = db.NewJournal(dbConn)
	}

	sessions := service.NewSessions(machine, provider, journal, appLogger, middleware.SessionTTL)

	handlers, err := api.NewHandlers(sessions, appLogger)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	handlers.ConnectToken = cfg.ConnectToken
	if cfg.ConnectToken == "" && provider != nil {
		appLogger.Warn("CONNECT_TOKEN is not set, any visitor can spend from the configured wallet")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinLogger(zapLogger))
	r.Use(middleware.SessionMiddleware(cfg.SessionSecret, appLogger))
	api.RegisterHandlers(r, handlers)

	port := fmt.Sprintf(":%s", cfg.ServerPort)
	appLogger.Info("Starting server",
		zap.String("port", cfg.ServerPort),
		zap.String("contract", machine.Address().Hex()),
		zap.String("chainID", chainID.String()),
		zap.Bool("journal", cfg.JournalEnabled))
	if err := r.Run(port); err != nil {
		appLogger.Error("Failed to run server", zap.Error(err))
	}
}
