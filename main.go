package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/blockduel/config"
	"github.com/wfunc/blockduel/events"
	"github.com/wfunc/blockduel/hub"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/persistence"
	"github.com/wfunc/blockduel/rpc"
	"github.com/wfunc/blockduel/server"
	"github.com/wfunc/blockduel/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init("info", false)
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Development)
	defer logger.Sync()

	// Initialize Database
	db, err := openDatabase(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Infof("Match history stored in %q backend.", cfg.Database.Driver)
	matches := services.NewMatchService(db)

	// Match event feed
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.NATSURL != "" {
		nats, err := events.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to NATS: %v", err)
		}
		publisher = nats
	}
	defer publisher.Close()

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg.Server,
		hub.WithMatchRecorder(matches),
		hub.WithPublisher(publisher),
	)

	// 初始化RPC服务器
	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	if err := rpcServer.Register(rpc.NewAdminService(gameServer.Hub(), matches)); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}
	go rpcServer.Start()
	defer rpcServer.Stop()

	healthServer, err := rpc.NewHealthServer(cfg.Server.GRPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create gRPC health server: %v", err)
	}
	go healthServer.Start()
	defer healthServer.Stop()

	// Start Server
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
		errCh <- gameServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Log.Infof("Received %s, shutting down.", sig)
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("Game server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Warnf("Shutdown: %v", err)
	}
}

func openDatabase(cfg config.DatabaseConfig) (persistence.Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case "", "memory":
		return persistence.NewMemory(), nil
	case "gorm":
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "postgres":
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
