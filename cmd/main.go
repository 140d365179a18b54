package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/underbyte/config"
	"github.com/cwrk-planet/underbyte/internal/postgres"
	"github.com/cwrk-planet/underbyte/internal/service"
	"github.com/cwrk-planet/underbyte/internal/sqlite"
	"github.com/cwrk-planet/underbyte/internal/storage"
	grpcx "github.com/cwrk-planet/underbyte/internal/transport/grpc"
	httpx "github.com/cwrk-planet/underbyte/internal/transport/http"
	"github.com/cwrk-planet/underbyte/internal/transport/ws"
	"github.com/cwrk-planet/underbyte/pkg/logger"
)

type stores struct {
	rooms    service.RoomRepository
	messages service.MessageRepository
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Postgres.ToPGConfig(cfg.Logging.Service))
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			rooms:    postgres.NewRoomRepository(db.Pool),
			messages: postgres.NewMessageRepository(db.Pool),
			close:    db.Close,
		}, nil
	default:
		st, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &stores{rooms: st, messages: st, close: func() { _ = st.Close() }}, nil
	}
}

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("logging.level: %v", err)
	}
	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Level:     level,
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting underbyte",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "storage", cfg.Storage.Driver)

	// --- storage ---
	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("open storage", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		slog.Error("uploads dir", "dir", cfg.Uploads.Dir, "err", err)
		os.Exit(1)
	}
	uploads := &storage.Local{
		Dir:          cfg.Uploads.Dir,
		PublicPrefix: cfg.Uploads.PublicPrefix,
		MaxBytes:     cfg.Uploads.MaxBytes,
	}

	// --- realtime core ---
	registry := ws.NewRegistry()
	dispatcher := ws.NewDispatcher(registry)

	// --- services ---
	roomSvc := service.NewRoomService(st.rooms, dispatcher)
	memberSvc := service.NewMemberService(st.rooms, dispatcher)
	chatSvc := service.NewChatService(st.rooms, st.messages, dispatcher)

	lifecycle := ws.NewLifecycle(registry, dispatcher, roomSvc)
	wsServer := ws.NewServer(lifecycle, ws.ConnOptions{
		SendQueue:    cfg.WS.SendQueue,
		WriteTimeout: cfg.WS.WriteTimeout,
		PingEvery:    cfg.WS.PingEvery,
		ReadLimit:    cfg.WS.ReadLimit,
	})

	// --- HTTP ---
	handler := httpx.NewHandler(roomSvc, memberSvc, chatSvc, uploads)
	router := httpx.NewRouter(handler, wsServer, httpx.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		UploadDir:      cfg.Uploads.Dir,
		UploadPrefix:   cfg.Uploads.PublicPrefix,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// --- run servers ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpcx.Server
	if cfg.GRPC.Addr != "" {
		grpcSrv = grpcx.NewServer()
		go func() {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr)
			if err != nil {
				errCh <- err
				return
			}
			slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
			if err := grpcSrv.GRPC.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.SetServing(false)
	}
	if err := wsServer.Shutdown(ctxShutdown); err != nil {
		slog.Warn("ws shutdown", "err", err)
	}
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(ctxShutdown); err != nil {
			slog.Warn("grpc forced stop", "err", err)
		}
	}
	slog.Info("stopped")
}
