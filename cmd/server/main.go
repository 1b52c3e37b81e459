package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noteapp/internal/config"
	"noteapp/internal/handler"
	"noteapp/internal/logger"
	"noteapp/internal/middleware"
	"noteapp/internal/repository"
	"noteapp/internal/rpcapi"
	"noteapp/internal/service"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	userRepo, noteRepo, err := openRepositories(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	userService := service.NewUserService(userRepo, log)
	noteService := service.NewNoteService(noteRepo)

	r := handler.NewRouter(userService, noteService, log)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, time.Minute)
		defer limiter.Stop()
		r.Use(limiter.Middleware)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	rpcAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.RPC.Port)
	lis, err := net.Listen("tcp", rpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", rpcAddr, err)
	}
	rpcServer := grpc.NewServer()
	rpcImpl := handler.NewRPCServer(userService, noteService, log)
	rpcapi.RegisterUserServiceServer(rpcServer, rpcImpl)
	rpcapi.RegisterNoteServiceServer(rpcServer, rpcImpl)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting rpc server", "addr", rpcAddr)
		if err := rpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("rpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rpcServer.GracefulStop()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (repository.UserRepository, repository.NoteRepository, error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		return store.Users(), store.Notes(), nil
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
	}

	exists, err := client.DBExists(ctx, cfg.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, cfg.Name); err != nil {
			return nil, nil, fmt.Errorf("failed to create database: %w", err)
		}
		log.Info("created database", "name", cfg.Name)
	}

	log.Info("connected to CouchDB", "host", cfg.Host, "port", cfg.Port)
	return repository.NewUserRepository(client, cfg.Name), repository.NewNoteRepository(client, cfg.Name), nil
}
