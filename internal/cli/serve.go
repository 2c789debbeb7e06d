package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"practiso-archive-service/internal/app"
	"practiso-archive-service/internal/config"
	"practiso-archive-service/internal/infra/memory"
	pgcatalog "practiso-archive-service/internal/infra/postgres"
	redissession "practiso-archive-service/internal/infra/redis"
	mcptransport "practiso-archive-service/internal/transport/mcp"
)

const version = "0.1.0"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, addr, transport *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the archive tool server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *addr, *transport)
		},
	}
}

func runServer(ctx context.Context, configPath, addrFlag, transportFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var store app.SessionRepository
	if redisClient != nil {
		store = redissession.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	var catalog app.ArchiveCatalog = memory.NewCatalog()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		catalog = pgcatalog.NewCatalog(pool)
	}

	fallbackDir := cfg.Archive.FallbackDir
	if fallbackDir == "" {
		fallbackDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	manager := app.NewSessionManager(store, catalog, fallbackDir)
	server := mcptransport.NewServer(manager, version)

	transport := transportFlag
	if transport == "" {
		transport = cfg.Server.Transport
	}
	if transport == "" {
		transport = "stdio"
	}

	switch transport {
	case "stdio":
		err = runStdio(ctx, server)
	case "http":
		addr := addrFlag
		if addr == "" {
			addr = cfg.Server.Addr
		}
		if addr == "" {
			addr = ":8080"
		}
		err = runHTTP(ctx, server, addr)
	default:
		return fmt.Errorf("unknown transport %q", transport)
	}
	if err != nil {
		return err
	}

	// The rescue pass runs after the transport is down so no tool call can
	// race a teardown.
	teardownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	manager.TeardownAll(teardownCtx)
	return nil
}

func runStdio(ctx context.Context, server *mcptransport.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("serving archive tools on stdio")
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runHTTP(ctx context.Context, server *mcptransport.Server, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/mcp", server.Handler())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("serving archive tools on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
