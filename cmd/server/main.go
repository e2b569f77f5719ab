package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbeisheim/clonechess-backend/internal/config"
	"github.com/benbeisheim/clonechess-backend/internal/controller"
	"github.com/benbeisheim/clonechess-backend/internal/events"
	"github.com/benbeisheim/clonechess-backend/internal/middleware"
	"github.com/benbeisheim/clonechess-backend/internal/model"
	"github.com/benbeisheim/clonechess-backend/internal/obslog"
	"github.com/benbeisheim/clonechess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("CLONECHESS_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := obslog.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = obslog.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, err := newPublisher(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("event_publisher_init", zap.Error(err))
	}
	defer func() { _ = publisher.Close() }()

	gameManager := service.NewGameManager(service.ManagerOptions{
		Rules: model.Rules{
			EnforceTurn:    cfg.Rules.EnforceTurn,
			HaltOnTerminal: cfg.Rules.HaltOnTerminal,
		},
		MaxGames:  cfg.Games.MaxConcurrent,
		Publisher: publisher,
		Logger:    log,
	})
	gameService := service.NewGameService(gameManager)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	origins := strings.Join(cfg.Server.AllowedOrigins, ", ")
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET, POST, OPTIONS",
		// fiber refuses credentials together with a wildcard origin
		AllowCredentials: origins != "*",
	}))
	app.Use(middleware.RequestLogger(log))

	controller.Register(app, gameService, controller.RouteConfig{
		WSOrigins:         cfg.Server.AllowedOrigins,
		WSReadBufferSize:  cfg.Server.WSReadBufferSize,
		WSWriteBufferSize: cfg.Server.WSWriteBufferSize,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listen", zap.String("addr", cfg.Server.Addr))
		errCh <- app.Listen(cfg.Server.Addr)
	}()

	select {
	case <-ctx.Done():
		log.Info("server_shutdown")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error("server_shutdown_error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			log.Fatal("server_listen_error", zap.Error(err))
		}
	}
}

func newPublisher(ctx context.Context, cfg config.RedisConfig) (events.Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return events.Nop{}, nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pub, err := events.DialRedis(dialCtx, cfg.URL, cfg.Channel)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: %w", err)
	}
	return pub, nil
}
