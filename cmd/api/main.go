package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/iamasit07/tic-tac-toe/backend/internal/config"
	"github.com/iamasit07/tic-tac-toe/backend/internal/repository/postgres"
	redisrepo "github.com/iamasit07/tic-tac-toe/backend/internal/repository/redis"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/cleanup"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/dispatch"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/game"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/player"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/subscription"
	transportHttp "github.com/iamasit07/tic-tac-toe/backend/internal/transport/http"
	"github.com/iamasit07/tic-tac-toe/backend/internal/transport/http/middleware"
	"github.com/iamasit07/tic-tac-toe/backend/internal/transport/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Durable store (Redis)
	rdb, err := redisrepo.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer rdb.Close()

	redisrepo.EnableKeyspaceEvents(ctx, rdb)

	feed := redisrepo.NewEventFeed(rdb, cfg.RedisDB)
	feed.Start(ctx)

	// 2. Repositories
	playerRepo := redisrepo.NewPlayerRepo(rdb, cfg.PlayerTTL)
	gameRepo := redisrepo.NewGameRepo(rdb, cfg.GameTTL)
	subsRepo := redisrepo.NewSubscriptionRepo(rdb, feed)

	// 2b. History archive (optional)
	var archive game.Archiver
	var historyRepo *postgres.HistoryRepo
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := postgres.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		historyRepo = postgres.NewHistoryRepo(db)
		archive = historyRepo
	} else {
		log.Println("[DB] DATABASE_URL not set, game history archive disabled")
	}

	// 3. Services
	playerService := player.NewService(playerRepo)
	gameService := game.NewService(gameRepo, playerService, archive, cfg.GameTTL, cfg.MoveRetryAttempts)
	registry := subscription.NewRegistry(subsRepo)

	connManager := websocket.NewConnectionManager()
	dispatcher := dispatch.NewDispatcher(registry, connManager)

	// 4. Cleanup cascade
	worker := cleanup.NewWorker(registry, gameRepo, feed.Events(), cfg.SweepInterval)
	worker.Start(ctx)

	// 5. Transports
	playerHandler := transportHttp.NewPlayerHandler(playerService)
	gameHandler := transportHttp.NewGameHandler(gameService)
	wsHandler := websocket.NewHandler(connManager, gameService, registry, dispatcher)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware())

	router.POST("/api/players", playerHandler.Register)
	router.GET("/api/players/:id", playerHandler.Get)
	router.POST("/api/players/validate", playerHandler.Validate)

	router.POST("/api/games", gameHandler.NewGame)
	router.POST("/api/games/:id/join", gameHandler.JoinGame)
	router.POST("/api/games/:id/move", gameHandler.MakeMove)
	router.GET("/api/games/:id", gameHandler.GetGame)

	if historyRepo != nil {
		historyHandler := transportHttp.NewHistoryHandler(historyRepo)
		router.GET("/api/history/:playerId", historyHandler.GetHistory)
	}

	router.GET("/ws", func(c *gin.Context) {
		wsHandler.HandleWebSocket(c.Writer, c.Request)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
