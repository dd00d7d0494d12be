package main // Entry point package

import (
	"context"      // Shutdown deadlines and background workers
	"database/sql" // Database handle for the MySQL backend
	"errors"       // Distinguish a clean server close
	"log"          // Logging library
	"net/http"     // http.ErrServerClosed
	"os"           // Signal channel type
	"os/signal"    // Graceful shutdown on SIGINT/SIGTERM
	"syscall"      // Signal numbers
	"time"         // Startup timeouts

	"github.com/joho/godotenv"                      // Optional .env loading
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Request logging and panic recovery

	"github.com/iliyamo/airport-checkin/internal/config"     // Internal config loader
	"github.com/iliyamo/airport-checkin/internal/database"   // MySQL open, migrate and seed
	"github.com/iliyamo/airport-checkin/internal/handler"    // HTTP handlers
	"github.com/iliyamo/airport-checkin/internal/middleware" // Redis token bucket
	"github.com/iliyamo/airport-checkin/internal/queue"      // RabbitMQ check-in events
	"github.com/iliyamo/airport-checkin/internal/realtime"   // Websocket sessions and fan-out
	"github.com/iliyamo/airport-checkin/internal/repository" // Memory and MySQL repositories
	"github.com/iliyamo/airport-checkin/internal/router"     // Internal router setup
	"github.com/iliyamo/airport-checkin/internal/seatlock"   // Per-seat lock table
	"github.com/iliyamo/airport-checkin/internal/seatstore"  // Authoritative seat state
	"github.com/iliyamo/airport-checkin/internal/service"    // Check-in coordinator
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded, using process environment")
	}
	cfg := config.Load() // Load environment config

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repo, db := openRepository(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	store := seatstore.New(repo)
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := store.Load(loadCtx, repo); err != nil {
		log.Fatalf("load seat inventory: %v", err)
	}
	cancel()

	registry := realtime.NewRegistry()
	opts := service.Options{
		Store:       store,
		Locks:       seatlock.NewTable(),
		Passengers:  repo,
		Records:     repo,
		Notifier:    realtime.NewBroadcaster(registry),
		LockTimeout: cfg.LockTimeout,
	}
	if cfg.CheckInEventsEnabled {
		opts.Events = queue.NewPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartCheckInConsumer(ctx, cfg.RabbitURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("checkin-consumer: stopped: %v", err)
			}
		}()
	}
	svc := service.NewCoordinator(opts)

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	var ping handler.Pinger
	if db != nil {
		ping = db
	}
	router.RegisterRoutes(e, ping) // Register application routes
	router.RegisterFlights(e, handler.NewFlightHandler(svc), limit)
	router.RegisterPassengers(e, handler.NewPassengerHandler(svc), limit)
	gateway := realtime.NewGateway(registry, svc, config.LoadSessionConfig())
	router.RegisterRealtime(e, gateway)

	addr := ":" + cfg.Port                                                            // Address string with port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreBackend) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")
	stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	// hijacked websocket connections are not covered by e.Shutdown
	if err := gateway.Shutdown(shutdownCtx); err != nil {
		log.Printf("websocket sessions did not drain: %v", err)
	}
	log.Println("server stopped")
}

// openRepository builds the configured storage backend.  For MySQL the
// schema is migrated and, on an empty database, the demo inventory seeded.
func openRepository(ctx context.Context, cfg config.Config) (repository.Repository, *sql.DB) {
	if cfg.StoreBackend != config.BackendMySQL {
		log.Printf("using in-memory store with demo inventory")
		return repository.NewSeededMemoryRepo(), nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.DBSeed {
		if err := database.Seed(ctx, db, repository.SeedData()); err != nil {
			log.Fatalf("%v", err)
		}
	}
	return repository.NewMySQLRepo(db), db
}
