package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	adminsvc "campus-booking/internal/admin"
	admin_api "campus-booking/internal/admin/api"
	"campus-booking/internal/auth"
	"campus-booking/internal/booking"
	booking_api "campus-booking/internal/booking/api"
	booking_db "campus-booking/internal/booking/db"
	rediswrap "campus-booking/internal/booking/redis"
	"campus-booking/internal/catalog"
	catalog_api "campus-booking/internal/catalog/api"
	catalog_db "campus-booking/internal/catalog/db"
	"campus-booking/internal/config"
	"campus-booking/internal/database/migrations"
	"campus-booking/internal/inventory"
	"campus-booking/internal/kafka"
	"campus-booking/internal/logger"
	"campus-booking/internal/models"
	"campus-booking/internal/passes"
	passes_api "campus-booking/internal/passes/api"
	passes_db "campus-booking/internal/passes/db"
	"campus-booking/internal/passes/qr"
	"campus-booking/internal/sse"
	"campus-booking/internal/users"
	users_api "campus-booking/internal/users/api"
	users_db "campus-booking/internal/users/db"
)

// passIssuer bridges the booking service's fire-and-forget issuance hook to
// the pass service.
type passIssuer struct {
	svc *passes.Service
}

func (p passIssuer) IssueForBooking(ctx context.Context, b models.Booking) error {
	_, err := p.svc.IssueForBooking(ctx, &b)
	return err
}

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.RedisAddr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Campus Booking Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	defer runner.Close()

	var producer booking.Publisher = kafka.NoopProducer{}
	if cfg.KafkaEnabled {
		brokers := []string{cfg.KafkaAddr}
		kafkaProducer := kafka.NewProducer(brokers)
		defer kafkaProducer.Close()
		if err := kafka.EnsureTopicsExist(brokers, kafka.RequiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
		producer = kafkaProducer
		logger.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %s", cfg.KafkaAddr))
	} else {
		logger.Info("KAFKA", "Kafka disabled, booking events will not be published")
	}

	broadcaster := sse.NewBroadcaster()

	inventoryStore := &inventory.Store{Bun: bunDB, MaxRetries: cfg.ReserveMaxRetries}

	passService := passes.NewService(
		passes_db.NewDB(bunDB),
		qr.NewGenerator(cfg.QRSecretKey),
		logger,
	)

	bookingService := booking.NewService(
		&booking_db.DB{Bun: bunDB},
		inventoryStore,
		rediswrap.NewLocker(redisClient, time.Duration(cfg.ShowLockTTLSeconds)*time.Second),
		producer,
		logger,
	)
	bookingService.Passes = passIssuer{svc: passService}
	bookingService.Notifier = broadcaster
	bookingService.LockWait = time.Duration(cfg.ShowLockWaitMS) * time.Millisecond

	catalogService := catalog.NewService(catalog_db.NewDB(bunDB), catalog.NewSeedCatalog(), logger)
	userService := users.NewService(users_db.NewDB(bunDB), bookingService, logger)
	adminService := adminsvc.NewService(bunDB)

	bookingHandler := &booking_api.Handler{Bookings: bookingService, Logger: logger}
	catalogHandler := &catalog_api.Handler{Catalog: catalogService, Seats: broadcaster, Logger: logger}
	userHandler := &users_api.Handler{Users: userService, Logger: logger}
	adminHandler := &admin_api.Handler{Admin: adminService, Logger: logger}
	passHandler := &passes_api.Handler{Passes: passService, Bookings: bookingService, Logger: logger}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", catalogHandler.ListEvents)
			r.Post("/", catalogHandler.CreateEvent)
			r.Get("/{eventId}", catalogHandler.GetEvent)
			r.Put("/{eventId}", catalogHandler.UpdateEvent)
			r.Delete("/{eventId}", catalogHandler.DeleteEvent)
			r.Get("/{eventId}/shows", catalogHandler.GetShowsByEvent)
		})
		logger.Info("ROUTER", "Event routes registered under /api/events")

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", catalogHandler.ListShows)
			r.Post("/", catalogHandler.CreateShow)
			r.Get("/event/{eventId}", catalogHandler.GetShowsByEvent)
			r.Get("/{showId}", catalogHandler.GetShow)
			r.Put("/{showId}", catalogHandler.UpdateShow)
			r.Delete("/{showId}", catalogHandler.DeleteShow)
			r.Get("/{showId}/seats", catalogHandler.GetAvailableSeats)
			r.Get("/{showId}/seats/stream", catalogHandler.StreamSeats)
		})
		logger.Info("ROUTER", "Show routes registered under /api/shows")

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingHandler.CreateBooking)
			r.Get("/", bookingHandler.ListBookings)
			r.Get("/user/{email}", bookingHandler.GetUserBookings)
			r.Get("/{bookingId}", bookingHandler.GetBooking)
			r.Put("/{bookingId}/cancel", bookingHandler.CancelBooking)
			r.Delete("/{bookingId}", bookingHandler.DeleteBooking)
			r.Get("/{bookingId}/pass", passHandler.GetPass)
			r.Post("/{bookingId}/pass/checkin", passHandler.CheckIn)
		})
		logger.Info("ROUTER", "Booking routes registered under /api/bookings")

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.SyncUser)
			r.Get("/", userHandler.ListUsers)
			r.Get("/{email}", userHandler.GetUser)
			r.Delete("/{email}", userHandler.DeleteUser)
			r.Get("/{email}/profile", userHandler.GetProfile)
		})
		logger.Info("ROUTER", "User routes registered under /api/users")

		r.Route("/admin", func(r chi.Router) {
			if cfg.OIDCIssuer != "" {
				verify, err := auth.Middleware(ctx, cfg.OIDCIssuer)
				if err != nil {
					logger.Fatal("AUTH", fmt.Sprintf("OIDC middleware setup failed: %v", err))
				}
				r.Use(verify)
				logger.Info("AUTH", "OIDC middleware applied to admin routes")
			} else {
				logger.Warn("AUTH", "OIDC_ISSUER not set, admin routes are unauthenticated")
			}
			adminHandler.RegisterRoutes(r)
		})
		logger.Info("ROUTER", "Admin routes registered under /api/admin")
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Campus Booking Service running on :%s", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Campus Booking Service shutdown complete")
	}
}
