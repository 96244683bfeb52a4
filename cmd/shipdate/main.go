package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"shipdate/internal/config"
	"shipdate/internal/database"
	"shipdate/internal/handler"
	"shipdate/internal/mw"
	"shipdate/internal/service"
	"shipdate/internal/worker"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(context.Background(), db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	// The schedule cache is best effort; run without it when Redis is down.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = database.NewRedis(context.Background(), cfg.RedisAddr)
		if err != nil {
			slog.Warn("redis unavailable, schedule caching disabled", "error", err)
			rdb = nil
		}
	}

	// Services
	authSvc := service.NewAuthService(db, cfg.AdminLogin)
	scheduleSvc := service.NewScheduleService(db, rdb)
	orderSvc := service.NewOrderService(db, scheduleSvc)

	// Worker
	estimateWorker := worker.NewEstimateWorker(orderSvc, scheduleSvc)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/user/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/user/login", handler.LoginHandler(authSvc, cfg.JWTSecret))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/orders", handler.PlaceOrderHandler(orderSvc))
		r.Get("/api/orders", handler.ListOrdersHandler(orderSvc))
		r.Get("/api/orders/{number}/delivery-date", handler.DeliveryDateHandler(orderSvc))

		r.Get("/api/delivery/busy-days", handler.ListBusyDaysHandler(scheduleSvc))
		r.Get("/api/delivery/settings", handler.GetSettingsHandler(scheduleSvc))

		// Administrator routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin)

			r.Post("/api/delivery/busy-days/toggle", handler.ToggleBusyDayHandler(scheduleSvc))
			r.Put("/api/delivery/settings", handler.UpdateSettingsHandler(scheduleSvc))
			r.Post("/api/orders/{number}/confirm-delivery", handler.ConfirmDeliveryHandler(orderSvc))
		})
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go estimateWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close failed", "error", err)
		}
	}

	slog.Info("server stopped")
}
