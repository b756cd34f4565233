package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/restaurant-orders/internal/app"
	"github.com/linemk/restaurant-orders/internal/config"
	"github.com/linemk/restaurant-orders/internal/events"
	"github.com/linemk/restaurant-orders/internal/lib/logger"
	"github.com/linemk/restaurant-orders/internal/ordernum"
	"github.com/linemk/restaurant-orders/internal/service"
	"github.com/linemk/restaurant-orders/internal/session"
	"github.com/linemk/restaurant-orders/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// объект приложения с подключениями к БД и Redis
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("failed to close app", slog.Any("error", err))
		}
	}()

	// реализация слоев по работе с БД по каждому направлению
	menuRepo := storage.NewMenuRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	inquiryRepo := storage.NewInquiryRepository(application.DB)

	allocator := ordernum.NewAllocator(orderRepo,
		ordernum.WithPrefix(cfg.Orders.NumberPrefix),
		ordernum.WithMaxAttempts(cfg.Orders.MaxAttempts),
	)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		log.Info("publishing order events", slog.String("topic", cfg.Kafka.Topic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close publisher", slog.Any("error", err))
		}
	}()

	services := app.Services{
		Menu:      service.NewMenuService(log, menuRepo),
		Cart:      service.NewCartService(log, menuRepo, cfg.Session.CartKey),
		Checkout:  service.NewCheckoutService(log, application.DB, menuRepo, orderRepo, allocator, publisher, cfg.Session.CartKey),
		Dashboard: service.NewDashboardService(log, orderRepo),
		Inquiry:   service.NewInquiryService(log, inquiryRepo),
	}

	router := app.NewRouter(log, services, app.RouterOptions{
		Sessions: session.NewRedisStore(application.Redis, cfg.Session.TTL),
		Cookie: session.CookieOptions{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.SecureCookie,
		},
		JWTSecret: cfg.JWT.Secret,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
