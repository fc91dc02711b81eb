package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/api"
	"github.com/GarimaGupta40/Main-Intercorp/internal/auth"
	"github.com/GarimaGupta40/Main-Intercorp/internal/checkout"
	"github.com/GarimaGupta40/Main-Intercorp/internal/config"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/cart"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/inventory"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/loyalty"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/product"
	"github.com/GarimaGupta40/Main-Intercorp/internal/events"
	"github.com/GarimaGupta40/Main-Intercorp/internal/funnel"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/kafka"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
	"github.com/GarimaGupta40/Main-Intercorp/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Invalid configuration: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Intercorp Store")
	log.Println("[API] ========================================")
	cfg.LogSummary("API")

	kv, closer, err := store.Open(ctx, store.Options{
		Backend:     cfg.KVBackend,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		DynamoTable: cfg.DynamoTable,
	})
	if err != nil {
		log.Fatalf("[API] Failed to open store: %v", err)
	}
	defer closer.Close()

	bus := events.NewBus()
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events.NewKafkaForwarder(producer).Attach(bus)
		log.Printf("[API] Forwarding changes to Kafka topic %s", cfg.KafkaTopic)
	}

	biz := cfg.Business
	catalog := product.NewCatalog(kv, bus)
	orders := order.NewStore(kv, bus)
	notifications := admin.NewNotifications(kv)
	activity := admin.NewActivityLog(kv, notifications)
	engine := loyalty.NewEngine(kv, orders, activity, biz.LoyaltyPercent)
	tracker := funnel.NewTracker(kv)

	notification.NewAdminFeed(notifications, orders).Attach(bus)

	handlers := api.NewHandlers(api.Services{
		Catalog:  catalog,
		Orders:   orders,
		Loyalty:  engine,
		Carts:    cart.NewRegistry(),
		Checkout: checkout.NewWorkflow(orders, engine, tracker, checkout.Config{Delay: cfg.CheckoutDelay}),
		Funnel:   tracker,
		Analyzer: inventory.NewAnalyzer(inventory.Policy{
			LowStockThreshold:   biz.LowStockThreshold,
			SlowMovingThreshold: biz.SlowMovingThreshold,
			SalesWindow:         biz.SalesWindow,
			ExpiryWindow:        biz.ExpiryWindow,
		}),
		Clearance:     inventory.NewClearance(catalog, activity),
		Activity:      activity,
		Notifications: notifications,
		AlertPolicy:   admin.AlertPolicy{LowStockThreshold: biz.LowStockThreshold, ExpiryWindow: biz.ExpiryWindow},
	})

	secret := cfg.JWTSecret
	if secret == "" {
		// Tokens signed by anyone else will fail, so every caller is a guest
		secret = uuid.NewString() + uuid.NewString()
		log.Println("[API] JWT_SECRET not set; sign-in and admin routes are disabled")
	}
	router := api.NewRouter(handlers, auth.NewJWTService(secret, 24*time.Hour))

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Forced shutdown: %v", err)
	}
}
