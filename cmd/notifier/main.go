package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GarimaGupta40/Main-Intercorp/internal/config"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
	"github.com/GarimaGupta40/Main-Intercorp/internal/email"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/kafka"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
	"github.com/GarimaGupta40/Main-Intercorp/internal/notification"
)

const consumerGroup = "email-notifier"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Notifier] Invalid configuration: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("[Notifier] KAFKA_BROKERS is required")
	}
	if cfg.KVBackend == "memory" {
		log.Fatal("[Notifier] KV_BACKEND must be a shared store; memory is private to the API process")
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Intercorp Store - Email Notification Service")
	log.Println("[Notifier] ========================================")
	cfg.LogSummary("Notifier")
	log.Printf("[Notifier] Group: %s", consumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s from %s", cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)

	kv, closer, err := store.Open(ctx, store.Options{
		Backend:     cfg.KVBackend,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		DynamoTable: cfg.DynamoTable,
	})
	if err != nil {
		log.Fatalf("[Notifier] Failed to open store: %v", err)
	}
	defer closer.Close()

	// Read-only use: the notifier never publishes changes of its own
	orders := order.NewStore(kv, nil)
	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, orders)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup)
	defer consumer.Close()

	go func() {
		log.Printf("[Notifier] Listening to topic: %s", cfg.KafkaTopic)
		if err := consumer.Consume(ctx, handler.HandleChange); err != nil && ctx.Err() == nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}
