package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ms-users/internal/config"
	"ms-users/internal/kafka"
	"ms-users/internal/logger"
	"ms-users/internal/models"
)

func describe(event models.UserEvent) string {
	if event.User != nil {
		return fmt.Sprintf("%s user=%d name=%q email=%q id=%s", event.Type, event.UserID, event.User.Name, event.User.Email, event.EventID)
	}
	return fmt.Sprintf("%s user=%d id=%s", event.Type, event.UserID, event.EventID)
}

func main() {
	_ = config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWriter(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topics := cfg.Kafka.Topics.All()
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics, cfg.Kafka.GroupID, log)
	defer consumer.Close()

	log.Info("KAFKA", fmt.Sprintf("Tailing %v as group %s", topics, cfg.Kafka.GroupID))
	err = consumer.Start(ctx, func(event models.UserEvent) {
		log.LogUser(string(event.Type), event.UserID, describe(event))
	})
	if err != nil {
		log.Fatal("KAFKA", err.Error())
	}
	log.Info("KAFKA", "Consumer stopped")
}
