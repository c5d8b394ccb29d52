package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/config"
	"github.com/oksasatya/flyobo-travel-api/internal/container"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
	"github.com/oksasatya/flyobo-travel-api/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	worker, err := container.NewMailWorker(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("mailgun not configured")
	}
	queue, err := mailer.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer queue.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQEmailQueue, "prefetch": cfg.WorkerPrefetch}).Info("email worker listening")
	err = queue.Consume(ctx, cfg.WorkerPrefetch, worker.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("consumer stopped")
		os.Exit(1)
	}
	logger.Info("email worker stopped")
}
