package container

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/config"
	"github.com/oksasatya/flyobo-travel-api/internal/application"
	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/gcs"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/memory"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/postgres"
	"github.com/oksasatya/flyobo-travel-api/pkg/mailer"
	mailtpl "github.com/oksasatya/flyobo-travel-api/pkg/mailer/templates"
)

// OpenUserStore connects the store named by STORE_DRIVER. The returned func
// releases it.
func OpenUserStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repo.UserRepository, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigrationsEnabled {
			logger.Info("running migrations")
			if err := postgres.Migrate(pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return postgres.NewUserRepository(pool), func(context.Context) error { pool.Close(); return nil }, nil

	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		users := mongodb.NewUserRepository(client.Database(cfg.MongoDatabase))
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("indexes: %w", err)
		}
		return users, client.Disconnect, nil

	case config.StoreMemory:
		logger.Warn("using the in-memory user store, accounts are lost on restart")
		return memory.NewUserRepository(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// NewDispatcher picks how mail leaves the API process:
//   - MAIL_SEND_ENABLED=false: logged only
//   - MAIL_TRANSPORT=queue: published to RabbitMQ for cmd/email_worker
//   - MAIL_TRANSPORT=direct: rendered and sent through Mailgun inline
func NewDispatcher(cfg *config.Config, logger *logrus.Logger) (mailer.Dispatcher, func(context.Context) error, error) {
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false, emails are logged instead of sent")
		return mailer.LogOnly{Logger: logger}, nil, nil
	}
	switch cfg.MailTransport {
	case config.MailQueue:
		if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
			return nil, nil, errors.New("RABBITMQ_URL and RABBITMQ_EMAIL_QUEUE are required for the queue transport")
		}
		q, err := mailer.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("amqp: %w", err)
		}
		return q, func(context.Context) error { return q.Close() }, nil
	case config.MailDirect:
		w, err := NewMailWorker(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return mailer.Direct{Worker: w}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}

// NewMailWorker builds the Mailgun-backed worker used by the direct transport
// and by cmd/email_worker.
func NewMailWorker(cfg *config.Config, logger *logrus.Logger) (*mailer.Worker, error) {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		return nil, errors.New("MAILGUN_DOMAIN, MAILGUN_API_KEY and MAILGUN_SENDER are required")
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender).WithBaseURL(cfg.MailgunBaseURL)
	return &mailer.Worker{Sender: mg, Geo: mailtpl.IPAPIResolver{}, Logger: logger}, nil
}

func gcsAvatars(client *storage.Client, bucket string) application.AvatarStore {
	return gcs.NewAvatarStore(client, bucket)
}
