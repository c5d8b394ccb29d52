package container

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/config"
	"github.com/oksasatya/flyobo-travel-api/internal/application"
	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/internal/interface/realtime"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
	"github.com/oksasatya/flyobo-travel-api/pkg/mailer"
	mailtpl "github.com/oksasatya/flyobo-travel-api/pkg/mailer/templates"
)

// Container holds the components built once at startup. Router modules are
// wired from it.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users   repo.UserRepository
	Redis   *redis.Client
	ES      *elasticsearch.Client
	GCS     *storage.Client
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager
	Mail    mailer.Dispatcher
	Hub     *realtime.Hub

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New connects every configured backend. Optional backends (redis,
// elasticsearch, gcs) are left nil when not configured. On error everything
// opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (c *Container, err error) {
	c = &Container{
		Config:  cfg,
		Logger:  logger,
		JWT:     helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn),
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.IsProduction()),
	}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
			c = nil
		}
	}()

	users, closeStore, err := OpenUserStore(ctx, cfg, logger)
	if err != nil {
		return c, fmt.Errorf("user store: %w", err)
	}
	c.Users = users
	c.OnClose(cfg.StoreDriver, closeStore)

	if c.Redis, err = helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		return c, fmt.Errorf("redis: %w", err)
	}
	if c.Redis != nil {
		c.OnClose("redis", func(context.Context) error { return c.Redis.Close() })
	} else {
		logger.Warn("REDIS_ADDR not set, rate limits are kept in process")
	}

	if c.ES, err = helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass); err != nil {
		return c, fmt.Errorf("elasticsearch: %w", err)
	}
	if c.ES != nil {
		if err := helpers.EnsureIndex(ctx, c.ES, cfg.ESUsersIndex, application.UsersIndexMapping); err != nil {
			helpers.LogWarn(logger, "ensure users index failed", err, logrus.Fields{"index": cfg.ESUsersIndex})
		}
	}

	if cfg.GCSBucket != "" {
		if c.GCS, err = helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSON); err != nil {
			return c, fmt.Errorf("gcs: %w", err)
		}
		c.OnClose("gcs", func(context.Context) error { return c.GCS.Close() })
	}

	mail, closeMail, err := NewDispatcher(cfg, logger)
	if err != nil {
		return c, fmt.Errorf("mail: %w", err)
	}
	c.Mail = mail
	c.OnClose("mail", closeMail)

	c.Hub = realtime.NewHub(logger, cfg.CORSOrigins())
	c.OnClose("sockets", func(context.Context) error { c.Hub.Close(); return nil })
	return c, nil
}

// OnClose registers fn to run on Close. Closers run in reverse order.
func (c *Container) OnClose(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

// Close releases everything registered with OnClose.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		cl := c.closers[i]
		if err := cl.fn(ctx); err != nil {
			helpers.LogWarn(c.Logger, "close failed", err, logrus.Fields{"component": cl.name})
			errs = append(errs, fmt.Errorf("%s: %w", cl.name, err))
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Brand is the branding passed to every email template.
func (c *Container) Brand() mailtpl.Brand {
	return mailtpl.Brand{
		AppName:     c.Config.AppName,
		CompanyName: c.Config.CompanyName,
		LogoURL:     c.Config.LogoURL,
		SupportURL:  c.Config.SupportURL,
		FrontendURL: c.Config.FrontendURL,
	}
}

// UserIndex returns the search index, disabled when elasticsearch is off.
func (c *Container) UserIndex() *application.UserIndex {
	return &application.UserIndex{ES: c.ES, Name: c.Config.ESUsersIndex, Logger: c.Logger}
}

// AvatarStore returns nil when no bucket is configured.
func (c *Container) AvatarStore() application.AvatarStore {
	if c.GCS == nil {
		return nil
	}
	return gcsAvatars(c.GCS, c.Config.GCSBucket)
}
