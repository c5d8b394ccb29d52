package container

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/config"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/memory"
	"github.com/oksasatya/flyobo-travel-api/pkg/mailer"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func localConfig() *config.Config {
	cfg := config.Load()
	cfg.StoreDriver = config.StoreMemory
	cfg.MailSendEnabled = false
	cfg.RedisAddr = ""
	cfg.ElasticsearchAddrs = ""
	cfg.GCSBucket = ""
	return cfg
}

func TestNewWithLocalBackends(t *testing.T) {
	c, err := New(context.Background(), localConfig(), quiet())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	require.IsType(t, &memory.UserRepository{}, c.Users)
	require.IsType(t, mailer.LogOnly{}, c.Mail)
	require.Nil(t, c.Redis)
	require.Nil(t, c.ES)
	require.Nil(t, c.AvatarStore())
	require.NotNil(t, c.Hub)
	require.Equal(t, "Flyobo", c.Brand().CompanyName)
}

func TestNewRejectsUnknownStore(t *testing.T) {
	cfg := localConfig()
	cfg.StoreDriver = "sqlite"
	_, err := New(context.Background(), cfg, quiet())
	require.ErrorContains(t, err, "unknown store driver")
}

func TestDirectTransportNeedsMailgun(t *testing.T) {
	cfg := localConfig()
	cfg.MailSendEnabled = true
	cfg.MailTransport = config.MailDirect
	cfg.MailgunDomain = ""
	_, _, err := NewDispatcher(cfg, quiet())
	require.ErrorContains(t, err, "MAILGUN_DOMAIN")

	cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender = "mg.example.com", "key", "Flyobo <no-reply@example.com>"
	d, closeFn, err := NewDispatcher(cfg, quiet())
	require.NoError(t, err)
	require.Nil(t, closeFn)
	require.IsType(t, mailer.Direct{}, d)
}

func TestCloseRunsInReverseAndJoinsErrors(t *testing.T) {
	c := &Container{Logger: quiet()}
	var order []string
	c.OnClose("first", func(context.Context) error { order = append(order, "first"); return nil })
	c.OnClose("second", func(context.Context) error { order = append(order, "second"); return errors.New("boom") })
	c.OnClose("skipped", nil)

	err := c.Close(context.Background())
	require.ErrorContains(t, err, "second: boom")
	require.Equal(t, []string{"second", "first"}, order)
	require.NoError(t, c.Close(context.Background()))
}
