package mailer

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/flyobo-travel-api/pkg/mailer/templates"
)

func TestPublishingCarriesJob(t *testing.T) {
	job := NewJob("ann@x.com", mailtpl.VerifyOTP, map[string]any{"OTP": "123456"})
	at := time.Date(2025, 5, 1, 16, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	msg, err := publishing(job, at)
	require.NoError(t, err)
	require.Equal(t, amqp.Persistent, msg.DeliveryMode)
	require.Equal(t, "application/json", msg.ContentType)
	require.Equal(t, job.ID, msg.MessageId)
	require.Equal(t, mailtpl.VerifyOTP, msg.Type)
	require.Equal(t, time.UTC, msg.Timestamp.Location())

	var back EmailJob
	require.NoError(t, json.Unmarshal(msg.Body, &back))
	require.Equal(t, job.ID, back.ID)
	require.Equal(t, "123456", back.Data["OTP"])
}

func TestSettle(t *testing.T) {
	_, garbage := decodeJob([]byte("{not json"))
	require.ErrorIs(t, garbage, errUndecodable)

	require.Equal(t, ack, settle(nil, false))
	require.Equal(t, ack, settle(nil, true))
	require.Equal(t, retry, settle(errors.New("mailgun 503"), false))
	require.Equal(t, drop, settle(errors.New("mailgun 503"), true))
	require.Equal(t, drop, settle(garbage, false))
}

func TestNilQueueClose(t *testing.T) {
	var q *Queue
	require.NoError(t, q.Close())
}
