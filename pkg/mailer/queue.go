package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue is one durable AMQP queue carrying EmailJobs. The API dispatches into
// it with publisher confirms on; cmd/email_worker consumes from it.
type Queue struct {
	Name string

	conn *amqp.Connection
	ch   *amqp.Channel
}

func DialQueue(url, name string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	q := &Queue{Name: name, conn: conn}
	if err := q.open(); err != nil {
		return nil, errors.Join(err, q.Close())
	}
	return q, nil
}

func (q *Queue) open() error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	q.ch = ch
	// durable, not auto-deleted, shared between API and worker
	if _, err := ch.QueueDeclare(q.Name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", q.Name, err)
	}
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	return nil
}

// Close shuts the channel then the connection.
func (q *Queue) Close() error {
	if q == nil {
		return nil
	}
	var errs []error
	if q.ch != nil {
		errs = append(errs, ignoreClosed(q.ch.Close()))
	}
	if q.conn != nil {
		errs = append(errs, ignoreClosed(q.conn.Close()))
	}
	return errors.Join(errs...)
}

func ignoreClosed(err error) error {
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

// Dispatch publishes job and waits for the broker to take it. A nack is an
// error, so callers can report the mail as not sent.
func (q *Queue) Dispatch(ctx context.Context, job EmailJob) error {
	msg, err := publishing(job, time.Now())
	if err != nil {
		return err
	}
	confirm, err := q.ch.PublishWithDeferredConfirmWithContext(ctx, "", q.Name, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", job.ID, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("publish %s: %w", job.ID, err)
	}
	if !acked {
		return fmt.Errorf("publish %s: broker nacked", job.ID)
	}
	return nil
}

func publishing(job EmailJob, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Type:         job.Template,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}

// Consume feeds every delivery to handle until ctx is done or the channel closes.
func (q *Queue) Consume(ctx context.Context, prefetch int, handle func(context.Context, EmailJob) error) error {
	if prefetch > 0 {
		if err := q.ch.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("qos: %w", err)
		}
	}
	msgs, err := q.ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var err error
			if job, decodeErr := decodeJob(d.Body); decodeErr != nil {
				err = decodeErr
			} else {
				err = handle(ctx, job)
			}
			switch settle(err, d.Redelivered) {
			case ack:
				_ = d.Ack(false)
			case retry:
				_ = d.Nack(false, true)
			default:
				_ = d.Nack(false, false)
			}
		}
	}
}

type outcome int

const (
	ack outcome = iota
	retry
	drop
)

var errUndecodable = errors.New("undecodable email job")

func decodeJob(body []byte) (EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return EmailJob{}, fmt.Errorf("%w: %v", errUndecodable, err)
	}
	return job, nil
}

// settle decides a delivery's fate. A failed send gets one more attempt;
// garbage is never requeued.
func settle(err error, redelivered bool) outcome {
	switch {
	case err == nil:
		return ack
	case errors.Is(err, errUndecodable), redelivered:
		return drop
	default:
		return retry
	}
}
