package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Dispatcher hands an email job to whatever delivers it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job EmailJob) error
}

// Direct renders and sends inline, on the caller's goroutine.
type Direct struct {
	Worker *Worker
}

func (d Direct) Dispatch(ctx context.Context, job EmailJob) error {
	return d.Worker.Handle(ctx, job)
}

// LogOnly is used when sending is disabled. It logs the job and reports success.
type LogOnly struct {
	Logger *logrus.Logger
}

func (l LogOnly) Dispatch(_ context.Context, job EmailJob) error {
	if l.Logger != nil {
		l.Logger.WithFields(logrus.Fields{
			"job_id":   job.ID,
			"to":       job.To,
			"template": job.Template,
		}).Info("mail sending disabled, job not delivered")
	}
	return nil
}
