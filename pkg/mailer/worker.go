package mailer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/flyobo-travel-api/pkg/mailer/templates"
)

// Worker turns a job into a delivered message: enrich, render, send.
type Worker struct {
	Sender Sender
	Geo    mailtpl.GeoResolver
	Logger *logrus.Logger
}

func (w *Worker) Handle(ctx context.Context, job EmailJob) error {
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if _, ok := job.Data["RecipientEmail"]; !ok {
			job.Data["RecipientEmail"] = job.To
		}
		if w.Geo != nil {
			mailtpl.Enrich(ctx, w.Geo, job.Data)
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("render %s: %w", job.Template, err)
		}
		if subject == "" {
			subject = s
		}
		if text == "" {
			text = t
		}
		if html == "" {
			html = h
		}
	}
	if err := w.Sender.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send %s: %w", job.ID, err)
	}
	if w.Logger != nil {
		w.Logger.WithFields(logrus.Fields{"job_id": job.ID, "to": job.To, "template": job.Template}).Info("email sent")
	}
	return nil
}
