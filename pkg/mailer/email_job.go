package mailer

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template names one of the embedded templates; Data feeds it. Subject, Text
// and HTML, when set, override what the template renders.
type EmailJob struct {
	ID        string         `json:"id"`
	To        string         `json:"to"`
	Template  string         `json:"template,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Text      string         `json:"text,omitempty"`
	HTML      string         `json:"html,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewJob stamps a job with a sortable id.
func NewJob(to, template string, data map[string]any) EmailJob {
	now := time.Now().UTC()
	return EmailJob{
		ID:        NewJobID(now),
		To:        to,
		Template:  template,
		Data:      data,
		CreatedAt: now,
	}
}

func NewJobID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
