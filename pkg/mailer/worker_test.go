package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/flyobo-travel-api/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type recordingSender struct {
	msgs []sent
	err  error
}

func (r *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, sent{to, subject, text, html})
	return nil
}

func TestWorkerRendersTemplate(t *testing.T) {
	s := &recordingSender{}
	w := &Worker{Sender: s}
	data := mailtpl.NewVerifyOTPData(mailtpl.Brand{AppName: "Flyobo"}, "Ann", "ann@x.com", "123456", time.Now().Add(10*time.Minute))

	require.NoError(t, Direct{Worker: w}.Dispatch(context.Background(), NewJob("ann@x.com", mailtpl.VerifyOTP, data)))

	require.Len(t, s.msgs, 1)
	require.Equal(t, "ann@x.com", s.msgs[0].to)
	require.Equal(t, "Your Flyobo verification code", s.msgs[0].subject)
	require.Contains(t, s.msgs[0].text, "123456")
}

func TestWorkerKeepsExplicitSubject(t *testing.T) {
	s := &recordingSender{}
	w := &Worker{Sender: s}
	job := NewJob("ann@x.com", mailtpl.Welcome, mailtpl.NewWelcomeData(mailtpl.Brand{}, "Ann", "ann@x.com"))
	job.Subject = "Hello"

	require.NoError(t, w.Handle(context.Background(), job))
	require.Equal(t, "Hello", s.msgs[0].subject)
}

func TestWorkerSurfacesSendError(t *testing.T) {
	w := &Worker{Sender: &recordingSender{err: errors.New("mailgun down")}}
	err := w.Handle(context.Background(), NewJob("ann@x.com", "", nil))
	require.ErrorContains(t, err, "mailgun down")
}

func TestNewJobIDsAreSortable(t *testing.T) {
	t0 := time.Now()
	a := NewJobID(t0)
	b := NewJobID(t0.Add(time.Millisecond))
	require.Len(t, a, 26)
	require.Less(t, a, b)
}

func TestLogOnlyNeverFails(t *testing.T) {
	require.NoError(t, LogOnly{}.Dispatch(context.Background(), NewJob("a@b.co", mailtpl.Welcome, nil)))
}
