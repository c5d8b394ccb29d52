package templates

import "time"

// Brand carries the product identity every mail is stamped with.
type Brand struct {
	AppName     string
	CompanyName string
	LogoURL     string
	SupportURL  string
	FrontendURL string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewBaseEmailData fills the brand fields, then applies opts.
func NewBaseEmailData(b Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		AppName:     b.AppName,
		CompanyName: b.CompanyName,
		LogoURL:     b.LogoURL,
		SupportURL:  b.SupportURL,
		FrontendURL: b.FrontendURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(b Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, Welcome, name, email, opts...))
}

func NewVerifyOTPData(b Brand, name, email, code string, expiresAt time.Time, opts ...Option) map[string]any {
	d := NewBaseEmailData(b, VerifyOTP, name, email, append([]Option{WithExpiresAt(expiresAt)}, opts...)...)
	d.Code = code
	return ToMap(d)
}

func NewResetOTPData(b Brand, name, email, code string, expiresAt time.Time, opts ...Option) map[string]any {
	d := NewBaseEmailData(b, ResetOTP, name, email, append([]Option{WithExpiresAt(expiresAt)}, opts...)...)
	d.Code = code
	return ToMap(d)
}
