package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
	"github.com/oksasatya/flyobo-travel-api/pkg/mailer"
	mailtpl "github.com/oksasatya/flyobo-travel-api/pkg/mailer/templates"
	"github.com/oksasatya/flyobo-travel-api/pkg/validation"
)

// User-facing messages. Clients match on some of these, keep them stable.
const (
	MsgRegisterMissing    = "Please provide name, email, and password"
	MsgLoginMissing       = "Please provide email and password"
	MsgEmailExists        = "Email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgVerifyFirst        = "Please verify your account first"
	MsgUserNotFound       = "User not found"
	MsgAlreadyVerified    = "Account already verified"
	MsgNotVerified        = "Account not verified"
	MsgSendOTPFailed      = "Error sending OTP email"
	MsgFieldsMissing      = "Please provide all the fields"
	MsgInvalidOTP         = "Invalid OTP"
	MsgOTPExpired         = "OTP expired"
	MsgResetOTPExpired    = "OTP has expired"
	MsgResetMissing       = "Please provide all fields"
	MsgEmailMissing       = "Please provide email"
	MsgVerifyFailed       = "Error in verifying email"
	MsgGoogleMissing      = "Email and name are required"
	MsgNameTooShort       = "Name must be at least 2 characters long"
	MsgInvalidEmail       = "Please provide a valid email"
)

// Session is a freshly issued session token for a user.
type Session struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// RequestMeta describes who triggered a mail, for the location line in OTP mails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Meta     RequestMeta
}

type GoogleInput struct {
	Email    string
	Name     string
	PhotoURL string
}

// AuthService runs registration, login, OTP verification, password reset and
// Google sign-in against the user store.
type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Mail   mailer.Dispatcher
	Brand  mailtpl.Brand
	Index  *UserIndex
	Logger *logrus.Logger

	now func() time.Time
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, mail mailer.Dispatcher, brand mailtpl.Brand, index *UserIndex, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: r, JWT: jwt, Mail: mail, Brand: brand, Index: index, Logger: logger, now: time.Now}
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }

// checkIdentity applies the stored-user rules to a new account's name and
// email. name is expected trimmed.
func checkIdentity(name, email string) error {
	if len([]rune(name)) < 2 {
		return apperror.Validation(MsgNameTooShort)
	}
	if !validation.IsEmail(email) {
		return apperror.Validation(MsgInvalidEmail)
	}
	return nil
}

// Register creates an unverified account and signs it in. The welcome mail is
// best effort.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if blank(in.Name) || blank(in.Email) || in.Password == "" {
		return nil, apperror.Validation(MsgRegisterMissing)
	}
	name, email := strings.TrimSpace(in.Name), entity.NormalizeEmail(in.Email)
	if err := checkIdentity(name, email); err != nil {
		return nil, err
	}

	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict(MsgEmailExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.Create(ctx, &entity.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     entity.RoleUser,
		Avatar:   entity.DefaultAvatar,
		Phone:    strings.TrimSpace(in.Phone),
	})
	if errors.Is(err, repo.ErrDuplicateKey) {
		return nil, apperror.Conflict(MsgEmailExists).WithErr(err)
	}
	if err != nil {
		return nil, err
	}

	sess, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	job := mailer.NewJob(u.Email, mailtpl.Welcome, mailtpl.NewWelcomeData(s.Brand, u.Name, u.Email,
		mailtpl.WithIP(in.Meta.IP), mailtpl.WithUserAgent(in.Meta.UserAgent)))
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		helpers.LogWarn(s.Logger, "welcome email failed", err, logrus.Fields{"user_id": u.ID, "job_id": job.ID})
	}
	s.Index.Index(ctx, u)
	return sess, nil
}

// Login checks the password before the verification flag, so an unverified
// account with a wrong password still gets the generic credentials error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if blank(email) || password == "" {
		return nil, apperror.Validation(MsgLoginMissing)
	}
	u, err := s.Repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Auth(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperror.Auth(MsgInvalidCredentials)
	}
	if !u.IsAccountVerified {
		return nil, apperror.Forbidden(MsgVerifyFirst)
	}
	return s.issue(u)
}

// SendVerifyOTP stores a fresh code on the user and mails it. A failed send
// is reported to the caller; the stored code stays.
func (s *AuthService) SendVerifyOTP(ctx context.Context, userID string, meta RequestMeta) error {
	u, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsAccountVerified {
		return apperror.Conflict(MsgAlreadyVerified)
	}
	code, exp, err := s.newOTP()
	if err != nil {
		return err
	}
	if _, err := s.Repo.Update(ctx, u.ID, entity.UserPatch{VerifyOTP: &code, VerifyOTPExpireAt: &exp}); err != nil {
		return err
	}
	job := mailer.NewJob(u.Email, mailtpl.VerifyOTP, mailtpl.NewVerifyOTPData(s.Brand, u.Name, u.Email, code, exp,
		mailtpl.WithIP(meta.IP), mailtpl.WithUserAgent(meta.UserAgent)))
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		return apperror.Internal(MsgSendOTPFailed, err)
	}
	return nil
}

// VerifyEmail marks the account verified when otp matches the stored,
// unexpired code. Every failure is an *apperror.Error so callers can render
// it uniformly.
func (s *AuthService) VerifyEmail(ctx context.Context, userID, otp string) error {
	if blank(userID) || blank(otp) {
		return apperror.Validation(MsgFieldsMissing)
	}
	u, err := s.Repo.FindByID(ctx, userID)
	switch {
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrInvalidID):
		return apperror.NotFound(MsgUserNotFound)
	case err != nil:
		return apperror.Internal(MsgVerifyFailed, err)
	}
	if !helpers.OTPMatches(u.VerifyOTP, strings.TrimSpace(otp)) {
		return apperror.Auth(MsgInvalidOTP)
	}
	if s.clock().After(u.VerifyOTPExpireAt) {
		return apperror.Expired(MsgOTPExpired)
	}
	_, err = s.Repo.Update(ctx, u.ID, entity.UserPatch{
		IsAccountVerified: entity.Ptr(true),
		VerifyOTP:         entity.Ptr(""),
		VerifyOTPExpireAt: entity.Ptr(time.Time{}),
	})
	if err != nil {
		return apperror.Internal(MsgVerifyFailed, err)
	}
	return nil
}

// SendResetOTP stores a reset code for a verified account and mails it.
func (s *AuthService) SendResetOTP(ctx context.Context, email string, meta RequestMeta) error {
	if blank(email) {
		return apperror.Validation(MsgEmailMissing)
	}
	u, err := s.Repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return err
	}
	if !u.IsAccountVerified {
		return apperror.Forbidden(MsgNotVerified)
	}
	code, exp, err := s.newOTP()
	if err != nil {
		return err
	}
	if _, err := s.Repo.Update(ctx, u.ID, entity.UserPatch{ResetOTP: &code, ResetOTPExpireAt: &exp}); err != nil {
		return err
	}
	job := mailer.NewJob(u.Email, mailtpl.ResetOTP, mailtpl.NewResetOTPData(s.Brand, u.Name, u.Email, code, exp,
		mailtpl.WithIP(meta.IP), mailtpl.WithUserAgent(meta.UserAgent)))
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		return apperror.Internal(MsgSendOTPFailed, err)
	}
	return nil
}

// ResetPassword swaps the password hash and burns the reset code.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword, otp string) error {
	if blank(email) || newPassword == "" || blank(otp) {
		return apperror.Validation(MsgResetMissing)
	}
	u, err := s.Repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return err
	}
	if !u.IsAccountVerified {
		return apperror.Forbidden(MsgNotVerified)
	}
	if !helpers.OTPMatches(u.ResetOTP, strings.TrimSpace(otp)) {
		return apperror.Auth(MsgInvalidOTP)
	}
	if s.clock().After(u.ResetOTPExpireAt) {
		return apperror.Expired(MsgResetOTPExpired)
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = s.Repo.Update(ctx, u.ID, entity.UserPatch{
		Password:         &hash,
		ResetOTP:         entity.Ptr(""),
		ResetOTPExpireAt: entity.Ptr(time.Time{}),
	})
	return err
}

// GoogleAuth signs in the account holding email, creating a verified one on
// first use. created reports which of the two happened. A concurrent first
// sign-in that loses the insert race gets a conflict.
func (s *AuthService) GoogleAuth(ctx context.Context, in GoogleInput) (sess *Session, created bool, err error) {
	if blank(in.Email) || blank(in.Name) {
		return nil, false, apperror.Validation(MsgGoogleMissing)
	}
	email := entity.NormalizeEmail(in.Email)

	u, err := s.Repo.FindByEmail(ctx, email)
	if err == nil {
		sess, err = s.issue(u)
		return sess, false, err
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}
	name := strings.TrimSpace(in.Name)
	if err := checkIdentity(name, email); err != nil {
		return nil, false, err
	}

	random, err := helpers.GenerateRandomPassword()
	if err != nil {
		return nil, false, err
	}
	hash, err := helpers.HashPassword(random)
	if err != nil {
		return nil, false, err
	}
	avatar := strings.TrimSpace(in.PhotoURL)
	if avatar == "" {
		avatar = entity.DefaultAvatar
	}
	u, err = s.Repo.Create(ctx, &entity.User{
		Name:              name,
		Email:             email,
		Password:          hash,
		Role:              entity.RoleUser,
		Avatar:            avatar,
		IsAccountVerified: true,
	})
	if errors.Is(err, repo.ErrDuplicateKey) {
		return nil, false, apperror.Conflict(MsgEmailExists).WithErr(err)
	}
	if err != nil {
		return nil, false, err
	}
	s.Index.Index(ctx, u)
	sess, err = s.issue(u)
	return sess, true, err
}

func (s *AuthService) findByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(MsgUserNotFound)
	}
	return u, err
}

func (s *AuthService) newOTP() (string, time.Time, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, s.clock().Add(helpers.OTPTTL).UTC(), nil
}

func (s *AuthService) issue(u *entity.User) (*Session, error) {
	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		helpers.LogError(s.Logger, "generate session token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}
