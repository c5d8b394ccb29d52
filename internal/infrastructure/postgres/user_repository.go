package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	"github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id::text, name, email, password_hash, role, avatar, phone, is_account_verified,
	verify_otp, verify_otp_expire_at, reset_otp, reset_otp_expire_at, saved_items, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	role := u.Role
	if role == "" {
		role = entity.RoleUser
	}
	avatar := u.Avatar
	if avatar == "" {
		avatar = entity.DefaultAvatar
	}
	saved := u.SavedItems
	if saved == nil {
		saved = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, avatar, phone, is_account_verified,
			verify_otp, verify_otp_expire_at, reset_otp, reset_otp_expire_at, saved_items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+userColumns,
		u.Name, u.Email, u.Password, string(role), avatar, u.Phone, u.IsAccountVerified,
		u.VerifyOTP, nullTime(u.VerifyOTPExpireAt), u.ResetOTP, nullTime(u.ResetOTPExpireAt), saved,
	)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	set, args := buildPatch(patch)
	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(set, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// buildPatch turns the set fields into SET assignments. updated_at is always bumped.
func buildPatch(p entity.UserPatch) ([]string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Password != nil {
		add("password_hash", *p.Password)
	}
	if p.Role != nil {
		add("role", string(*p.Role))
	}
	if p.Avatar != nil {
		add("avatar", *p.Avatar)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.IsAccountVerified != nil {
		add("is_account_verified", *p.IsAccountVerified)
	}
	if p.VerifyOTP != nil {
		add("verify_otp", *p.VerifyOTP)
	}
	if p.VerifyOTPExpireAt != nil {
		add("verify_otp_expire_at", nullTime(*p.VerifyOTPExpireAt))
	}
	if p.ResetOTP != nil {
		add("reset_otp", *p.ResetOTP)
	}
	if p.ResetOTPExpireAt != nil {
		add("reset_otp_expire_at", nullTime(*p.ResetOTPExpireAt))
	}
	set = append(set, "updated_at = now()")
	return set, args
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u          entity.User
		role       string
		verifyExp  *time.Time
		resetExp   *time.Time
		savedItems []string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &u.Avatar, &u.Phone, &u.IsAccountVerified,
		&u.VerifyOTP, &verifyExp, &u.ResetOTP, &resetExp, &savedItems, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	u.Role = entity.Role(role)
	if verifyExp != nil {
		u.VerifyOTPExpireAt = *verifyExp
	}
	if resetExp != nil {
		u.ResetOTPExpireAt = *resetExp
	}
	u.SavedItems = savedItems
	return &u, nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateKey
	}
	return err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ repository.UserRepository = (*UserRepository)(nil)
