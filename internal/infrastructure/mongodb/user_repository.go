package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	"github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
)

const usersCollection = "users"

type userDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	Email             string             `bson:"email"`
	Password          string             `bson:"password"`
	Role              string             `bson:"role"`
	Avatar            string             `bson:"avatar"`
	Phone             string             `bson:"phone,omitempty"`
	IsAccountVerified bool               `bson:"isAccountVerified"`
	VerifyOTP         string             `bson:"verifyOtp"`
	VerifyOTPExpireAt *time.Time         `bson:"verifyOtpExpireAt"`
	ResetOTP          string             `bson:"resetOtp"`
	ResetOTPExpireAt  *time.Time         `bson:"resetOtpExpireAt"`
	SavedItems        []string           `bson:"savedItems"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index the repository relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	doc := fromEntity(u)
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": setDocument(patch)}, opts).Decode(&doc)
	if err != nil {
		return nil, mapError(err)
	}
	return doc.toEntity(), nil
}

func setDocument(p entity.UserPatch) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Password != nil {
		set["password"] = *p.Password
	}
	if p.Role != nil {
		set["role"] = string(*p.Role)
	}
	if p.Avatar != nil {
		set["avatar"] = *p.Avatar
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.IsAccountVerified != nil {
		set["isAccountVerified"] = *p.IsAccountVerified
	}
	if p.VerifyOTP != nil {
		set["verifyOtp"] = *p.VerifyOTP
	}
	if p.VerifyOTPExpireAt != nil {
		set["verifyOtpExpireAt"] = timePtr(*p.VerifyOTPExpireAt)
	}
	if p.ResetOTP != nil {
		set["resetOtp"] = *p.ResetOTP
	}
	if p.ResetOTPExpireAt != nil {
		set["resetOtpExpireAt"] = timePtr(*p.ResetOTPExpireAt)
	}
	return set
}

func fromEntity(u *entity.User) userDocument {
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
	return userDocument{
		Name:              u.Name,
		Email:             u.Email,
		Password:          u.Password,
		Role:              string(role),
		Avatar:            avatar,
		Phone:             u.Phone,
		IsAccountVerified: u.IsAccountVerified,
		VerifyOTP:         u.VerifyOTP,
		VerifyOTPExpireAt: timePtr(u.VerifyOTPExpireAt),
		ResetOTP:          u.ResetOTP,
		ResetOTPExpireAt:  timePtr(u.ResetOTPExpireAt),
		SavedItems:        saved,
	}
}

func (d userDocument) toEntity() *entity.User {
	u := &entity.User{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Email:             d.Email,
		Password:          d.Password,
		Role:              entity.Role(d.Role),
		Avatar:            d.Avatar,
		Phone:             d.Phone,
		IsAccountVerified: d.IsAccountVerified,
		VerifyOTP:         d.VerifyOTP,
		ResetOTP:          d.ResetOTP,
		SavedItems:        d.SavedItems,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.VerifyOTPExpireAt != nil {
		u.VerifyOTPExpireAt = *d.VerifyOTPExpireAt
	}
	if d.ResetOTPExpireAt != nil {
		u.ResetOTPExpireAt = *d.ResetOTPExpireAt
	}
	return u
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicateKey
	}
	return err
}

// timePtr stores zero times as null so cleared OTP expiries read back as zero.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

var _ repository.UserRepository = (*UserRepository)(nil)
