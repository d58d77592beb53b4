package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
)

type mongoUser struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty"`
	Email                   string             `bson:"email"`
	Password                string             `bson:"password,omitempty"`
	Name                    string             `bson:"name"`
	Picture                 string             `bson:"picture,omitempty"`
	Role                    string             `bson:"role"`
	Status                  string             `bson:"status"`
	IsVerified              bool               `bson:"is_verified"`
	VerificationToken       string             `bson:"verification_token,omitempty"`
	VerificationTokenExpiry *time.Time         `bson:"verification_token_expiry,omitempty"`
	ResetToken              string             `bson:"reset_token,omitempty"`
	ResetTokenExpiry        *time.Time         `bson:"reset_token_expiry,omitempty"`
	CreatedAt               time.Time          `bson:"created_at"`
	UpdatedAt               time.Time          `bson:"updated_at"`
}

func (m *mongoUser) toEntity() *entity.User {
	return &entity.User{
		ID:                      m.ID,
		Email:                   m.Email,
		Password:                m.Password,
		Name:                    m.Name,
		Picture:                 m.Picture,
		Role:                    m.Role,
		Status:                  m.Status,
		IsVerified:              m.IsVerified,
		VerificationToken:       m.VerificationToken,
		VerificationTokenExpiry: m.VerificationTokenExpiry,
		ResetToken:              m.ResetToken,
		ResetTokenExpiry:        m.ResetTokenExpiry,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

func fromEntity(e *entity.User) *mongoUser {
	return &mongoUser{
		ID:                      e.ID,
		Email:                   e.Email,
		Password:                e.Password,
		Name:                    e.Name,
		Picture:                 e.Picture,
		Role:                    e.Role,
		Status:                  e.Status,
		IsVerified:              e.IsVerified,
		VerificationToken:       e.VerificationToken,
		VerificationTokenExpiry: e.VerificationTokenExpiry,
		ResetToken:              e.ResetToken,
		ResetTokenExpiry:        e.ResetTokenExpiry,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}

// UserRepository persists account documents in the "users" collection.
// Emails are stored lowercased; uniqueness is enforced by a unique index.
type UserRepository struct {
	db     *mongo.Database
	logger *zap.Logger
}

func NewUserRepository(db *mongo.Database, logger *zap.Logger) *UserRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := db.Collection("users")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verification_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := users.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("Failed to create indexes for users collection (may already exist)", zap.Error(err))
	}

	return &UserRepository{db: db, logger: logger.Named("UserRepository")}
}

func (r *UserRepository) collection() *mongo.Collection {
	return r.db.Collection("users")
}

// Create inserts a new account document. The password is expected to be
// hashed already.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	dbUser := fromEntity(user)
	if dbUser.ID.IsZero() {
		dbUser.ID = primitive.NewObjectID()
	}
	now := time.Now()
	dbUser.CreatedAt = now
	dbUser.UpdatedAt = now

	_, err := r.collection().InsertOne(ctx, dbUser)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate email during account creation", zap.String("email", user.Email))
			return primitive.NilObjectID, ErrDuplicateEmail
		}
		r.logger.Error("Database error during account creation", zap.String("email", user.Email), zap.Error(err))
		return primitive.NilObjectID, err
	}
	r.logger.Info("Account created", zap.String("userID", dbUser.ID.Hex()))
	return dbUser.ID, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var dbUser mongoUser
	err := r.collection().FindOne(ctx, bson.M{"email": email}).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching account by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	var dbUser mongoUser
	err := r.collection().FindOne(ctx, bson.M{"_id": userID}).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching account by id", zap.String("userID", userID.Hex()), zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

// FindByVerificationToken matches an account whose verification code
// equals token and has not expired. Expiry is strict: a code whose expiry
// equals now is already invalid.
func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	return r.findByToken(ctx, "verification_token", "verification_token_expiry", token, now)
}

// FindByResetToken matches an account whose reset code equals token and
// has not expired.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	return r.findByToken(ctx, "reset_token", "reset_token_expiry", token, now)
}

func (r *UserRepository) findByToken(ctx context.Context, tokenField, expiryField, token string, now time.Time) (*entity.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	filter := bson.M{
		tokenField:  token,
		expiryField: bson.M{"$gt": now},
	}
	var dbUser mongoUser
	err := r.collection().FindOne(ctx, filter).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching account by token", zap.String("field", tokenField), zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

// SetVerificationToken overwrites the verification code and its expiry.
// Any previously issued code becomes unusable immediately.
func (r *UserRepository) SetVerificationToken(ctx context.Context, userID primitive.ObjectID, token string, expiry time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"verification_token":        token,
			"verification_token_expiry": expiry,
			"updated_at":                time.Now(),
		},
	}
	return r.updateOne(ctx, userID, update)
}

// MarkVerified flips the verified flag and clears the verification code
// and expiry in the same update.
func (r *UserRepository) MarkVerified(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"is_verified": true,
			"updated_at":  time.Now(),
		},
		"$unset": bson.M{
			"verification_token":        "",
			"verification_token_expiry": "",
		},
	}
	return r.updateOne(ctx, userID, update)
}

// SetResetToken overwrites the password-reset code and its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, userID primitive.ObjectID, token string, expiry time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"reset_token":        token,
			"reset_token_expiry": expiry,
			"updated_at":         time.Now(),
		},
	}
	return r.updateOne(ctx, userID, update)
}

// ResetPassword rewrites the password hash and clears the reset code and
// expiry in one atomic update, consuming the code.
func (r *UserRepository) ResetPassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error {
	update := bson.M{
		"$set": bson.M{
			"password":   passwordHash,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{
			"reset_token":        "",
			"reset_token_expiry": "",
		},
	}
	return r.updateOne(ctx, userID, update)
}

func (r *UserRepository) updateOne(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		r.logger.Error("Database error during account update", zap.String("userID", userID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
