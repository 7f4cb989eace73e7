package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erbaiy/PediTrack-api/internal/models"
)

// UserStore is the credential store consumed by the auth service. The mongo
// implementation below is the production one; tests substitute their own.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetVerified(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, passwordHash string) error
}

// ErrStoreNotFound is returned by store lookups that match nothing. The
// service translates it into its own taxonomy.
var ErrStoreNotFound = errors.New("user record not found")

// MongoUserStore persists users in the "users" collection. Email uniqueness
// is enforced by a unique index created at startup.
type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection("users")}
}

// EnsureIndexes creates the unique email index. Safe to call on every boot.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrStoreNotFound
	}
	var user models.User
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = NormalizeEmail(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := s.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *MongoUserStore) SetVerified(ctx context.Context, id string) error {
	return s.updateByID(ctx, id, bson.M{"isVerified": true})
}

func (s *MongoUserStore) SetPassword(ctx context.Context, id, passwordHash string) error {
	return s.updateByID(ctx, id, bson.M{"password": passwordHash})
}

func (s *MongoUserStore) updateByID(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrStoreNotFound
	}
	set["updatedAt"] = time.Now()
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStoreNotFound
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive exact matches.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
