package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll}
}

type userDoc struct {
	PK          string `bson:"pk"`
	SK          string `bson:"sk"`
	GSI1PK      string `bson:"gsi1pk"`
	GSI1SK      string `bson:"gsi1sk"`
	Entity      string `bson:"entity"`
	models.User `bson:",inline"`
}

// Create inserts the user profile. The unique {pk, sk} index makes the
// write conditional: an existing profile is never overwritten.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	doc := userDoc{
		PK:     userPK(user.ID),
		SK:     skProfile,
		GSI1PK: "USER#" + user.UserType,
		GSI1SK: user.CreatedAt.UTC().Format(TimeLayout),
		Entity: EntityUser,
		User:   *user,
	}
	_, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s already exists", user.ID)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"pk": userPK(id), "sk": skProfile})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"entity": EntityUser, "email": email})
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"entity": EntityUser, "username": username})
}

// DisplayNameExists backs the lookup-before-insert uniqueness check on
// registration.
func (s *UserStore) DisplayNameExists(ctx context.Context, displayName string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"entity": EntityUser, "display_name": displayName})
	if err != nil {
		return false, fmt.Errorf("failed to check display name: %w", err)
	}
	return count > 0, nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &doc.User, nil
}
