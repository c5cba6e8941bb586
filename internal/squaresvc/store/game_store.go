package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

type GameStore struct {
	coll *mongo.Collection
}

func NewGameStore(coll *mongo.Collection) *GameStore {
	return &GameStore{coll: coll}
}

type gameDoc struct {
	PK          string `bson:"pk"`
	SK          string `bson:"sk"`
	GSI1PK      string `bson:"gsi1pk"`
	GSI1SK      string `bson:"gsi1sk"`
	Entity      string `bson:"entity"`
	models.Game `bson:",inline"`
}

// Create writes the game under the creating list key so it stays
// invisible to listings until Publish flips it to its status key.
func (s *GameStore) Create(ctx context.Context, game *models.Game) error {
	doc := gameDoc{
		PK:     gamePK(game.ID),
		SK:     skDetails,
		GSI1PK: GameListCreating,
		GSI1SK: game.GameDate.UTC().Format(TimeLayout),
		Entity: EntityGame,
		Game:   *game,
	}
	_, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("game %s already exists", game.ID)
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// Publish makes a fully created game visible in status listings.
func (s *GameStore) Publish(ctx context.Context, gameID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"pk": gamePK(gameID), "sk": skDetails, "gsi1pk": GameListCreating},
		bson.M{"$set": bson.M{"gsi1pk": GameListKey(models.GameStatusSetup), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to publish game: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("game %s not in creating state", gameID)
	}
	return nil
}

// Delete removes the game record and everything under its partition.
// Used to back out of a failed creation.
func (s *GameStore) Delete(ctx context.Context, gameID string) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"pk": gamePK(gameID)})
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

func (s *GameStore) GetByID(ctx context.Context, gameID string) (*models.Game, error) {
	var doc gameDoc
	err := s.coll.FindOne(ctx, bson.M{"pk": gamePK(gameID), "sk": skDetails}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return &doc.Game, nil
}

// List pages through games of one status, newest game date first. The
// returned cursor is empty when the listing is exhausted.
func (s *GameStore) List(ctx context.Context, status string, limit int, cursor string) ([]*models.Game, string, error) {
	listKey := GameListKey(status)
	filter := bson.M{"gsi1pk": listKey}

	if cursor != "" {
		k, err := DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		// resume strictly after the last evaluated key, pk as tiebreak
		filter = bson.M{
			"gsi1pk": listKey,
			"$or": bson.A{
				bson.M{"gsi1sk": bson.M{"$lt": k.GSI1SK}},
				bson.M{"gsi1sk": k.GSI1SK, "pk": bson.M{"$lt": k.PK}},
			},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "gsi1sk", Value: -1}, {Key: "pk", Value: -1}}).
		SetLimit(int64(limit + 1))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list games: %w", err)
	}
	defer cur.Close(ctx)

	var docs []gameDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, "", fmt.Errorf("failed to decode games: %w", err)
	}

	next := ""
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		next = EncodeCursor(PageKey{GSI1PK: last.GSI1PK, GSI1SK: last.GSI1SK, PK: last.PK})
	}

	games := make([]*models.Game, 0, len(docs))
	for i := range docs {
		games = append(games, &docs[i].Game)
	}
	return games, next, nil
}

// AssignNumbers persists the row/col permutations and activates the
// game in one conditional write. It matches only a setup game without
// numbers, so a second call cannot reassign.
func (s *GameStore) AssignNumbers(ctx context.Context, gameID string, rowNumbers, colNumbers []int) (*models.Game, error) {
	filter := bson.M{
		"pk":          gamePK(gameID),
		"sk":          skDetails,
		"status":      models.GameStatusSetup,
		"row_numbers": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"row_numbers": rowNumbers,
		"col_numbers": colNumbers,
		"status":      models.GameStatusActive,
		"gsi1pk":      GameListKey(models.GameStatusActive),
		"updated_at":  time.Now().UTC(),
	}}

	return s.findOneAndUpdate(ctx, filter, update)
}

// UpdateStatus transitions the game from one status to another
// conditionally, keeping the listing key in step.
func (s *GameStore) UpdateStatus(ctx context.Context, gameID, from, to string) (*models.Game, error) {
	filter := bson.M{"pk": gamePK(gameID), "sk": skDetails, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"gsi1pk":     GameListKey(to),
		"updated_at": time.Now().UTC(),
	}}
	return s.findOneAndUpdate(ctx, filter, update)
}

// UpdateScores merges the supplied period scores into the game record.
func (s *GameStore) UpdateScores(ctx context.Context, gameID string, scores map[string]int) (*models.Game, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for field, value := range scores {
		set["scores."+field] = value
	}
	filter := bson.M{"pk": gamePK(gameID), "sk": skDetails}
	return s.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
}

// UpdateDetails rewrites the editable game fields while the game is
// still in setup.
func (s *GameStore) UpdateDetails(ctx context.Context, game *models.Game) (*models.Game, error) {
	filter := bson.M{"pk": gamePK(game.ID), "sk": skDetails, "status": models.GameStatusSetup}
	update := bson.M{"$set": bson.M{
		"name":             game.Name,
		"sport":            game.Sport,
		"home_team":        game.HomeTeam,
		"away_team":        game.AwayTeam,
		"game_date":        game.GameDate,
		"payout_structure": game.PayoutStructure,
		"gsi1sk":           game.GameDate.UTC().Format(TimeLayout),
		"updated_at":       time.Now().UTC(),
	}}
	return s.findOneAndUpdate(ctx, filter, update)
}

// findOneAndUpdate applies a conditional update and returns the new
// document, or nil when no document matched the condition.
func (s *GameStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Game, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc gameDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return &doc.Game, nil
}
