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

// batchSize bounds square batch inserts, matching the write-batch
// limit of the backing store.
const batchSize = 25

type SquareStore struct {
	coll *mongo.Collection
}

func NewSquareStore(coll *mongo.Collection) *SquareStore {
	return &SquareStore{coll: coll}
}

type squareDoc struct {
	PK            string `bson:"pk"`
	SK            string `bson:"sk"`
	GSI1PK        string `bson:"gsi1pk"`
	GSI1SK        string `bson:"gsi1sk"`
	Entity        string `bson:"entity"`
	models.Square `bson:",inline"`
}

// CreateAll writes a game's full square set in batches and verifies
// the final count, so a partially created grid is detected before the
// game is ever published.
func (s *SquareStore) CreateAll(ctx context.Context, gameID string, squares []*models.Square) error {
	docs := make([]interface{}, 0, len(squares))
	for _, sq := range squares {
		docs = append(docs, squareDoc{
			PK:     gamePK(gameID),
			SK:     squareSK(sq.Row, sq.Col),
			GSI1PK: squareListKey(sq.Status),
			GSI1SK: sq.CreatedAt.UTC().Format(TimeLayout),
			Entity: EntitySquare,
			Square: *sq,
		})
	}

	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if _, err := s.coll.InsertMany(ctx, docs[start:end]); err != nil {
			return fmt.Errorf("failed to create squares batch: %w", err)
		}
	}

	count, err := s.coll.CountDocuments(ctx, bson.M{"pk": gamePK(gameID), "entity": EntitySquare})
	if err != nil {
		return fmt.Errorf("failed to verify square count: %w", err)
	}
	if count != int64(len(squares)) {
		return fmt.Errorf("square creation incomplete: %d of %d", count, len(squares))
	}
	return nil
}

func (s *SquareStore) ListByGame(ctx context.Context, gameID string) ([]*models.Square, error) {
	opts := options.Find().SetSort(bson.D{{Key: "row", Value: 1}, {Key: "col", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"pk": gamePK(gameID), "entity": EntitySquare}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list squares: %w", err)
	}
	defer cur.Close(ctx)

	return decodeSquares(ctx, cur)
}

func (s *SquareStore) ListByPlayer(ctx context.Context, playerID string) ([]*models.Square, error) {
	cur, err := s.coll.Find(ctx, bson.M{"entity": EntitySquare, "player_id": playerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list player squares: %w", err)
	}
	defer cur.Close(ctx)

	return decodeSquares(ctx, cur)
}

func (s *SquareStore) Get(ctx context.Context, gameID string, row, col int) (*models.Square, error) {
	var doc squareDoc
	err := s.coll.FindOne(ctx, bson.M{"pk": gamePK(gameID), "sk": squareSK(row, col)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get square: %w", err)
	}
	return &doc.Square, nil
}

func (s *SquareStore) GetByID(ctx context.Context, squareID string) (*models.Square, error) {
	var doc squareDoc
	err := s.coll.FindOne(ctx, bson.M{"entity": EntitySquare, "id": squareID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get square: %w", err)
	}
	return &doc.Square, nil
}

// MarkRequested claims an available square for a player. The status
// guard in the filter is the mutual exclusion between two players
// racing for the same cell: exactly one write matches. Returns nil
// when the square was not available.
func (s *SquareStore) MarkRequested(ctx context.Context, gameID string, row, col int, playerID, playerDisplayName string) (*models.Square, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"pk":     gamePK(gameID),
		"sk":     squareSK(row, col),
		"status": models.SquareAvailable,
	}
	update := bson.M{"$set": bson.M{
		"status":              models.SquareRequested,
		"player_id":           playerID,
		"player_display_name": playerDisplayName,
		"requested_at":        now,
		"gsi1pk":              squareListKey(models.SquareRequested),
	}}
	return s.findOneAndUpdate(ctx, filter, update)
}

// MarkApproved promotes a requested square held by the given player.
func (s *SquareStore) MarkApproved(ctx context.Context, gameID string, row, col int, playerID string) (*models.Square, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"pk":        gamePK(gameID),
		"sk":        squareSK(row, col),
		"status":    models.SquareRequested,
		"player_id": playerID,
	}
	update := bson.M{"$set": bson.M{
		"status":      models.SquareApproved,
		"approved_at": now,
		"gsi1pk":      squareListKey(models.SquareApproved),
	}}
	return s.findOneAndUpdate(ctx, filter, update)
}

// Release reverts a square to available and clears its player fields.
// fromStatus guards the transition (requested for rejections and
// cancellations, approved for admin removals).
func (s *SquareStore) Release(ctx context.Context, gameID string, row, col int, fromStatus string) (*models.Square, error) {
	filter := bson.M{
		"pk":     gamePK(gameID),
		"sk":     squareSK(row, col),
		"status": fromStatus,
	}
	update := bson.M{
		"$set": bson.M{
			"status": models.SquareAvailable,
			"gsi1pk": squareListKey(models.SquareAvailable),
		},
		"$unset": bson.M{
			"player_id":           "",
			"player_display_name": "",
			"requested_at":        "",
			"approved_at":         "",
		},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

func (s *SquareStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Square, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc squareDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update square: %w", err)
	}
	return &doc.Square, nil
}

func decodeSquares(ctx context.Context, cur *mongo.Cursor) ([]*models.Square, error) {
	var docs []squareDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode squares: %w", err)
	}
	squares := make([]*models.Square, 0, len(docs))
	for i := range docs {
		squares = append(squares, &docs[i].Square)
	}
	return squares, nil
}
