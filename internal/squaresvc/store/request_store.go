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

type RequestStore struct {
	coll *mongo.Collection
}

func NewRequestStore(coll *mongo.Collection) *RequestStore {
	return &RequestStore{coll: coll}
}

type requestDoc struct {
	PK                   string `bson:"pk"`
	SK                   string `bson:"sk"`
	GSI1PK               string `bson:"gsi1pk"`
	GSI1SK               string `bson:"gsi1sk"`
	Entity               string `bson:"entity"`
	models.SquareRequest `bson:",inline"`
}

func (s *RequestStore) Create(ctx context.Context, req *models.SquareRequest) error {
	doc := requestDoc{
		PK:            gamePK(req.GameID),
		SK:            requestSK(req.ID),
		GSI1PK:        requestListKey(req.Status),
		GSI1SK:        req.RequestedAt.UTC().Format(TimeLayout),
		Entity:        EntityRequest,
		SquareRequest: *req,
	}
	_, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create square request: %w", err)
	}
	return nil
}

// GetByID resolves a request by its id alone; the indexed id field
// spares callers from resupplying the game.
func (s *RequestStore) GetByID(ctx context.Context, requestID string) (*models.SquareRequest, error) {
	var doc requestDoc
	err := s.coll.FindOne(ctx, bson.M{"entity": EntityRequest, "id": requestID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get square request: %w", err)
	}
	return &doc.SquareRequest, nil
}

// ListByGame returns a game's requests, optionally filtered by status,
// newest first.
func (s *RequestStore) ListByGame(ctx context.Context, gameID, status string) ([]*models.SquareRequest, error) {
	filter := bson.M{"pk": gamePK(gameID), "entity": EntityRequest}
	if status != "" {
		filter["status"] = status
	}
	return s.find(ctx, filter)
}

func (s *RequestStore) ListByPlayer(ctx context.Context, playerID string) ([]*models.SquareRequest, error) {
	return s.find(ctx, bson.M{"entity": EntityRequest, "player_id": playerID})
}

// MarkApproved flips a pending request to approved. Returns nil when
// the request was not pending.
func (s *RequestStore) MarkApproved(ctx context.Context, gameID, requestID string) (*models.SquareRequest, error) {
	return s.process(ctx, gameID, requestID, models.RequestApproved, "")
}

// MarkRejected flips a pending request to rejected with a reason.
func (s *RequestStore) MarkRejected(ctx context.Context, gameID, requestID, reason string) (*models.SquareRequest, error) {
	return s.process(ctx, gameID, requestID, models.RequestRejected, reason)
}

func (s *RequestStore) process(ctx context.Context, gameID, requestID, to, reason string) (*models.SquareRequest, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"pk":     gamePK(gameID),
		"sk":     requestSK(requestID),
		"status": models.RequestPending,
	}
	set := bson.M{
		"status":       to,
		"processed_at": now,
		"gsi1pk":       requestListKey(to),
	}
	if reason != "" {
		set["rejection_reason"] = reason
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc requestDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update square request: %w", err)
	}
	return &doc.SquareRequest, nil
}

func (s *RequestStore) find(ctx context.Context, filter bson.M) ([]*models.SquareRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "gsi1sk", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list square requests: %w", err)
	}
	defer cur.Close(ctx)

	var docs []requestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode square requests: %w", err)
	}
	requests := make([]*models.SquareRequest, 0, len(docs))
	for i := range docs {
		requests = append(requests, &docs[i].SquareRequest)
	}
	return requests, nil
}
