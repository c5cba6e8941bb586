package db

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTableName = "bv_squares"

func ConnectToDB() (*mongo.Database, context.CancelFunc, error) {
	mongoURI := os.Getenv("MONGODB_URI")

	uri, err := url.Parse(mongoURI)
	if err != nil {
		log.Fatalf("Error parsing MongoDB URI: %v", err)
		return nil, nil, err
	}

	dbName := strings.TrimPrefix(uri.Path, "/")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Error pinging MongoDB: %v", err)
		return nil, nil, err
	}

	db := client.Database(dbName)

	return db, cancel, nil
}

// Table returns the single multi-entity collection every store
// operates on. TABLE_NAME overrides the default.
func Table(db *mongo.Database) *mongo.Collection {
	name := os.Getenv("TABLE_NAME")
	if name == "" {
		name = defaultTableName
	}
	return db.Collection(name)
}

// EnsureIndexes creates the key and secondary indexes the stores rely
// on: the unique composite primary key, the listing index, and the
// email / display-name / request-id lookups.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pk", Value: 1}, {Key: "sk", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("primary_key"),
		},
		{
			Keys:    bson.D{{Key: "gsi1pk", Value: 1}, {Key: "gsi1sk", Value: -1}},
			Options: options.Index().SetName("gsi1"),
		},
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetName("email_index"),
		},
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "display_name", Value: 1}},
			Options: options.Index().SetName("display_name_index"),
		},
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetName("entity_id_index"),
		},
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "player_id", Value: 1}},
			Options: options.Index().SetName("player_index"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
