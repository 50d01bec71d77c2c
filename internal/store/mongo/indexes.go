package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := ensureQuotesIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure quotes indexes: %w", err)
	}
	return nil
}

func ensureQuotesIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColQuotes)
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("quotes_status_created_at"),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("quotes_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}
