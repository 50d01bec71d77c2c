package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/draycott/shortcover/internal/core"
)

type QuoteRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewQuoteRepo(db *mongodrv.Database, opTimeout time.Duration) *QuoteRepoMongo {
	return &QuoteRepoMongo{
		coll:      db.Collection(ColQuotes),
		opTimeout: opTimeout,
	}
}

func (repo *QuoteRepoMongo) Create(ctx context.Context, q core.Quote) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toQuoteDoc(q))
	if err != nil {
		// map dup key -> core.ErrConflict
		var we mongodrv.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return core.ErrConflict
				}
			}
		}
		return fmt.Errorf("quotes.insert: %w", err)
	}
	return nil
}

func (repo *QuoteRepoMongo) Get(ctx context.Context, id string) (core.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc QuoteDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Quote{}, core.ErrNotFound
		}
		return core.Quote{}, fmt.Errorf("quotes.findOne: %w", err)
	}
	return fromQuoteDoc(doc), nil
}

func (repo *QuoteRepoMongo) Update(ctx context.Context, q core.Quote) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": q.ID}, toQuoteDoc(q))
	if err != nil {
		return fmt.Errorf("quotes.replaceOne: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (repo *QuoteRepoMongo) ListOlderThan(ctx context.Context, cutoff time.Time) ([]core.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{
		"created_at": bson.M{"$lt": cutoff},
		"status":     string(core.QuoteStatusFresh),
	}
	cur, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("quotes.find: %w", err)
	}
	defer cur.Close(ctx)

	var out []core.Quote
	for cur.Next(ctx) {
		var doc QuoteDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("quotes.decode: %w", err)
		}
		out = append(out, fromQuoteDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("quotes.cursor: %w", err)
	}
	return out, nil
}
