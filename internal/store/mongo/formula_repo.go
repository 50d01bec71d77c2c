package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/draycott/shortcover/internal/core"
)

type FormulaRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewFormulaRepo(db *mongodrv.Database, opTimeout time.Duration) *FormulaRepoMongo {
	return &FormulaRepoMongo{
		coll:      db.Collection(ColFormula),
		opTimeout: opTimeout,
	}
}

func (repo *FormulaRepoMongo) Get(ctx context.Context) (core.QuoteFormula, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc FormulaDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": FormulaDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.QuoteFormula{}, core.ErrNotFound
		}
		return core.QuoteFormula{}, fmt.Errorf("formula.findOne: %w", err)
	}
	return fromFormulaDoc(doc)
}

// Put upserts the singleton formula document (seeding/admin only).
func (repo *FormulaRepoMongo) Put(ctx context.Context, f core.QuoteFormula) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": FormulaDocID}, toFormulaDoc(f), opts)
	if err != nil {
		return fmt.Errorf("formula.replaceOne: %w", err)
	}
	return nil
}
