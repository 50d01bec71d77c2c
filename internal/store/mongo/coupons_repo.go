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

type CouponRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewCouponRepo(db *mongodrv.Database, opTimeout time.Duration) *CouponRepoMongo {
	return &CouponRepoMongo{
		coll:      db.Collection(ColCoupons),
		opTimeout: opTimeout,
	}
}

func (repo *CouponRepoMongo) GetByCode(ctx context.Context, code string) (core.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc CouponDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": core.NormalizeCode(code)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Coupon{}, core.ErrNotFound
		}
		return core.Coupon{}, fmt.Errorf("coupons.findOne: %w", err)
	}
	return fromCouponDoc(doc), nil
}

func (repo *CouponRepoMongo) Create(ctx context.Context, c core.Coupon) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toCouponDoc(c))
	if err != nil {
		var we mongodrv.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return core.ErrConflict
				}
			}
		}
		return fmt.Errorf("coupons.insert: %w", err)
	}
	return nil
}
