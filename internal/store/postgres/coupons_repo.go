package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/draycott/shortcover/internal/core"
)

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (core.Coupon, error) {
	const query = `
		SELECT code, discount_type, discount_value, max_discount,
		       elig_last_name, elig_dob, elig_registration, active
		FROM coupons
		WHERE code = $1;
	`

	var c core.Coupon
	var discountType string
	err := r.db.QueryRowContext(ctx, query, core.NormalizeCode(code)).Scan(
		&c.Code,
		&discountType,
		&c.Value,
		&c.MaxDiscount,
		&c.Eligibility.LastName,
		&c.Eligibility.DateOfBirth,
		&c.Eligibility.Registration,
		&c.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Coupon{}, core.ErrNotFound
		}
		return core.Coupon{}, fmt.Errorf("coupons.select: %w", err)
	}
	c.Type = core.DiscountType(discountType)
	return c, nil
}

func (r *CouponRepo) Create(ctx context.Context, c core.Coupon) error {
	const query = `
		INSERT INTO coupons (code, discount_type, discount_value, max_discount,
		                     elig_last_name, elig_dob, elig_registration, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := r.db.ExecContext(ctx, query,
		core.NormalizeCode(c.Code),
		string(c.Type),
		c.Value,
		c.MaxDiscount,
		c.Eligibility.LastName,
		c.Eligibility.DateOfBirth,
		c.Eligibility.Registration,
		c.Active,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return core.ErrConflict
		}
		return fmt.Errorf("coupons.insert: %w", err)
	}
	return nil
}
