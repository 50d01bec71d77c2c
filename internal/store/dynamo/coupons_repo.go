package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/draycott/shortcover/internal/core"
)

type CouponItem struct {
	Code             string  `dynamodbav:"code"`
	Type             string  `dynamodbav:"type"`
	Value            float64 `dynamodbav:"value"`
	MaxDiscount      float64 `dynamodbav:"max_discount"`
	EligLastName     string  `dynamodbav:"elig_last_name"`
	EligDateOfBirth  string  `dynamodbav:"elig_date_of_birth"`
	EligRegistration string  `dynamodbav:"elig_registration"`
	Active           bool    `dynamodbav:"active"`
}

func (i CouponItem) ToCore() core.Coupon {
	return core.Coupon{
		Code:        i.Code,
		Type:        core.DiscountType(i.Type),
		Value:       i.Value,
		MaxDiscount: i.MaxDiscount,
		Eligibility: core.Eligibility{
			LastName:     i.EligLastName,
			DateOfBirth:  i.EligDateOfBirth,
			Registration: i.EligRegistration,
		},
		Active: i.Active,
	}
}

func couponItemFromCore(c core.Coupon) CouponItem {
	return CouponItem{
		Code:             core.NormalizeCode(c.Code),
		Type:             string(c.Type),
		Value:            c.Value,
		MaxDiscount:      c.MaxDiscount,
		EligLastName:     c.Eligibility.LastName,
		EligDateOfBirth:  c.Eligibility.DateOfBirth,
		EligRegistration: c.Eligibility.Registration,
		Active:           c.Active,
	}
}

type CouponRepo struct {
	client *dynamodb.Client
}

func NewCouponRepo(client *dynamodb.Client) *CouponRepo {
	return &CouponRepo{client: client}
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (core.Coupon, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TableCoupons),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: core.NormalizeCode(code)},
		},
	})
	if err != nil {
		return core.Coupon{}, fmt.Errorf("coupons.getItem: %w", err)
	}
	if out.Item == nil {
		return core.Coupon{}, core.ErrNotFound
	}

	var item CouponItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.Coupon{}, fmt.Errorf("coupons.unmarshal: %w", err)
	}
	return item.ToCore(), nil
}

func (r *CouponRepo) Create(ctx context.Context, c core.Coupon) error {
	item := couponItemFromCore(c)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("coupons.marshal: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("code"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("coupons.buildExpr: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(TableCoupons),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return core.ErrConflict
		}
		return fmt.Errorf("coupons.putItem: %w", err)
	}

	return nil
}
