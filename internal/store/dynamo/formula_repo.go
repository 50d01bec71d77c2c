package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/draycott/shortcover/internal/core"
)

// FormulaItemID: the formula is a singleton item.
const FormulaItemID = "current"

type tierItem struct {
	Threshold int     `dynamodbav:"threshold"`
	Discount  float64 `dynamodbav:"discount"`
}

type FormulaItem struct {
	ID                   string     `dynamodbav:"id"`
	BaseHourlyRate       float64    `dynamodbav:"base_hourly_rate"`
	BaseDailyRate        float64    `dynamodbav:"base_daily_rate"`
	MultiDayDiscountPct  float64    `dynamodbav:"multi_day_discount_pct"`
	MultiWeekDiscountPct float64    `dynamodbav:"multi_week_discount_pct"`
	AgeDiscounts         []tierItem `dynamodbav:"age_discounts"`
	LicenceDiscounts     []tierItem `dynamodbav:"licence_discounts"`
}

type FormulaRepo struct {
	client *dynamodb.Client
}

func NewFormulaRepo(client *dynamodb.Client) *FormulaRepo {
	return &FormulaRepo{client: client}
}

func (r *FormulaRepo) Get(ctx context.Context) (core.QuoteFormula, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TableFormula),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: FormulaItemID},
		},
	})
	if err != nil {
		return core.QuoteFormula{}, fmt.Errorf("formula.getItem: %w", err)
	}
	if out.Item == nil {
		return core.QuoteFormula{}, core.ErrNotFound
	}

	var item FormulaItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.QuoteFormula{}, fmt.Errorf("formula.unmarshal: %w", err)
	}

	age, err := core.NewTierTable(fromTierItems(item.AgeDiscounts))
	if err != nil {
		return core.QuoteFormula{}, err
	}
	licence, err := core.NewTierTable(fromTierItems(item.LicenceDiscounts))
	if err != nil {
		return core.QuoteFormula{}, err
	}
	return core.QuoteFormula{
		BaseHourlyRate:       item.BaseHourlyRate,
		BaseDailyRate:        item.BaseDailyRate,
		MultiDayDiscountPct:  item.MultiDayDiscountPct,
		MultiWeekDiscountPct: item.MultiWeekDiscountPct,
		AgeDiscounts:         age,
		LicenceDiscounts:     licence,
	}, nil
}

// Put upserts the singleton formula item (seeding/admin only).
func (r *FormulaRepo) Put(ctx context.Context, f core.QuoteFormula) error {
	item := FormulaItem{
		ID:                   FormulaItemID,
		BaseHourlyRate:       f.BaseHourlyRate,
		BaseDailyRate:        f.BaseDailyRate,
		MultiDayDiscountPct:  f.MultiDayDiscountPct,
		MultiWeekDiscountPct: f.MultiWeekDiscountPct,
		AgeDiscounts:         toTierItems(f.AgeDiscounts.Tiers()),
		LicenceDiscounts:     toTierItems(f.LicenceDiscounts.Tiers()),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("formula.marshal: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(TableFormula),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("formula.putItem: %w", err)
	}
	return nil
}

func toTierItems(tiers []core.DiscountTier) []tierItem {
	out := make([]tierItem, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, tierItem{Threshold: t.Threshold, Discount: t.Percent})
	}
	return out
}

func fromTierItems(items []tierItem) []core.DiscountTier {
	out := make([]core.DiscountTier, 0, len(items))
	for _, i := range items {
		out = append(out, core.DiscountTier{Threshold: i.Threshold, Percent: i.Discount})
	}
	return out
}
