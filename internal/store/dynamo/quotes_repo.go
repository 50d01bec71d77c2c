package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/draycott/shortcover/internal/core"
)

type factorItem struct {
	Name    string  `dynamodbav:"name"`
	Percent float64 `dynamodbav:"percent"`
}

type startItem struct {
	Immediate bool   `dynamodbav:"immediate"`
	Day       int    `dynamodbav:"day"`
	Month     string `dynamodbav:"month"`
	Hour      int    `dynamodbav:"hour"`
	Minute    int    `dynamodbav:"minute"`
}

type QuoteItem struct {
	ID                 string       `dynamodbav:"id"`
	Status             string       `dynamodbav:"status"`
	Revision           int          `dynamodbav:"revision"`
	Total              float64      `dynamodbav:"total"`
	BasePrice          float64      `dynamodbav:"base_price"`
	DurationMultiplier float64      `dynamodbav:"duration_multiplier"`
	Discounts          []factorItem `dynamodbav:"discounts"`
	DurationLabel      string       `dynamodbav:"duration_label"`
	Reason             string       `dynamodbav:"reason"`
	StartTime          string       `dynamodbav:"start_time"`
	ExpiryTime         string       `dynamodbav:"expiry_time"`
	StartLabel         string       `dynamodbav:"start_label"`
	ExpiryLabel        string       `dynamodbav:"expiry_label"`
	CreatedAt          string       `dynamodbav:"created_at"`
	DurationUnit       string       `dynamodbav:"duration_unit"`
	DurationAmount     int          `dynamodbav:"duration_amount"`
	DateOfBirth        string       `dynamodbav:"date_of_birth"`
	LicenceHeldMonths  int          `dynamodbav:"licence_held_months"`
	VehicleValueBand   string       `dynamodbav:"vehicle_value_band"`
	Registration       string       `dynamodbav:"registration"`
	Start              startItem    `dynamodbav:"start"`
	PromoCode          string       `dynamodbav:"promo_code"`
	DiscountAmount     float64      `dynamodbav:"discount_amount"`
}

func (i QuoteItem) ToCore() core.Quote {
	startTime, _ := time.Parse(time.RFC3339, i.StartTime)
	expiryTime, _ := time.Parse(time.RFC3339, i.ExpiryTime)
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	dob, _ := time.Parse(time.RFC3339, i.DateOfBirth)

	factors := make([]core.AppliedFactor, 0, len(i.Discounts))
	for _, f := range i.Discounts {
		factors = append(factors, core.AppliedFactor{Name: f.Name, Percent: f.Percent})
	}

	return core.Quote{
		ID:                 i.ID,
		Status:             core.QuoteStatus(i.Status),
		Revision:           i.Revision,
		Total:              i.Total,
		BasePrice:          i.BasePrice,
		DurationMultiplier: i.DurationMultiplier,
		Breakdown: core.Breakdown{
			BasePrice:          i.BasePrice,
			DurationMultiplier: i.DurationMultiplier,
			Discounts:          factors,
			Duration:           i.DurationLabel,
			Reason:             i.Reason,
			Total:              i.Total,
		},
		StartTime:   startTime,
		ExpiryTime:  expiryTime,
		StartLabel:  i.StartLabel,
		ExpiryLabel: i.ExpiryLabel,
		CreatedAt:   createdAt,
		Input: core.QuoteInput{
			Duration: core.Duration{
				Unit:   core.DurationUnit(i.DurationUnit),
				Amount: i.DurationAmount,
			},
			DateOfBirth:       dob,
			LicenceHeldMonths: i.LicenceHeldMonths,
			VehicleValueBand:  i.VehicleValueBand,
			Registration:      i.Registration,
			Reason:            i.Reason,
			Start: core.StartSelection{
				Immediate: i.Start.Immediate,
				Day:       i.Start.Day,
				Month:     i.Start.Month,
				Hour:      i.Start.Hour,
				Minute:    i.Start.Minute,
			},
		},
		PromoCode:      i.PromoCode,
		DiscountAmount: i.DiscountAmount,
	}
}

func quoteItemFromCore(q core.Quote) QuoteItem {
	factors := make([]factorItem, 0, len(q.Breakdown.Discounts))
	for _, f := range q.Breakdown.Discounts {
		factors = append(factors, factorItem{Name: f.Name, Percent: f.Percent})
	}
	return QuoteItem{
		ID:                 q.ID,
		Status:             string(q.Status),
		Revision:           q.Revision,
		Total:              q.Total,
		BasePrice:          q.BasePrice,
		DurationMultiplier: q.DurationMultiplier,
		Discounts:          factors,
		DurationLabel:      q.Breakdown.Duration,
		Reason:             q.Breakdown.Reason,
		StartTime:          q.StartTime.Format(time.RFC3339),
		ExpiryTime:         q.ExpiryTime.Format(time.RFC3339),
		StartLabel:         q.StartLabel,
		ExpiryLabel:        q.ExpiryLabel,
		CreatedAt:          q.CreatedAt.Format(time.RFC3339),
		DurationUnit:       string(q.Input.Duration.Unit),
		DurationAmount:     q.Input.Duration.Amount,
		DateOfBirth:        q.Input.DateOfBirth.Format(time.RFC3339),
		LicenceHeldMonths:  q.Input.LicenceHeldMonths,
		VehicleValueBand:   q.Input.VehicleValueBand,
		Registration:       q.Input.Registration,
		Start: startItem{
			Immediate: q.Input.Start.Immediate,
			Day:       q.Input.Start.Day,
			Month:     q.Input.Start.Month,
			Hour:      q.Input.Start.Hour,
			Minute:    q.Input.Start.Minute,
		},
		PromoCode:      q.PromoCode,
		DiscountAmount: q.DiscountAmount,
	}
}

type QuoteRepo struct {
	client *dynamodb.Client
}

func NewQuoteRepo(client *dynamodb.Client) *QuoteRepo {
	return &QuoteRepo{client: client}
}

func (r *QuoteRepo) Create(ctx context.Context, q core.Quote) error {
	item := quoteItemFromCore(q)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("quotes.marshal: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("quotes.buildExpr: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(TableQuotes),
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
		return fmt.Errorf("quotes.putItem: %w", err)
	}

	return nil
}

func (r *QuoteRepo) Get(ctx context.Context, id string) (core.Quote, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TableQuotes),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return core.Quote{}, fmt.Errorf("quotes.getItem: %w", err)
	}
	if out.Item == nil {
		return core.Quote{}, core.ErrNotFound
	}

	var item QuoteItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.Quote{}, fmt.Errorf("quotes.unmarshal: %w", err)
	}
	return item.ToCore(), nil
}

func (r *QuoteRepo) Update(ctx context.Context, q core.Quote) error {
	item := quoteItemFromCore(q)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("quotes.marshal: %w", err)
	}

	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("quotes.buildExpr: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(TableQuotes),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return core.ErrNotFound
		}
		return fmt.Errorf("quotes.putItem: %w", err)
	}

	return nil
}

func (r *QuoteRepo) ListOlderThan(ctx context.Context, cutoff time.Time) ([]core.Quote, error) {
	keyCond := expression.Key("status").Equal(expression.Value(string(core.QuoteStatusFresh)))
	filter := expression.Name("created_at").LessThan(expression.Value(cutoff.Format(time.RFC3339)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("quotes.buildExpr: %w", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(TableQuotes),
		IndexName:                 aws.String(GSIQuotesStatus),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("quotes.query: %w", err)
	}

	quotes := make([]core.Quote, 0, len(out.Items))
	for _, raw := range out.Items {
		var item QuoteItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("quotes.unmarshal: %w", err)
		}
		quotes = append(quotes, item.ToCore())
	}
	return quotes, nil
}
