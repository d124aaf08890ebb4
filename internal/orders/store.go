package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/pannastore/checkout-capture/internal/aws"
)

// ErrOrderMissing is returned by AddNote when the order row does not exist.
var ErrOrderMissing = errors.New("order does not exist")

// BillingPhoneIndex is the GSI on billing_phone used by the dedup check.
const BillingPhoneIndex = "billing_phone-index"

// Store encapsulates the read-and-annotate operations this service performs
// on the commerce orders table. Order lifecycle is owned by the host
// platform, not here.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates an orders Store bound to a table.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Get fetches an order by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// FindIDByBillingPhone returns the id of an order whose billing phone matches
// phoneDigits and whose status is one of statuses, or "" when none exists.
// The filter runs after the page is read, so pages are walked until a match
// or the partition is exhausted; a Limit here would cap evaluated items, not
// matching ones, and could hide a match behind filtered-out orders.
func (s *Store) FindIDByBillingPhone(ctx context.Context, phoneDigits string, statuses []string) (string, error) {
	names := map[string]string{"#s": "status"}
	values := map[string]types.AttributeValue{
		":bp": &types.AttributeValueMemberS{Value: phoneDigits},
	}

	placeholders := make([]string, 0, len(statuses))
	for i, st := range statuses {
		ph := fmt.Sprintf(":s%d", i)
		placeholders = append(placeholders, ph)
		values[ph] = &types.AttributeValueMemberS{Value: st}
	}

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dyn.QueryInput{
			TableName:                 &s.tableName,
			IndexName:                 awsString(BillingPhoneIndex),
			KeyConditionExpression:    awsString("billing_phone = :bp"),
			FilterExpression:          awsString("#s IN (" + strings.Join(placeholders, ", ") + ")"),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return "", fmt.Errorf("query billing phone: %w", err)
		}
		if len(out.Items) > 0 {
			var o Order
			if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
				return "", fmt.Errorf("unmarshal order: %w", err)
			}
			return o.OrderID, nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return "", nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// AddNote appends a permanent note to the order.
func (s *Store) AddNote(ctx context.Context, orderID, note string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression: awsString("SET notes = list_append(if_not_exists(notes, :empty), :note), updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":note":  &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: note}}},
			":ua":    &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
	})
	if err != nil {
		// detect conditional check failure
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrOrderMissing
		}
		return fmt.Errorf("append order note: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
