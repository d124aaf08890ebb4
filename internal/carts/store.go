// Package carts reads cart snapshots owned by the host commerce platform.
// The collector bootstrap endpoint serializes a snapshot into the page so the
// client never has to walk the cart itself.
package carts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pannastore/checkout-capture/internal/aws"
	"github.com/pannastore/checkout-capture/internal/capture"
)

// Cart is the stored snapshot for one checkout session.
type Cart struct {
	CartID string             `dynamodbav:"cart_id"` // PK
	Items  []capture.CartItem `dynamodbav:"items,omitempty"`
}

// Store reads carts from DynamoDB. Read-only by design.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a carts Store bound to a table.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// Get returns the items of a cart, or (nil, nil) when the cart is unknown or
// empty. An empty cart simply means the collector has nothing to report.
func (s *Store) Get(ctx context.Context, cartID string) ([]capture.CartItem, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"cart_id": &types.AttributeValueMemberS{Value: cartID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var cart Cart
	if err := attributevalue.UnmarshalMap(out.Item, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return cart.Items, nil
}
