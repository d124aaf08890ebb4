package carts

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/pannastore/checkout-capture/internal/capture"
)

type mockDynamoDB struct {
	getItemFunc func(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
}

func (m *mockDynamoDB) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, params, optFns...)
	}
	return &dyn.GetItemOutput{}, nil
}

func (m *mockDynamoDB) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamoDB) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return &dyn.UpdateItemOutput{}, nil
}

func (m *mockDynamoDB) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamoDB) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return &dyn.QueryOutput{}, nil
}

func (m *mockDynamoDB) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return &dyn.ScanOutput{}, nil
}

func TestGetUnknownCart(t *testing.T) {
	store := NewStore(&mockDynamoDB{}, "carts")

	items, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if items != nil {
		t.Errorf("expected nil items, got %+v", items)
	}
}

func TestGetCartItems(t *testing.T) {
	item, err := attributevalue.MarshalMap(Cart{
		CartID: "c1",
		Items:  []capture.CartItem{{Name: "Widget", Qty: 2, Price: "$9.99"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	mock := &mockDynamoDB{
		getItemFunc: func(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
			return &dyn.GetItemOutput{Item: item}, nil
		},
	}
	store := NewStore(mock, "carts")

	items, err := store.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Widget" {
		t.Errorf("unexpected items: %+v", items)
	}
}
