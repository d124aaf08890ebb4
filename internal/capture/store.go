package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pannastore/checkout-capture/internal/aws"
)

// DedupeIndex is the GSI on dedupe_key used by the existing-partial lookup.
const DedupeIndex = "dedupe_key-index"

// Store encapsulates operations on the partial-checkout records table.
// Records are only ever created through the capture service; there is no
// public creation path.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a records Store bound to a table.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new record. Timestamps are filled in if unset. There is
// deliberately no uniqueness condition on the dedupe key: concurrent captures
// that pass the lookup before either write lands may both insert.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	now := s.nowFunc()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// Get fetches a record by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, recordID string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"record_id": &types.AttributeValueMemberS{Value: recordID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// Delete hard-deletes a record. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, recordID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"record_id": &types.AttributeValueMemberS{Value: recordID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// FindIDByDedupeKey returns the id of a published record with the given
// dedupe key, or "" when none exists. Reads go through the GSI and are
// eventually consistent. The status filter runs after each page is read, so
// pages are walked until a published record turns up or the partition is
// exhausted; a Limit would count filtered-out records against the page.
func (s *Store) FindIDByDedupeKey(ctx context.Context, dedupeKey string) (string, error) {
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dyn.QueryInput{
			TableName:              &s.tableName,
			IndexName:              awsString(DedupeIndex),
			KeyConditionExpression: awsString("dedupe_key = :dk"),
			FilterExpression:       awsString("#s = :published"),
			ExpressionAttributeNames: map[string]string{
				"#s": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":dk":        &types.AttributeValueMemberS{Value: dedupeKey},
				":published": &types.AttributeValueMemberS{Value: StatusPublished},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return "", fmt.Errorf("query dedupe key: %w", err)
		}
		if len(out.Items) > 0 {
			var rec Record
			if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
				return "", fmt.Errorf("unmarshal record: %w", err)
			}
			return rec.RecordID, nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return "", nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// List returns up to limit records for the admin view.
func (s *Store) List(ctx context.Context, limit int32) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.tableName,
		Limit:     awsInt32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	records := make([]Record, 0, len(out.Items))
	for _, item := range out.Items {
		var rec Record
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func awsString(s string) *string { return &s }
func awsInt32(n int32) *int32    { return &n }
