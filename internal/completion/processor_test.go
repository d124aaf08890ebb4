package completion

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/pannastore/checkout-capture/internal/cache"
	"github.com/pannastore/checkout-capture/internal/capture"
	"github.com/pannastore/checkout-capture/internal/orders"
)

type fakeOrderStore struct {
	orders map[string]*orders.Order
	notes  map[string][]string
}

func newFakeOrderStore(os ...*orders.Order) *fakeOrderStore {
	f := &fakeOrderStore{orders: map[string]*orders.Order{}, notes: map[string][]string{}}
	for _, o := range os {
		f.orders[o.OrderID] = o
	}
	return f
}

func (f *fakeOrderStore) Get(ctx context.Context, orderID string) (*orders.Order, error) {
	return f.orders[orderID], nil
}

func (f *fakeOrderStore) AddNote(ctx context.Context, orderID, note string) error {
	f.notes[orderID] = append(f.notes[orderID], note)
	return nil
}

type fakeRecordStore struct {
	records map[string]*capture.Record
	deleted []string
}

func newFakeRecordStore(recs ...*capture.Record) *fakeRecordStore {
	f := &fakeRecordStore{records: map[string]*capture.Record{}}
	for _, r := range recs {
		f.records[r.RecordID] = r
	}
	return f
}

func (f *fakeRecordStore) Get(ctx context.Context, recordID string) (*capture.Record, error) {
	return f.records[recordID], nil
}

func (f *fakeRecordStore) Delete(ctx context.Context, recordID string) error {
	delete(f.records, recordID)
	f.deleted = append(f.deleted, recordID)
	return nil
}

func testOrder() *orders.Order {
	return &orders.Order{
		OrderID:        "ord-1",
		BillingName:    "Jane",
		BillingPhone:   "5551234567",
		BillingAddress: "12 Main St",
		Status:         orders.StatusProcessing,
		CustomerIP:     "203.0.113.9",
		Items: []orders.OrderItem{
			{Name: "Widget", Qty: 2, Price: "$9.99"},
		},
	}
}

func TestHandleOrderConfirmedCleansUpAndAnnotates(t *testing.T) {
	ctx := context.Background()
	orderStore := newFakeOrderStore(testOrder())
	recordStore := newFakeRecordStore(&capture.Record{RecordID: "rec-1", Phone: "5551234567"})

	mapping := cache.NewMemory()
	defer mapping.Close()
	if err := mapping.Set(ctx, capture.MappingKey("5551234567"), "rec-1", time.Hour); err != nil {
		t.Fatal(err)
	}

	proc := NewProcessor(orderStore, recordStore, mapping, nil, zap.NewNop())

	note, err := proc.HandleOrderConfirmed(ctx, "ord-1")
	if err != nil {
		t.Fatalf("HandleOrderConfirmed failed: %v", err)
	}
	if !strings.Contains(note, "Widget</a> × 2") {
		t.Errorf("note missing order items:\n%s", note)
	}
	if len(recordStore.deleted) != 1 || recordStore.deleted[0] != "rec-1" {
		t.Errorf("record not cleaned up: %v", recordStore.deleted)
	}
	if _, res, _ := mapping.Get(ctx, capture.MappingKey("5551234567")); res != cache.Miss {
		t.Errorf("mapping not removed, got %v", res)
	}
	got := orderStore.notes["ord-1"]
	if len(got) != 1 || got[0] != note {
		t.Errorf("order not annotated: %v", got)
	}
}

func TestHandleOrderConfirmedIdempotent(t *testing.T) {
	ctx := context.Background()
	orderStore := newFakeOrderStore(testOrder())
	recordStore := newFakeRecordStore(&capture.Record{RecordID: "rec-1"})

	mapping := cache.NewMemory()
	defer mapping.Close()
	_ = mapping.Set(ctx, capture.MappingKey("5551234567"), "rec-1", time.Hour)

	proc := NewProcessor(orderStore, recordStore, mapping, nil, zap.NewNop())

	for i := 0; i < 2; i++ {
		if _, err := proc.HandleOrderConfirmed(ctx, "ord-1"); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	if len(recordStore.deleted) != 1 {
		t.Errorf("expected exactly one delete, got %v", recordStore.deleted)
	}
	// The note is appended on every confirmation, cleanup is the idempotent
	// half.
	if len(orderStore.notes["ord-1"]) != 2 {
		t.Errorf("expected a note per run, got %v", orderStore.notes["ord-1"])
	}
}

func TestHandleOrderConfirmedDanglingMapping(t *testing.T) {
	ctx := context.Background()
	orderStore := newFakeOrderStore(testOrder())
	recordStore := newFakeRecordStore() // mapped record already gone

	mapping := cache.NewMemory()
	defer mapping.Close()
	_ = mapping.Set(ctx, capture.MappingKey("5551234567"), "rec-gone", time.Hour)

	proc := NewProcessor(orderStore, recordStore, mapping, nil, zap.NewNop())

	note, err := proc.HandleOrderConfirmed(ctx, "ord-1")
	if err != nil {
		t.Fatalf("HandleOrderConfirmed failed: %v", err)
	}
	if note == "" {
		t.Error("expected a note even without cleanup")
	}
	// Dangling mappings are left to expire rather than deleted blind.
	if _, res, _ := mapping.Get(ctx, capture.MappingKey("5551234567")); res != cache.HitValue {
		t.Errorf("dangling mapping removed, got %v", res)
	}
}

func TestHandleOrderConfirmedUnknownOrder(t *testing.T) {
	proc := NewProcessor(newFakeOrderStore(), newFakeRecordStore(), nopStore{}, nil, zap.NewNop())

	note, err := proc.HandleOrderConfirmed(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected nil error for unknown order, got %v", err)
	}
	if note != "" {
		t.Errorf("expected empty note, got %q", note)
	}
}

func TestHandleBatch(t *testing.T) {
	orderStore := newFakeOrderStore(testOrder())
	proc := NewProcessor(orderStore, newFakeRecordStore(), nopStore{}, nil, zap.NewNop())

	err := proc.Handle(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{
			{Body: `{"order_id":"ord-1"}`},
			{Body: `{"order_id":"unknown"}`},
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(orderStore.notes["ord-1"]) != 1 {
		t.Errorf("confirmed order not annotated")
	}
}

func TestHandleBadBody(t *testing.T) {
	proc := NewProcessor(newFakeOrderStore(), newFakeRecordStore(), nopStore{}, nil, zap.NewNop())

	err := proc.Handle(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{{Body: "not json"}},
	})
	if err == nil {
		t.Error("expected error for undecodable body")
	}
}

type nopStore struct{}

func (nopStore) Get(ctx context.Context, key string) (string, cache.Result, error) {
	return "", cache.Miss, nil
}
func (nopStore) Set(ctx context.Context, key, value string, ttl time.Duration) error { return nil }
func (nopStore) Delete(ctx context.Context, key string) error                        { return nil }
