// Package completion handles order-confirmed events: it clears the matching
// partial-checkout record through the phone->record mapping and appends the
// checkout details as a permanent note on the order.
package completion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/pannastore/checkout-capture/internal/cache"
	"github.com/pannastore/checkout-capture/internal/capture"
	"github.com/pannastore/checkout-capture/internal/metrics"
	"github.com/pannastore/checkout-capture/internal/orders"
	"github.com/pannastore/checkout-capture/internal/phone"
)

// OrderConfirmedMessage is the payload on the order-confirmed queue.
type OrderConfirmedMessage struct {
	OrderID       string `json:"order_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// OrderAPI is the slice of the order store the processor needs.
type OrderAPI interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	AddNote(ctx context.Context, orderID, note string) error
}

// RecordAPI is the slice of the record store the processor needs.
type RecordAPI interface {
	Get(ctx context.Context, recordID string) (*capture.Record, error)
	Delete(ctx context.Context, recordID string) error
}

// Processor performs the completion work for one confirmed order.
type Processor struct {
	orders  OrderAPI
	records RecordAPI
	mapping cache.Store
	metrics *metrics.Emitter
	logger  *zap.Logger
}

// NewProcessor wires a completion Processor. emitter may be nil.
func NewProcessor(orderStore OrderAPI, recordStore RecordAPI, mapping cache.Store, emitter *metrics.Emitter, logger *zap.Logger) *Processor {
	return &Processor{
		orders:  orderStore,
		records: recordStore,
		mapping: mapping,
		metrics: emitter,
		logger:  logger,
	}
}

// HandleOrderConfirmed clears the partial record mapped to the order's
// billing phone, then annotates the order. The two halves are independent:
// cleanup failures never block the annotation, and annotation failures are
// logged and swallowed. Returns the rendered note ("" when the order is
// unknown) for thank-you page output.
func (p *Processor) HandleOrderConfirmed(ctx context.Context, orderID string) (string, error) {
	if orderID == "" {
		return "", nil
	}

	order, err := p.orders.Get(ctx, orderID)
	if err != nil || order == nil {
		p.logger.Warn("order not resolvable, skipping completion",
			zap.String("order_id", orderID), zap.Error(err))
		return "", nil
	}

	p.cleanup(ctx, order)

	note := OrderNote(order)
	if err := p.orders.AddNote(ctx, orderID, note); err != nil {
		p.logger.Warn("order annotation failed",
			zap.String("order_id", orderID), zap.Error(err))
	}

	return note, nil
}

// cleanup deletes the mapped partial record, if any. The mapping is removed
// only after the record was confirmed to exist, matching the capture-side
// rule that a dangling mapping is left to expire on its own.
func (p *Processor) cleanup(ctx context.Context, order *orders.Order) {
	digits := phone.Normalize(order.BillingPhone)
	if digits == "" {
		return
	}

	key := capture.MappingKey(digits)
	recordID, res, err := p.mapping.Get(ctx, key)
	if err != nil || res != cache.HitValue {
		return
	}

	rec, err := p.records.Get(ctx, recordID)
	if err != nil || rec == nil {
		return
	}

	if err := p.records.Delete(ctx, recordID); err != nil {
		p.logger.Warn("partial record delete failed",
			zap.String("record_id", recordID), zap.Error(err))
		return
	}
	if err := p.mapping.Delete(ctx, key); err != nil {
		p.logger.Warn("phone mapping delete failed", zap.Error(err))
	}

	p.metrics.Count(ctx, metrics.CompletionCleaned)
	p.logger.Info("partial checkout cleaned up",
		zap.String("order_id", order.OrderID),
		zap.String("record_id", recordID))
}

// Handle processes a batch of order-confirmed SQS messages. An undecodable
// body is returned as an error so the runtime retries and eventually DLQs it.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		var msg OrderConfirmedMessage
		if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
			return fmt.Errorf("invalid message body: %w", err)
		}
		if _, err := p.HandleOrderConfirmed(ctx, msg.OrderID); err != nil {
			return err
		}
	}
	return nil
}

// OrderNote renders the annotation for a confirmed order from the order's
// own items, in the same shape the capture note uses.
func OrderNote(o *orders.Order) string {
	items := make([]capture.CartItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, capture.CartItem{
			Name:  it.Name,
			Qty:   it.Qty,
			Price: it.Price,
			URL:   it.URL,
		})
	}
	return capture.FormatNote(o.BillingPhone, o.BillingAddress, o.CustomerIP, items)
}
