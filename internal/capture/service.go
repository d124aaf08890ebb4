package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pannastore/checkout-capture/internal/cache"
	"github.com/pannastore/checkout-capture/internal/metrics"
	"github.com/pannastore/checkout-capture/internal/orders"
	"github.com/pannastore/checkout-capture/internal/phone"
)

// ErrInvalidInput is returned when name or address is empty or the phone has
// fewer than the minimum digits. Nothing is written in that case.
var ErrInvalidInput = errors.New("missing or invalid required fields")

// Outcome messages returned to the collector.
const (
	MsgSaved          = "Saved"
	MsgAlreadySaved   = "Already saved"
	MsgOrderCompleted = "Order already completed"
)

// RecordWriter is the slice of the record store the capture flow needs.
type RecordWriter interface {
	FindIDByDedupeKey(ctx context.Context, dedupeKey string) (string, error)
	Create(ctx context.Context, rec *Record) error
}

// OrderFinder looks up existing orders by billing phone; implemented by
// orders.Store.
type OrderFinder interface {
	FindIDByBillingPhone(ctx context.Context, phoneDigits string, statuses []string) (string, error)
}

// Input is a validated capture request.
type Input struct {
	Name     string
	Phone    string // raw, as typed
	Address  string
	IP       string
	Products []CartItem
}

// Outcome reports what a capture call did.
type Outcome struct {
	Message  string
	RecordID string
	Created  bool
}

// Service runs the capture pipeline: validate, dedup against partial records
// and placed orders through the lookup caches, then persist and map.
type Service struct {
	records    RecordWriter
	orders     OrderFinder
	cache      cache.Store
	lookupTTL  time.Duration
	mappingTTL time.Duration
	metrics    *metrics.Emitter
	logger     *zap.Logger
	nowFunc    func() time.Time
}

// NewService wires a capture Service. emitter may be nil.
func NewService(records RecordWriter, orderFinder OrderFinder, cacheStore cache.Store, lookupTTL, mappingTTL time.Duration, emitter *metrics.Emitter, logger *zap.Logger) *Service {
	return &Service{
		records:    records,
		orders:     orderFinder,
		cache:      cacheStore,
		lookupTTL:  lookupTTL,
		mappingTTL: mappingTTL,
		metrics:    emitter,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// Capture runs the full capture pipeline for one snapshot. Dedup hits are
// successes: the caller already has what it wanted, a saved record.
func (s *Service) Capture(ctx context.Context, in Input) (Outcome, error) {
	name := strings.TrimSpace(in.Name)
	address := strings.TrimSpace(in.Address)
	digits := phone.Normalize(in.Phone)

	if name == "" || address == "" || len(digits) < phone.MinDigits {
		s.metrics.Count(ctx, metrics.CaptureValidationFailed)
		return Outcome{}, ErrInvalidInput
	}

	// Existing partial record for the same phone+address.
	recordID, found, err := cache.CachedLookup(ctx, s.cache, LookupKey(digits, address), s.lookupTTL, func(ctx context.Context) (string, error) {
		return s.records.FindIDByDedupeKey(ctx, DedupeKey(digits, address))
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("partial record lookup: %w", err)
	}
	if found {
		s.metrics.Count(ctx, metrics.CaptureDuplicate)
		return Outcome{Message: MsgAlreadySaved, RecordID: recordID}, nil
	}

	// Order already placed with this phone: nothing worth recovering.
	orderID, found, err := cache.CachedLookup(ctx, s.cache, OrderLookupKey(digits), s.lookupTTL, func(ctx context.Context) (string, error) {
		return s.orders.FindIDByBillingPhone(ctx, digits, orders.PlacedStatuses)
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("order lookup: %w", err)
	}
	if found {
		s.metrics.Count(ctx, metrics.CaptureOrderExists)
		s.logger.Debug("capture suppressed by existing order",
			zap.String("order_id", orderID))
		return Outcome{Message: MsgOrderCompleted}, nil
	}

	now := s.nowFunc()
	rec := &Record{
		RecordID:  uuid.NewString(),
		Title:     name,
		Note:      FormatNote(in.Phone, address, in.IP, in.Products),
		Status:    StatusPublished,
		Phone:     digits,
		Address:   address,
		IP:        in.IP,
		Products:  in.Products,
		DedupeKey: DedupeKey(digits, address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("save partial checkout: %w", err)
	}

	// Refresh the lookup cache so repeat snapshots within the dedup window
	// short-circuit without touching the index, and point the phone mapping
	// at the new record for the completion handler. Both are best effort and
	// neither is atomic with the insert.
	if err := s.cache.Set(ctx, LookupKey(digits, address), rec.RecordID, s.lookupTTL); err != nil {
		s.logger.Warn("lookup cache refresh failed", zap.Error(err))
	}
	if err := s.cache.Set(ctx, MappingKey(digits), rec.RecordID, s.mappingTTL); err != nil {
		s.logger.Warn("phone mapping write failed", zap.Error(err))
	}

	s.metrics.Count(ctx, metrics.CaptureSaved)
	s.logger.Info("partial checkout saved",
		zap.String("record_id", rec.RecordID),
		zap.Int("products", len(in.Products)))

	return Outcome{Message: MsgSaved, RecordID: rec.RecordID, Created: true}, nil
}
