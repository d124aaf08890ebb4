// Package metrics emits capture-flow counters to CloudWatch. Everything is
// best effort: a metrics failure must never fail a capture.
package metrics

import (
	"context"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/pannastore/checkout-capture/internal/aws"
)

// Metric names reported by the service.
const (
	CaptureSaved            = "CaptureSaved"
	CaptureDuplicate        = "CaptureDuplicate"
	CaptureOrderExists      = "CaptureOrderExists"
	CaptureValidationFailed = "CaptureValidationFailed"
	CompletionCleaned       = "CompletionCleaned"
)

// Emitter publishes counters under a single namespace. A nil Emitter is a
// no-op, so callers never need to guard.
type Emitter struct {
	client    aws.CloudWatchAPI
	namespace string
	logger    *zap.Logger
	nowFunc   func() time.Time
}

// NewEmitter returns an Emitter. logger may not be nil.
func NewEmitter(client aws.CloudWatchAPI, namespace string, logger *zap.Logger) *Emitter {
	if namespace == "" {
		namespace = "CheckoutCapture"
	}
	return &Emitter{
		client:    client,
		namespace: namespace,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// Count adds 1 to the named counter.
func (e *Emitter) Count(ctx context.Context, name string) {
	if e == nil || e.client == nil {
		return
	}

	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(e.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(name),
				Timestamp:  sdkaws.Time(e.nowFunc()),
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(1),
			},
		},
	})
	if err != nil {
		e.logger.Warn("put metric data failed", zap.String("metric", name), zap.Error(err))
	}
}
