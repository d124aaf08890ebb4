package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pannastore/checkout-capture/internal/aws"
	"github.com/pannastore/checkout-capture/internal/capture"
	"github.com/pannastore/checkout-capture/internal/completion"
	"github.com/pannastore/checkout-capture/internal/metrics"
	"github.com/pannastore/checkout-capture/internal/nonce"
	"github.com/pannastore/checkout-capture/internal/validation"
	"github.com/pannastore/checkout-capture/web"
)

// CartReader provides the cart snapshot for the collector bootstrap.
type CartReader interface {
	Get(ctx context.Context, cartID string) ([]capture.CartItem, error)
}

// RecordReader backs the read-only admin views.
type RecordReader interface {
	List(ctx context.Context, limit int32) ([]capture.Record, error)
	Get(ctx context.Context, recordID string) (*capture.Record, error)
}

// Config groups dependencies for the capture routes. Everything is wired
// once at startup; handlers hold no package-level state.
type Config struct {
	Capture    *capture.Service
	Completion *completion.Processor
	Records    RecordReader
	Carts      CartReader
	Nonce      *nonce.Issuer
	Publisher  *aws.Publisher   // nil: process order-confirmed hooks inline
	Metrics    *metrics.Emitter // nil-safe
	Logger     *zap.Logger
}

// Register registers all capture routes.
func Register(r *gin.Engine, cfg Config) {
	v := validation.New()

	r.GET("/checkout/collector.js", serveCollector)
	r.GET("/checkout/session", sessionHandler(cfg))
	r.POST("/checkout/capture", captureHandler(cfg, v))
	r.GET("/checkout/confirmation/:order_id", confirmationHandler(cfg))
	r.POST("/hooks/order-confirmed", orderConfirmedHandler(cfg, v))

	// The partial-checkout record type is internal: list and detail views
	// only, no creation route. Records come into existence solely through
	// the capture endpoint.
	admin := r.Group("/admin")
	admin.GET("/partial-checkouts", listRecordsHandler(cfg))
	admin.GET("/partial-checkouts/:id", getRecordHandler(cfg))
}

// The response envelope mirrors what the collector expects:
// {"success": bool, "data": payload}.

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondFail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "data": msg})
}

func serveCollector(c *gin.Context) {
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", web.CollectorJS)
}

// sessionHandler returns the config object the storefront inlines for the
// collector: capture endpoint, anti-forgery token and the cart snapshot.
func sessionHandler(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := c.Query("cart_id")
		if cartID == "" {
			respondFail(c, http.StatusBadRequest, "Missing cart_id")
			return
		}

		items, err := cfg.Carts.Get(c.Request.Context(), cartID)
		if err != nil {
			cfg.Logger.Error("cart snapshot load failed", zap.Error(err))
			respondFail(c, http.StatusInternalServerError, "Failed to load cart")
			return
		}
		if items == nil {
			items = []capture.CartItem{}
		}

		respondOK(c, gin.H{
			"endpoint": "/checkout/capture",
			"action":   validation.CaptureAction,
			"token":    cfg.Nonce.Create(),
			"cart":     items,
		})
	}
}

func captureHandler(cfg Config, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Token first, like the original flow: an unverified request
		// learns nothing about field validation.
		if !cfg.Nonce.Verify(c.PostForm("security")) {
			respondFail(c, http.StatusForbidden, "Invalid security token")
			return
		}

		var form validation.CaptureForm
		if err := validation.BindAndValidate(c, &form, v); err != nil {
			cfg.Metrics.Count(ctx, metrics.CaptureValidationFailed)
			cfg.Logger.Debug("capture validation failed",
				zap.Any("fields", validation.FieldErrors(err)))
			return
		}

		var products []capture.CartItem
		if form.Products != "" {
			if err := json.Unmarshal([]byte(form.Products), &products); err != nil {
				cfg.Metrics.Count(ctx, metrics.CaptureValidationFailed)
				respondFail(c, http.StatusBadRequest, "Missing or invalid required fields")
				return
			}
		}

		out, err := cfg.Capture.Capture(ctx, capture.Input{
			Name:     form.Name,
			Phone:    form.Phone,
			Address:  form.Address,
			IP:       c.ClientIP(),
			Products: products,
		})
		if errors.Is(err, capture.ErrInvalidInput) {
			respondFail(c, http.StatusBadRequest, "Missing or invalid required fields")
			return
		}
		if err != nil {
			cfg.Logger.Error("capture failed", zap.Error(err))
			respondFail(c, http.StatusInternalServerError, "Failed to save data")
			return
		}

		respondOK(c, out.Message)
	}
}

// confirmationHandler runs the completion work and returns the rendered
// annotation for the thank-you page. Re-running it is harmless: cleanup is
// idempotent and only the note is recomputed.
func confirmationHandler(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		note, err := cfg.Completion.HandleOrderConfirmed(c.Request.Context(), c.Param("order_id"))
		if err != nil {
			cfg.Logger.Error("completion failed", zap.Error(err))
			respondFail(c, http.StatusInternalServerError, "Failed to process order")
			return
		}
		if note == "" {
			respondFail(c, http.StatusNotFound, "Order not found")
			return
		}
		respondOK(c, note)
	}
}

// orderConfirmedHandler accepts the machine-to-machine confirmation hook.
// With a publisher configured the event is queued for the worker; otherwise
// it is processed inline.
func orderConfirmedHandler(cfg Config, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.OrderConfirmedRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		if cfg.Publisher != nil {
			msg := completion.OrderConfirmedMessage{
				OrderID:       req.OrderID,
				CorrelationID: c.GetHeader("X-Request-Id"),
			}
			body, _ := json.Marshal(msg)
			if err := cfg.Publisher.SendOrderConfirmed(ctx, string(body), map[string]string{
				"order_id": req.OrderID,
			}); err != nil {
				cfg.Logger.Error("enqueue order-confirmed failed", zap.Error(err))
				respondFail(c, http.StatusInternalServerError, "Failed to queue order")
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"success": true, "data": "queued"})
			return
		}

		if _, err := cfg.Completion.HandleOrderConfirmed(ctx, req.OrderID); err != nil {
			cfg.Logger.Error("completion failed", zap.Error(err))
			respondFail(c, http.StatusInternalServerError, "Failed to process order")
			return
		}
		respondOK(c, "processed")
	}
}

func listRecordsHandler(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := cfg.Records.List(c.Request.Context(), 50)
		if err != nil {
			cfg.Logger.Error("record list failed", zap.Error(err))
			respondFail(c, http.StatusInternalServerError, "Failed to list records")
			return
		}
		respondOK(c, records)
	}
}

func getRecordHandler(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := cfg.Records.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			cfg.Logger.Error("record fetch failed", zap.Error(err))
			respondFail(c, http.StatusInternalServerError, "Failed to load record")
			return
		}
		if rec == nil {
			respondFail(c, http.StatusNotFound, "Record not found")
			return
		}
		respondOK(c, rec)
	}
}
