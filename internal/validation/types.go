package validation

// CaptureAction is the fixed action discriminator the collector posts.
const CaptureAction = "capture_checkout_data"

// CaptureForm is the form-encoded payload for POST /checkout/capture.
// Products carries the cart snapshot as a JSON array so the collector can
// forward the pre-serialized snapshot untouched.
type CaptureForm struct {
	Action   string `form:"action" validate:"required,eq=capture_checkout_data"`
	Security string `form:"security" validate:"required"` // anti-forgery token
	Name     string `form:"name" validate:"required"`
	Phone    string `form:"phone" validate:"required,phonedigits"`
	Address  string `form:"address" validate:"required"`
	Products string `form:"products"` // JSON: [{name, qty, price, url}]
}

// OrderConfirmedRequest is the JSON payload for POST /hooks/order-confirmed.
type OrderConfirmedRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}
