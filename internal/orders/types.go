package orders

import "time"

// Order statuses used by the host commerce platform.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusOnHold     = "on-hold"
	StatusCompleted  = "completed"
)

// PlacedStatuses are the states meaning the shopper finished checkout; a
// capture attempt matching such an order is suppressed.
var PlacedStatuses = []string{StatusCompleted, StatusProcessing, StatusOnHold}

// OrderItem is one purchased line as stored on the order.
type OrderItem struct {
	Name  string `dynamodbav:"name" json:"name"`
	Qty   int    `dynamodbav:"qty" json:"qty"`
	Price string `dynamodbav:"price" json:"price"`
	URL   string `dynamodbav:"url" json:"url"`
}

// Order is the slice of the commerce order model this service reads and
// annotates. BillingPhone is stored digits-only so the billing_phone index
// matches normalized lookups.
type Order struct {
	OrderID        string      `dynamodbav:"order_id" json:"order_id"` // PK
	BillingName    string      `dynamodbav:"billing_name" json:"billing_name"`
	BillingPhone   string      `dynamodbav:"billing_phone" json:"billing_phone"` // digits only, GSI
	BillingAddress string      `dynamodbav:"billing_address" json:"billing_address"`
	Status         string      `dynamodbav:"status" json:"status"`
	Items          []OrderItem `dynamodbav:"items,omitempty" json:"items,omitempty"`
	Notes          []string    `dynamodbav:"notes,omitempty" json:"notes,omitempty"`
	CustomerIP     string      `dynamodbav:"customer_ip,omitempty" json:"customer_ip,omitempty"`
	CreatedAt      time.Time   `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `dynamodbav:"updated_at" json:"updated_at"`
}
