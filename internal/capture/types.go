package capture

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Record statuses. Only published records count for dedup; there is no
// draft state, the status exists so a record can be retired without a
// hard delete from the admin side.
const (
	StatusPublished = "publish"
)

// CartItem is one line of the cart snapshot sent with every capture call.
// Price is kept as the display string the storefront rendered.
type CartItem struct {
	Name  string `json:"name" dynamodbav:"name"`
	Qty   int    `json:"qty" dynamodbav:"qty"`
	Price string `json:"price" dynamodbav:"price"`
	URL   string `json:"url" dynamodbav:"url"`
}

// Record is a captured partial checkout as stored in DynamoDB.
type Record struct {
	RecordID  string     `dynamodbav:"record_id" json:"record_id"` // PK
	Title     string     `dynamodbav:"title" json:"title"`         // shopper name
	Note      string     `dynamodbav:"note" json:"note"`
	Status    string     `dynamodbav:"status" json:"status"`
	Phone     string     `dynamodbav:"phone" json:"phone"` // digits only
	Address   string     `dynamodbav:"address" json:"address"`
	IP        string     `dynamodbav:"ip" json:"ip"`
	Products  []CartItem `dynamodbav:"products,omitempty" json:"products,omitempty"`
	DedupeKey string     `dynamodbav:"dedupe_key" json:"-"` // hash of phone+address, GSI
	CreatedAt time.Time  `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time  `dynamodbav:"updated_at" json:"updated_at"`
}

// DedupeKey hashes normalized phone + raw address into the key used both for
// the dedupe-key index and the partial-record lookup cache. md5 matches the
// key width the rest of the pipeline expects; it is not security sensitive.
func DedupeKey(phoneDigits, address string) string {
	sum := md5.Sum([]byte(phoneDigits + address))
	return hex.EncodeToString(sum[:])
}

// Cache key builders. The cache.Store implementations add the service-wide
// prefix; these namespace the three key families within it.

// LookupKey keys the existing-partial-record cache.
func LookupKey(phoneDigits, address string) string {
	return "lookup:" + DedupeKey(phoneDigits, address)
}

// OrderLookupKey keys the existing-order cache.
func OrderLookupKey(phoneDigits string) string {
	sum := md5.Sum([]byte(phoneDigits))
	return "order:" + hex.EncodeToString(sum[:])
}

// MappingKey keys the short-lived phone->record mapping the completion
// handler resolves.
func MappingKey(phoneDigits string) string {
	return "phone:" + phoneDigits
}
