package storefront

import (
	"encoding/json"
	"strings"
	"time"
)

// DashboardMetrics mirrors /api/v1/dashboard/metrics.
type DashboardMetrics struct {
	TotalSales        float64         `json:"total_sales"`
	TotalProfit       float64         `json:"total_profit"`
	TotalOrders       int             `json:"total_orders"`
	TotalAdSpend      float64         `json:"total_ad_spend"`
	ROI               float64         `json:"roi"`
	ConversionRate    float64         `json:"conversion_rate"`
	AverageOrderValue float64         `json:"average_order_value"`
	TopProducts       []TopProduct    `json:"top_products"`
	SalesByDate       []DatedAmount   `json:"sales_by_date"`
	ProfitByDate      []DatedAmount   `json:"profit_by_date"`
	AdPerformance     []AdPerformance `json:"ad_performance"`
}

// TopProduct is one row of the best sellers list. The API is loose about
// naming, so both name/title and revenue/sales are accepted.
type TopProduct struct {
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Revenue  float64 `json:"revenue"`
	Sales    float64 `json:"sales"`
	Quantity int     `json:"quantity"`
}

// Label returns the display name for the product.
func (p TopProduct) Label() string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Title
}

// Amount returns revenue, falling back to sales.
func (p TopProduct) Amount() float64 {
	if p.Revenue != 0 {
		return p.Revenue
	}
	return p.Sales
}

// DatedAmount is a point of a sales or profit series.
type DatedAmount struct {
	Date   string  `json:"date"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
}

// AdPerformance summarizes spend and return for one ad platform.
type AdPerformance struct {
	Platform    string  `json:"platform"`
	Spend       float64 `json:"spend"`
	ROAS        float64 `json:"roas"`
	Conversions int     `json:"conversions"`
}

// Order mirrors an entry of /api/v1/orders/pending.
type Order struct {
	ID                string         `json:"id"`
	OrderNumber       string         `json:"order_number"`
	CustomerName      string         `json:"customer_name"`
	CustomerEmail     string         `json:"customer_email"`
	Items             []OrderItem    `json:"items"`
	Total             float64        `json:"total"`
	Currency          string         `json:"currency"`
	ShippingAddress   map[string]any `json:"shipping_address"`
	Status            string         `json:"status"`
	FulfillmentStatus string         `json:"fulfillment_status"`
	TrackingNumber    string         `json:"tracking_number"`
	CreatedAt         string         `json:"created_at"`
}

// OrderItem is a line of an order.
type OrderItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// Fulfillable reports whether the order can still be sent to fulfillment.
func (o Order) Fulfillable() bool {
	return strings.EqualFold(strings.TrimSpace(o.FulfillmentStatus), "unfulfilled")
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (o Order) ParsedCreatedAt() time.Time {
	return parseTime(o.CreatedAt)
}

// Product mirrors a discovered product candidate.
type Product struct {
	ID           string         `json:"id,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Price        float64        `json:"price"`
	Cost         float64        `json:"cost"`
	Margin       float64        `json:"margin"`
	Profit       float64        `json:"profit"`
	Currency     string         `json:"currency,omitempty"`
	Category     string         `json:"category"`
	Images       []string       `json:"images"`
	SupplierID   string         `json:"supplier_id"`
	SupplierName string         `json:"supplier_name"`
	SupplierURL  string         `json:"supplier_url"`
	ShippingInfo map[string]any `json:"shipping_info,omitempty"`
	Status       string         `json:"status,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

// HighMargin mirrors the storefront's "High Margin" badge threshold.
func (p Product) HighMargin() bool {
	return p.Margin > 0.5
}

// Key identifies a product for action deduplication. Discovered products may
// not have an ID yet, so supplier identity is used as a fallback.
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	if p.SupplierID != "" {
		return p.SupplierID
	}
	return p.Title
}

// Campaign mirrors an entry of /api/v1/ads/campaigns.
type Campaign struct {
	ID               string         `json:"id,omitempty"`
	Name             string         `json:"name"`
	Platform         string         `json:"platform"`
	ProductID        string         `json:"product_id"`
	Budget           float64        `json:"budget"`
	DailyBudget      *float64       `json:"daily_budget,omitempty"`
	TargetAudience   map[string]any `json:"target_audience,omitempty"`
	CreativeVideoURL string         `json:"creative_video_url,omitempty"`
	CreativeCaption  string         `json:"creative_caption"`
	Status           string         `json:"status,omitempty"`
	CreatedAt        string         `json:"created_at,omitempty"`
}

// CustomerMessage mirrors an entry of /api/v1/customer/messages.
type CustomerMessage struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	OrderID       string `json:"order_id"`
	Answered      bool   `json:"answered"`
	AIResponse    string `json:"ai_response"`
	CreatedAt     string `json:"created_at"`
	RespondedAt   string `json:"responded_at"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (m CustomerMessage) ParsedCreatedAt() time.Time {
	return parseTime(m.CreatedAt)
}

// Ack is the acknowledgment returned by mutating endpoints. Only Status is
// decoded; the raw body is kept for logging.
type Ack struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"-"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
