package httpapi

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the checkout payload submitted by the storefront.
// The totals block is a display hint; the server always recomputes.
type PlaceOrderRequest struct {
	Customer   CustomerDTO     `json:"customer"`
	Payment    PaymentDTO      `json:"payment"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Items      []OrderItemDTO  `json:"items"`
	Totals     *OrderTotalsDTO `json:"totals,omitempty"`
}

type CustomerDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type PaymentDTO struct {
	Method string `json:"method"`
	TrxID  string `json:"trx_id,omitempty"`
}

type OrderItemDTO struct {
	ProductID int64  `json:"product_id"`
	Duration  string `json:"duration"`
	Quantity  int    `json:"quantity"`
}

// OrderTotalsDTO carries money amounts as fixed-point decimal strings.
type OrderTotalsDTO struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type OrderResponse struct {
	OrderNumber     string                 `json:"order_number"`
	Status          string                 `json:"status"`
	Customer        CustomerDTO            `json:"customer"`
	Payment         PaymentDTO             `json:"payment"`
	CouponCode      string                 `json:"coupon_code,omitempty"`
	Totals          OrderTotalsDTO         `json:"totals"`
	Items           []OrderItemResponseDTO `json:"items"`
	AccessEmailSent bool                   `json:"access_email_sent"`
	CreatedAt       time.Time              `json:"created_at"`
}

type OrderItemResponseDTO struct {
	ProductID   int64          `json:"product_id"`
	ProductName string         `json:"product_name"`
	Quantity    int            `json:"quantity"`
	Pricing     ItemPricingDTO `json:"pricing"`
}

// ItemPricingDTO is the purchased (duration, price) snapshot of a line.
type ItemPricingDTO struct {
	Duration string          `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SendAccessEmailRequest struct {
	AccessDetails string `json:"access_details"`
}

type ProductResponse struct {
	ID              int64            `json:"id"`
	Category        string           `json:"category"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	LongDescription string           `json:"long_description,omitempty"`
	Image           string           `json:"image,omitempty"`
	StockOut        bool             `json:"stock_out"`
	Featured        bool             `json:"featured"`
	Pricing         []ItemPricingDTO `json:"pricing"`
}

type AddReviewRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type ReviewResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SettingsResponse struct {
	Version         int64           `json:"version"`
	USDToBDTRate    decimal.Decimal `json:"usd_to_bdt_rate"`
	ContactPhone    string          `json:"contact_phone"`
	ContactWhatsapp string          `json:"contact_whatsapp"`
	ContactEmail    string          `json:"contact_email"`
}

// UpdateSettingsRequest carries the full settings record plus the version
// the admin last read. A stale version is rejected with 409.
type UpdateSettingsRequest struct {
	Version         int64           `json:"version"`
	USDToBDTRate    decimal.Decimal `json:"usd_to_bdt_rate"`
	ContactPhone    string          `json:"contact_phone"`
	ContactWhatsapp string          `json:"contact_whatsapp"`
	ContactEmail    string          `json:"contact_email"`
}
