package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MeasureStandard = "standard"
	MeasureLength   = "length"
)

const (
	PaymentModeFull   = "full"
	PaymentModeCredit = "credit"
)

const (
	CreditStatusPending       = "pending"
	CreditStatusPartiallyPaid = "partially_paid"
	CreditStatusPaid          = "paid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// InventoryItem carries both stock measures; MeasureType selects which one is
// authoritative. Standard items track Quantity, length items track Length in
// meters.
type InventoryItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	Cost        decimal.Decimal `json:"cost"`
	Quantity    int             `json:"quantity"`
	Length      decimal.Decimal `json:"length"`
	MeasureType string          `json:"measure_type"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockMeasure returns the authoritative stock figure as a decimal so both
// measure types can be compared against cart quantities uniformly.
func (i InventoryItem) StockMeasure() decimal.Decimal {
	if i.MeasureType == MeasureLength {
		return i.Length
	}
	return decimal.NewFromInt(int64(i.Quantity))
}

type ItemCreateRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	Cost        decimal.Decimal `json:"cost"`
	Quantity    int             `json:"quantity"`
	Length      decimal.Decimal `json:"length"`
	MeasureType string          `json:"measure_type"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
}

type ItemUpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
	Model       *string          `json:"model,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Length      *decimal.Decimal `json:"length,omitempty"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

type StockAdjustRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// CartLine is one entry in a session cart. Quantity is a unit count for
// standard items and a length in meters for length items.
type CartLine struct {
	LineID        string          `json:"line_id"`
	ItemID        string          `json:"item_id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	MeasureType   string          `json:"measure_type"`
	SelectedPrice decimal.Decimal `json:"selected_price"`
	Quantity      decimal.Decimal `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.SelectedPrice.Mul(l.Quantity)
}

type CartView struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type CartAddRequest struct {
	ItemID        string          `json:"item_id"`
	SelectedPrice decimal.Decimal `json:"selected_price"`
}

type CartAddLengthRequest struct {
	ItemID        string          `json:"item_id"`
	SelectedPrice decimal.Decimal `json:"selected_price"`
	Length        decimal.Decimal `json:"length"`
}

type CartQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// SaleLine is an immutable snapshot of a cart line at checkout time.
type SaleLine struct {
	ItemID        string          `json:"item_id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	MeasureType   string          `json:"measure_type"`
	SelectedPrice decimal.Decimal `json:"selected_price"`
	Quantity      decimal.Decimal `json:"quantity"`
}

func (l SaleLine) Subtotal() decimal.Decimal {
	return l.SelectedPrice.Mul(l.Quantity)
}

type Sale struct {
	ID             string          `json:"id"`
	ReceiptNumber  string          `json:"receipt_number"`
	CustomerName   string          `json:"customer_name"`
	SoldBy         string          `json:"sold_by"`
	SoldAt         time.Time       `json:"sold_at"`
	Total          decimal.Decimal `json:"total"`
	Items          []SaleLine      `json:"items"`
	IdempotencyKey string          `json:"-"`
}

// CreditSale extends a sale with payment terms. Status is always derived from
// AmountPaid vs Total, never stored independently.
type CreditSale struct {
	Sale
	CustomerPhone   string          `json:"customer_phone"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         time.Time       `json:"due_date"`
	Status          string          `json:"status"`
	Overdue         bool            `json:"overdue"`
}

// DeriveStatus recomputes RemainingAmount and Status from AmountPaid.
func (c *CreditSale) DeriveStatus() {
	c.RemainingAmount = c.Total.Sub(c.AmountPaid)
	if c.RemainingAmount.IsNegative() {
		c.RemainingAmount = decimal.Zero
	}
	switch {
	case c.AmountPaid.GreaterThanOrEqual(c.Total):
		c.Status = CreditStatusPaid
	case c.AmountPaid.IsPositive():
		c.Status = CreditStatusPartiallyPaid
	default:
		c.Status = CreditStatusPending
	}
}

// MarkOverdue stamps the overdue flag as of now. A balance is overdue once
// the due date has fully passed without being settled.
func (c *CreditSale) MarkOverdue(now time.Time) {
	c.Overdue = c.Status != CreditStatusPaid && now.After(c.DueDate.AddDate(0, 0, 1))
}

type CreditPayment struct {
	ID           string          `json:"id"`
	CreditSaleID string          `json:"credit_sale_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	RecordedBy   string          `json:"recorded_by"`
	Notes        string          `json:"notes,omitempty"`
	RecordedAt   time.Time       `json:"recorded_at"`
}

type CreditPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes"`
}

type CheckoutRequest struct {
	CustomerName   string          `json:"customer_name"`
	PaymentMode    string          `json:"payment_mode"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	DueDate        string          `json:"due_date,omitempty"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

type CheckoutResponse struct {
	Sale      Sale        `json:"sale"`
	Credit    *CreditSale `json:"credit,omitempty"`
	Duplicate bool        `json:"duplicate"`
}

type ReceiptResponse struct {
	ReceiptNumber string `json:"receipt_number"`
	PreviewText   string `json:"preview_text"`
	FileName      string `json:"file_name"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	User
	PasswordHash string
}

type UserCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Email string
	Name  string
	Role  string
}

type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SaleCount    int             `json:"sale_count"`
	AverageSale  decimal.Decimal `json:"average_sale"`
}

type SalesReport struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Summary SalesSummary `json:"summary"`
	Sales   []Sale       `json:"sales"`
}

type TopSellingItem struct {
	ItemID       string          `json:"item_id"`
	Name         string          `json:"name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	SaleCount    int             `json:"sale_count"`
}

type DashboardStats struct {
	ItemCount         int             `json:"item_count"`
	LowStockCount     int             `json:"low_stock_count"`
	InventoryValue    decimal.Decimal `json:"inventory_value"`
	CreditOutstanding decimal.Decimal `json:"credit_outstanding"`
	TodayRevenue      decimal.Decimal `json:"today_revenue"`
	TodaySaleCount    int             `json:"today_sale_count"`
}
