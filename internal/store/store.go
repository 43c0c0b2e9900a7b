package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"jokersolar/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrCategoryInUse     = errors.New("category in use")
)

type Repository interface {
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	CreateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	UpdateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	// AdjustStock shifts the item's authoritative stock measure by delta
	// (unit count for standard items, meters for length items) and fails
	// with ErrInsufficientStock if the result would go negative.
	AdjustStock(ctx context.Context, id string, delta decimal.Decimal) (*domain.InventoryItem, error)
	CountItemsInCategory(ctx context.Context, category string) (int, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// CreateSale persists the sale with its line snapshots and decrements
	// each line's stock measure as a single unit of work.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	// CreateCreditSale does the same for a credit sale, optionally
	// recording the initial payment in the same unit of work.
	CreateCreditSale(ctx context.Context, sale domain.CreditSale, initial *domain.CreditPayment) (*domain.CreditSale, error)
	FindSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	FindSaleByIdempotency(ctx context.Context, key string) (*domain.Sale, error)
	ListSales(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error)

	ListCreditSales(ctx context.Context) ([]domain.CreditSale, error)
	GetCreditSale(ctx context.Context, id string) (*domain.CreditSale, error)
	// RecordCreditPayment appends the payment and returns the credit sale
	// with AmountPaid, RemainingAmount and Status updated.
	RecordCreditPayment(ctx context.Context, payment domain.CreditPayment) (*domain.CreditSale, error)
	ListCreditPayments(ctx context.Context, creditSaleID string) ([]domain.CreditPayment, error)

	TopSellingItems(ctx context.Context, limit int) ([]domain.TopSellingItem, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, email string, passwordHash string) error
}
