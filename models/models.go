package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toyWholesale/pricing"

	"github.com/shopspring/decimal"
)

var ErrBadRequest = errors.New("bad request")
var ErrUnauthorized = errors.New("unauthorized")
var ErrForbidden = errors.New("forbidden")
var ErrServerError = errors.New("server error")
var ErrNotFoundError = errors.New("not found")
var ErrConflict = errors.New("conflict")
var ErrTooManyRequests = errors.New("too many requests")

var (
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrEmailTaken          = fmt.Errorf("%w: email is already registered", ErrBadRequest)
	ErrEmptyCart           = fmt.Errorf("%w: cart is empty", ErrBadRequest)
	ErrQuantityTooSmall    = fmt.Errorf("%w: %w", ErrBadRequest, pricing.ErrBelowMinimum)
	ErrQuantityTooLarge    = fmt.Errorf("%w: %w", ErrBadRequest, pricing.ErrAboveMaximum)
	ErrTotalMismatch       = fmt.Errorf("%w: order total does not match current prices", ErrBadRequest)
	ErrProductUnavailable  = fmt.Errorf("%w: product is not available", ErrBadRequest)
	ErrEmptyMessage        = fmt.Errorf("%w: message content is empty", ErrBadRequest)
	ErrInvalidStatus       = fmt.Errorf("%w: unknown order status", ErrBadRequest)
	ErrInvalidDeliveryDate = fmt.Errorf("%w: delivery date must be YYYY-MM-DD", ErrBadRequest)
	ErrInvalidTransition   = fmt.Errorf("%w: order status cannot move there", ErrConflict)
)

type User_db struct {
	Id           int
	Email        string
	PasswordHash string
	CompanyName  string
	UNP          string
	DirectorName string
	Phone        string
	Address      string
	LogoURL      sql.NullString
	IsAdmin      bool
	CreatedAt    time.Time
}

// SessionUser is the authenticated caller resolved from a session.
type SessionUser struct {
	SessionId string
	UserId    int
	IsAdmin   bool
}

type Product_db struct {
	Id          int
	Name        string
	Description string
	Category    string
	AgeGroup    string
	Material    string
	Country     string
	Tiers       pricing.Tiers
	InStock     bool
	ImageURL    sql.NullString
	CreatedAt   time.Time
}

type Order_db struct {
	Id              int
	UserId          int
	Items           []OrderItem
	Total           decimal.Decimal
	DeliveryAddress string
	Status          OrderStatus
	DeliveryDate    sql.NullString
	CreatedAt       time.Time
}

type Chat_db struct {
	Id        int
	OrderId   int
	UserId    int
	CreatedAt time.Time
}

type Message_db struct {
	Id        int
	ChatId    int
	SenderId  int
	Content   string
	CreatedAt time.Time
}

// QuantityError maps a line quantity outside the allowed range onto its
// request error, or returns nil.
func QuantityError(quantity int) error {
	switch pricing.ValidateQuantity(quantity) {
	case nil:
		return nil
	case pricing.ErrAboveMaximum:
		return ErrQuantityTooLarge
	default:
		return ErrQuantityTooSmall
	}
}

type ProductFilter struct {
	Categories    []string
	AgeGroups     []string
	Materials     []string
	Countries     []string
	Search        string
	PriceRange    string
	IncludeHidden bool
}

// priceRanges maps a price bucket name to its bounds on the 5-unit price.
// A zero bound means unbounded.
var priceRanges = map[string][2]int{
	"lt10":   {0, 10},
	"10-25":  {10, 25},
	"25-50":  {25, 50},
	"50-100": {50, 100},
	"gt100":  {100, 0},
}

// PriceRangeNames lists the buckets from cheapest to most expensive.
func PriceRangeNames() []string {
	return []string{"lt10", "10-25", "25-50", "50-100", "gt100"}
}

func PriceRangeBounds(name string) (min, max int, ok bool) {
	b, ok := priceRanges[name]
	return b[0], b[1], ok
}

type OrderSearchData struct {
	UserId *int
	Status *OrderStatus
}

type StatusUpdate struct {
	Status       OrderStatus
	DeliveryDate string
}
