package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a customer of the medical-supply business. ID is assigned by the
// repository on creation and is empty before the record is persisted.
type Client struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ClientUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

type Product struct {
	ID          string          `json:"id,omitempty"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type ProductUpdateRequest struct {
	Code        *string          `json:"code,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
}

// SaleItem is one line of a sale. PricePerUnit is copied from the product at
// the moment the line was added so historical invoices keep their amounts
// when product prices change later.
type SaleItem struct {
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

type Sale struct {
	ID            string          `json:"id,omitempty"`
	Date          time.Time       `json:"date"`
	ClientID      string          `json:"client_id"`
	Items         []SaleItem      `json:"products"`
	Total         decimal.Decimal `json:"total"`
	InvoiceNumber string          `json:"invoice_number"`
}

type SaleCreateRequest struct {
	ClientID string          `json:"client_id"`
	Items    []SaleItem      `json:"products"`
	Total    decimal.Decimal `json:"total"`
}

// SaleRecord is a sale joined with its client's display name for listings.
// ClientName falls back to "Unknown Client" when the client was deleted;
// sales are never cascaded away with their client.
type SaleRecord struct {
	Sale
	ClientName string `json:"client_name"`
}

// CompanySettings is a singleton document stored under the fixed key
// "company". It is created lazily with defaults on first read.
type CompanySettings struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	LogoURL string `json:"logo_url"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Email string
}

type DashboardMetrics struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	LowStockProducts int             `json:"low_stock_products"`
	RecentSales      int             `json:"recent_sales"`
	ActiveClients    int             `json:"active_clients"`
	ClientCount      int             `json:"client_count"`
	ProductCount     int             `json:"product_count"`
	SaleCount        int             `json:"sale_count"`
}

// UnknownClientName is the display fallback for sales whose client record no
// longer exists.
const UnknownClientName = "Unknown Client"

// SettingsKey is the fixed document key of the CompanySettings singleton.
const SettingsKey = "company"

func DefaultCompanySettings() CompanySettings {
	return CompanySettings{
		Name:    "CMJ Med Service",
		Address: "123 Medical Center Drive",
		Phone:   "(555) 123-4567",
		Email:   "info@cmjmedservice.com",
		LogoURL: "/logo.png",
	}
}
