package store

import (
	"context"
	"errors"

	"medsupply/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Repository is the document-store boundary: four collections (clients,
// products, sales, settings) plus user accounts for the auth layer. Create
// calls assign the document ID and return the stored record; Update calls
// apply partial patches. Search* run a prefix-range query on the indexed
// name field.
type Repository interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, id string, patch domain.ClientUpdateRequest) error
	DeleteClient(ctx context.Context, id string) error
	SearchClientsByName(ctx context.Context, prefix string) ([]domain.Client, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductUpdateRequest) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProductsByName(ctx context.Context, prefix string) ([]domain.Product, error)

	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	ListSalesByClient(ctx context.Context, clientID string) ([]domain.Sale, error)

	GetSettings(ctx context.Context) (*domain.CompanySettings, error)
	PutSettings(ctx context.Context, settings domain.CompanySettings) error

	CreateUser(ctx context.Context, user domain.UserAccount) error
	GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
}
