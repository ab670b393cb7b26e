package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"medsupply/backend/internal/blob"
	"medsupply/backend/internal/cache"
	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/invnum"
	"medsupply/backend/internal/invoice"
	"medsupply/backend/internal/store"
)

// ErrSaleFailed is the single user-facing failure for the sale workflow.
// Callers cannot distinguish a stock-update failure from a sale-insert
// failure; the underlying cause is only logged.
var ErrSaleFailed = errors.New("failed to create sale")

const lowStockThreshold = 10

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo        store.Repository
	settings    cache.SettingsCache
	blobs       blob.Storage
	settingsTTL time.Duration
	now         func() time.Time
}

func New(repo store.Repository, settings cache.SettingsCache, blobs blob.Storage, settingsTTL time.Duration) *Service {
	if settingsTTL <= 0 {
		settingsTTL = 5 * time.Minute
	}
	return &Service{
		repo:        repo,
		settings:    settings,
		blobs:       blobs,
		settingsTTL: settingsTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *Service) SearchClients(ctx context.Context, term string) ([]domain.Client, error) {
	return s.repo.SearchClientsByName(ctx, strings.TrimSpace(term))
}

func (s *Service) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return nil, store.ErrInvalidInput
	}
	return s.repo.CreateClient(ctx, client)
}

func (s *Service) UpdateClient(ctx context.Context, id string, patch domain.ClientUpdateRequest) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return store.ErrInvalidInput
	}
	return s.repo.UpdateClient(ctx, id, patch)
}

// DeleteClient removes the client record only. Sales referencing it are
// kept and list with the unknown-client fallback.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	return s.repo.DeleteClient(ctx, id)
}

// ClientSales is the purchase history shown on the client detail view.
func (s *Service) ClientSales(ctx context.Context, clientID string) ([]domain.Sale, error) {
	return s.repo.ListSalesByClient(ctx, clientID)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) SearchProducts(ctx context.Context, term string) ([]domain.Product, error) {
	return s.repo.SearchProductsByName(ctx, strings.TrimSpace(term))
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Code = strings.TrimSpace(product.Code)
	product.Name = strings.TrimSpace(product.Name)
	if product.Code == "" || product.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if product.Price.IsNegative() || product.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductUpdateRequest) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return store.ErrInvalidInput
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return store.ErrInvalidInput
	}
	return s.repo.UpdateProduct(ctx, id, patch)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// CreateSale runs the sale transaction workflow: decrement stock for every
// line, then persist the sale with a freshly generated invoice number, and
// return the new sale's repository ID.
//
// The steps are sequential network writes with no cross-write atomicity.
// Two concurrent sales of the same product can interleave their
// read-then-write stock updates and silently lose a decrement, and a
// failure partway leaves earlier decrements in place with no rollback.
// Both behaviors are deliberate; see DESIGN.md before "fixing" them.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (string, error) {
	if req.ClientID == "" || len(req.Items) == 0 {
		return "", store.ErrInvalidInput
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return "", store.ErrInvalidInput
		}
	}

	for _, item := range req.Items {
		product, err := s.repo.GetProduct(ctx, item.ProductID)
		if err != nil {
			log.Printf("[service] sale aborted: read stock for product %s: %v", item.ProductID, err)
			return "", ErrSaleFailed
		}
		quantity := product.Quantity - item.Quantity
		patch := domain.ProductUpdateRequest{Quantity: &quantity}
		if err := s.repo.UpdateProduct(ctx, product.ID, patch); err != nil {
			log.Printf("[service] sale aborted: write stock for product %s: %v", product.ID, err)
			return "", ErrSaleFailed
		}
	}

	now := s.now()
	sale := domain.Sale{
		Date:          now,
		ClientID:      req.ClientID,
		Items:         req.Items,
		Total:         req.Total,
		InvoiceNumber: invnum.New(now),
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		log.Printf("[service] sale aborted: insert sale: %v", err)
		return "", ErrSaleFailed
	}

	if actor, ok := ActorFromContext(ctx); ok {
		log.Printf("[service] sale %s (%s) created by %s", created.ID, created.InvoiceNumber, actor.Email)
	}
	return created.ID, nil
}

// ListSales joins each sale with its client's display name so listings
// survive client deletion.
func (s *Service) ListSales(ctx context.Context) ([]domain.SaleRecord, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	nameByID := make(map[string]string, len(clients))
	for _, c := range clients {
		nameByID[c.ID] = c.Name
	}

	records := make([]domain.SaleRecord, 0, len(sales))
	for _, sale := range sales {
		name, ok := nameByID[sale.ClientID]
		if !ok {
			name = domain.UnknownClientName
		}
		records = append(records, domain.SaleRecord{Sale: sale, ClientName: name})
	}
	return records, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// GetSettings returns the company-settings singleton, creating it with
// defaults on first read.
func (s *Service) GetSettings(ctx context.Context) (*domain.CompanySettings, error) {
	if cached, hit, err := s.settings.Get(ctx); err == nil && hit {
		return cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: settings cache read: %v", err)
	}

	settings, err := s.repo.GetSettings(ctx)
	if errors.Is(err, store.ErrNotFound) {
		defaults := domain.DefaultCompanySettings()
		if err := s.repo.PutSettings(ctx, defaults); err != nil {
			return nil, err
		}
		settings = &defaults
	} else if err != nil {
		return nil, err
	}

	if err := s.settings.Set(ctx, settings, s.settingsTTL); err != nil {
		log.Printf("[service] WARN: settings cache write: %v", err)
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, settings domain.CompanySettings) error {
	if strings.TrimSpace(settings.Name) == "" {
		return store.ErrInvalidInput
	}
	if err := s.repo.PutSettings(ctx, settings); err != nil {
		return err
	}
	if err := s.settings.Invalidate(ctx); err != nil {
		log.Printf("[service] WARN: settings cache invalidate: %v", err)
	}
	return nil
}

// UploadLogo stores the logo in blob storage and returns its durable URL.
// The caller is expected to follow up with UpdateSettings to record it.
func (s *Service) UploadLogo(ctx context.Context, r io.Reader) (string, error) {
	name := fmt.Sprintf("company/logo-%d", s.now().UnixMilli())
	url, err := s.blobs.Put(ctx, name, r)
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	return url, nil
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return domain.DashboardMetrics{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.DashboardMetrics{}, err
	}
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.DashboardMetrics{}, err
	}

	metrics := domain.DashboardMetrics{
		TotalRevenue: decimal.Zero,
		ClientCount:  len(clients),
		ProductCount: len(products),
		SaleCount:    len(sales),
	}

	for _, p := range products {
		if p.Quantity < lowStockThreshold {
			metrics.LowStockProducts++
		}
	}

	now := s.now()
	thirtyDaysAgo := now.AddDate(0, 0, -30)
	ninetyDaysAgo := now.AddDate(0, 0, -90)
	activeClients := make(map[string]struct{})
	for _, sale := range sales {
		metrics.TotalRevenue = metrics.TotalRevenue.Add(sale.Total)
		if !sale.Date.Before(thirtyDaysAgo) {
			metrics.RecentSales++
		}
		if !sale.Date.Before(ninetyDaysAgo) {
			activeClients[sale.ClientID] = struct{}{}
		}
	}
	metrics.ActiveClients = len(activeClients)

	return metrics, nil
}

// InvoicePDF renders the invoice document for a persisted sale and returns
// the PDF bytes together with the download filename.
func (s *Service) InvoicePDF(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return nil, "", err
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, "", err
	}

	data := invoice.Data{
		InvoiceNumber: sale.InvoiceNumber,
		Date:          sale.Date,
		Company:       *settings,
		Logo:          s.loadLogo(ctx, settings.LogoURL),
		Total:         sale.Total,
	}

	client, err := s.repo.GetClient(ctx, sale.ClientID)
	switch {
	case err == nil:
		data.ClientName = client.Name
		data.ClientAddress = client.Address
		data.ClientPhone = client.Phone
		data.ClientEmail = client.Email
	case errors.Is(err, store.ErrNotFound):
		data.ClientName = domain.UnknownClientName
	default:
		return nil, "", err
	}

	for _, item := range sale.Items {
		line := invoice.Line{
			Quantity:  item.Quantity,
			UnitPrice: item.PricePerUnit,
			Amount:    item.PricePerUnit.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if product, err := s.repo.GetProduct(ctx, item.ProductID); err == nil {
			line.Description = product.Name
		} else {
			line.Description = "Unknown Product"
		}
		data.Lines = append(data.Lines, line)
	}

	pdf, err := invoice.PDF(data)
	if err != nil {
		return nil, "", err
	}
	return pdf, invoice.Filename(sale.InvoiceNumber), nil
}

// loadLogo resolves the configured logo URL against blob storage. A URL
// that does not resolve, or bytes that do not decode, just means the
// invoice renders without a logo.
func (s *Service) loadLogo(ctx context.Context, url string) image.Image {
	if url == "" {
		return nil
	}
	rc, err := s.blobs.Open(ctx, url)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			log.Printf("[service] WARN: open logo %s: %v", url, err)
		}
		return nil
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		log.Printf("[service] WARN: decode logo %s: %v", url, err)
		return nil
	}
	return img
}
