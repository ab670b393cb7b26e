package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"medsupply/backend/internal/blob"
	"medsupply/backend/internal/cache"
	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/store"
	"medsupply/backend/internal/store/memory"
)

var testClock = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo store.Repository) *Service {
	svc := New(repo, cache.NoopSettingsCache{}, blob.NewMemory("/files"), time.Minute)
	svc.now = func() time.Time { return testClock }
	return svc
}

func seedClientAndProduct(t *testing.T, repo store.Repository) (domain.Client, domain.Product) {
	t.Helper()
	ctx := context.Background()

	client, err := repo.CreateClient(ctx, domain.Client{Name: "Riverside Clinic"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	product, err := repo.CreateProduct(ctx, domain.Product{
		Code:     "MS-GAUZE-01",
		Name:     "Sterile Gauze Pads 4x4",
		Price:    decimal.NewFromFloat(12.50),
		Quantity: 50,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return *client, *product
}

func saleRequest(client domain.Client, product domain.Product, qty int) domain.SaleCreateRequest {
	price := product.Price
	return domain.SaleCreateRequest{
		ClientID: client.ID,
		Items:    []domain.SaleItem{{ProductID: product.ID, Quantity: qty, PricePerUnit: price}},
		Total:    price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	id, err := svc.CreateSale(ctx, saleRequest(client, product, 5))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if id == "" {
		t.Fatalf("expected sale ID")
	}

	got, err := repo.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Quantity != 45 {
		t.Fatalf("stock = %d, want 45", got.Quantity)
	}

	sale, err := repo.GetSale(ctx, id)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if !regexp.MustCompile(`^INV-20260210-\d{3}$`).MatchString(sale.InvoiceNumber) {
		t.Fatalf("invoice number %q has wrong shape", sale.InvoiceNumber)
	}
	if !sale.Total.Equal(decimal.NewFromFloat(62.50)) {
		t.Fatalf("total = %s, want 62.50", sale.Total)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	cases := []domain.SaleCreateRequest{
		{},
		{ClientID: client.ID},
		{ClientID: client.ID, Items: []domain.SaleItem{{ProductID: product.ID, Quantity: 0}}},
		{ClientID: client.ID, Items: []domain.SaleItem{{Quantity: 3}}},
	}
	for i, req := range cases {
		if _, err := svc.CreateSale(ctx, req); !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestCreateSaleUnknownProductFailsGenerically(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	client, _ := seedClientAndProduct(t, repo)

	req := domain.SaleCreateRequest{
		ClientID: client.ID,
		Items:    []domain.SaleItem{{ProductID: "missing", Quantity: 1}},
	}
	_, err := svc.CreateSale(context.Background(), req)
	if !errors.Is(err, ErrSaleFailed) {
		t.Fatalf("expected ErrSaleFailed, got %v", err)
	}
	if err.Error() != "failed to create sale" {
		t.Fatalf("error must stay generic, got %q", err.Error())
	}
}

// saleInsertFailer lets the stock writes through and then rejects the sale
// insert, simulating a backend failure between workflow steps.
type saleInsertFailer struct {
	store.Repository
}

func (f saleInsertFailer) CreateSale(context.Context, domain.Sale) (*domain.Sale, error) {
	return nil, errors.New("backend write rejected")
}

func TestCreateSalePartialFailureKeepsDecrements(t *testing.T) {
	repo := memory.New()
	svc := newTestService(saleInsertFailer{repo})
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	_, err := svc.CreateSale(ctx, saleRequest(client, product, 5))
	if !errors.Is(err, ErrSaleFailed) {
		t.Fatalf("expected ErrSaleFailed, got %v", err)
	}

	// No rollback: the decrement from the failed workflow stays applied.
	got, err := repo.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Quantity != 45 {
		t.Fatalf("stock = %d, want 45 (decrement kept after failure)", got.Quantity)
	}

	sales, err := repo.ListSales(ctx)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("no sale should have been persisted, got %d", len(sales))
	}
}

func TestSaleKeepsPriceSnapshot(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	id, err := svc.CreateSale(ctx, saleRequest(client, product, 2))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	newPrice := decimal.NewFromInt(99)
	if err := svc.UpdateProduct(ctx, product.ID, domain.ProductUpdateRequest{Price: &newPrice}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	sale, err := svc.GetSale(ctx, id)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if !sale.Items[0].PricePerUnit.Equal(decimal.NewFromFloat(12.50)) {
		t.Fatalf("price snapshot changed: %s", sale.Items[0].PricePerUnit)
	}
	if !sale.Total.Equal(decimal.NewFromFloat(25.00)) {
		t.Fatalf("historical total changed: %s", sale.Total)
	}
}

func TestListSalesFallsBackToUnknownClient(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	if _, err := svc.CreateSale(ctx, saleRequest(client, product, 1)); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	records, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(records) != 1 || records[0].ClientName != "Riverside Clinic" {
		t.Fatalf("expected joined client name, got %+v", records)
	}

	if err := svc.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	records, err = svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("ListSales after delete: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("sale must survive client deletion, got %d records", len(records))
	}
	if records[0].ClientName != domain.UnknownClientName {
		t.Fatalf("client name = %q, want %q", records[0].ClientName, domain.UnknownClientName)
	}
}

func TestGetSettingsCreatesDefaults(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.Name != "CMJ Med Service" {
		t.Fatalf("default name = %q", settings.Name)
	}

	// Defaults are persisted, not just returned.
	stored, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("defaults were not written through: %v", err)
	}
	if *stored != domain.DefaultCompanySettings() {
		t.Fatalf("stored settings = %+v", stored)
	}
}

type recordingCache struct {
	stored      *domain.CompanySettings
	sets        int
	invalidates int
}

func (c *recordingCache) Get(context.Context) (*domain.CompanySettings, bool, error) {
	if c.stored == nil {
		return nil, false, nil
	}
	copied := *c.stored
	return &copied, true, nil
}

func (c *recordingCache) Set(_ context.Context, settings *domain.CompanySettings, _ time.Duration) error {
	copied := *settings
	c.stored = &copied
	c.sets++
	return nil
}

func (c *recordingCache) Invalidate(context.Context) error {
	c.stored = nil
	c.invalidates++
	return nil
}

func TestSettingsCacheHitAndInvalidate(t *testing.T) {
	repo := memory.New()
	cached := &recordingCache{}
	svc := New(repo, cached, blob.NewMemory("/files"), time.Minute)
	ctx := context.Background()

	if _, err := svc.GetSettings(ctx); err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if cached.sets != 1 {
		t.Fatalf("expected settings to be cached, sets = %d", cached.sets)
	}

	// Change the repository behind the cache's back; the cached copy wins
	// until invalidation.
	changed := domain.DefaultCompanySettings()
	changed.Name = "Behind The Cache"
	if err := repo.PutSettings(ctx, changed); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}
	settings, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.Name != "CMJ Med Service" {
		t.Fatalf("expected cached value, got %q", settings.Name)
	}

	update := domain.DefaultCompanySettings()
	update.Name = "Updated Name"
	if err := svc.UpdateSettings(ctx, update); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if cached.invalidates != 1 {
		t.Fatalf("update must invalidate the cache, invalidates = %d", cached.invalidates)
	}

	settings, err = svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings after update: %v", err)
	}
	if settings.Name != "Updated Name" {
		t.Fatalf("post-invalidation read = %q", settings.Name)
	}
}

func TestUploadLogoNaming(t *testing.T) {
	repo := memory.New()
	blobs := blob.NewMemory("/files")
	svc := New(repo, cache.NoopSettingsCache{}, blobs, time.Minute)
	svc.now = func() time.Time { return testClock }

	url, err := svc.UploadLogo(context.Background(), strings.NewReader("png"))
	if err != nil {
		t.Fatalf("UploadLogo: %v", err)
	}

	want := "/files/company/logo-1770724800000"
	if url != want {
		t.Fatalf("logo url = %q, want %q", url, want)
	}
	if _, ok := blobs.Get("company/logo-1770724800000"); !ok {
		t.Fatalf("logo bytes were not stored")
	}
}

func TestInvoiceLogoLoading(t *testing.T) {
	repo := memory.New()
	blobs := blob.NewMemory("/files")
	svc := New(repo, cache.NoopSettingsCache{}, blobs, time.Minute)
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode logo: %v", err)
	}
	url, err := svc.UploadLogo(ctx, &buf)
	if err != nil {
		t.Fatalf("UploadLogo: %v", err)
	}

	if img := svc.loadLogo(ctx, url); img == nil {
		t.Fatalf("uploaded logo did not load")
	}
	// The default "/logo.png" resolves nowhere; invoices render without it.
	if img := svc.loadLogo(ctx, "/logo.png"); img != nil {
		t.Fatalf("unresolvable logo URL should load nothing")
	}

	settings := domain.DefaultCompanySettings()
	settings.LogoURL = url
	if err := svc.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	id, err := svc.CreateSale(ctx, saleRequest(client, product, 1))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	pdf, _, err := svc.InvoicePDF(ctx, id)
	if err != nil {
		t.Fatalf("InvoicePDF with logo: %v", err)
	}
	if !strings.HasPrefix(string(pdf[:5]), "%PDF-") {
		t.Fatalf("invalid PDF output")
	}
}

func TestDashboard(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	if _, err := repo.CreateProduct(ctx, domain.Product{Code: "MS-THERM-01", Name: "Digital Thermometer", Price: decimal.NewFromInt(9), Quantity: 3}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	oldClient, err := repo.CreateClient(ctx, domain.Client{Name: "Dormant Practice"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	mkSale := func(clientID string, daysAgo int, total int64) {
		t.Helper()
		_, err := repo.CreateSale(ctx, domain.Sale{
			ClientID: clientID,
			Date:     testClock.AddDate(0, 0, -daysAgo),
			Items:    []domain.SaleItem{{ProductID: product.ID, Quantity: 1}},
			Total:    decimal.NewFromInt(total),
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
	}
	mkSale(client.ID, 2, 100)
	mkSale(client.ID, 40, 50)
	mkSale(oldClient.ID, 120, 25)

	metrics, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if !metrics.TotalRevenue.Equal(decimal.NewFromInt(175)) {
		t.Fatalf("revenue = %s, want 175", metrics.TotalRevenue)
	}
	if metrics.RecentSales != 1 {
		t.Fatalf("sales in last 30 days = %d, want 1", metrics.RecentSales)
	}
	if metrics.ActiveClients != 1 {
		t.Fatalf("active clients (90d) = %d, want 1", metrics.ActiveClients)
	}
	if metrics.LowStockProducts != 1 {
		t.Fatalf("low-stock products = %d, want 1", metrics.LowStockProducts)
	}
	if metrics.ClientCount != 2 || metrics.ProductCount != 2 || metrics.SaleCount != 3 {
		t.Fatalf("counts = %d/%d/%d", metrics.ClientCount, metrics.ProductCount, metrics.SaleCount)
	}
}

func TestInvoicePDF(t *testing.T) {
	repo := memory.New()
	svc := newTestService(repo)
	ctx := context.Background()
	client, product := seedClientAndProduct(t, repo)

	id, err := svc.CreateSale(ctx, saleRequest(client, product, 4))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	pdf, filename, err := svc.InvoicePDF(ctx, id)
	if err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if len(pdf) == 0 || !strings.HasPrefix(string(pdf[:5]), "%PDF-") {
		t.Fatalf("invalid PDF output")
	}

	sale, err := svc.GetSale(ctx, id)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if filename != "invoice-"+sale.InvoiceNumber+".pdf" {
		t.Fatalf("filename = %q", filename)
	}

	// A deleted client must not break invoice rendering.
	if err := svc.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if _, _, err := svc.InvoicePDF(ctx, id); err != nil {
		t.Fatalf("InvoicePDF after client deletion: %v", err)
	}

	if _, _, err := svc.InvoicePDF(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing sale, got %v", err)
	}
}
