package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_clients_name ON clients (name);

		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_products_name ON products (name);

		CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			items JSONB NOT NULL,
			total NUMERIC(12,2) NOT NULL,
			invoice_number TEXT NOT NULL,
			sale_date TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sales_client ON sales (client_id);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL,
			logo_url TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			email TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.queryClients(ctx, `
		SELECT id, name, phone, email, address
		FROM clients
		ORDER BY name
	`)
}

func (s *Store) SearchClientsByName(ctx context.Context, prefix string) ([]domain.Client, error) {
	if prefix == "" {
		return s.ListClients(ctx)
	}
	return s.queryClients(ctx, `
		SELECT id, name, phone, email, address
		FROM clients
		WHERE name LIKE $1 || '%'
		ORDER BY name
	`, escapeLike(prefix))
}

func (s *Store) queryClients(ctx context.Context, query string, args ...any) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]domain.Client, 0, 32)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	if client.Name == "" {
		return nil, store.ErrInvalidInput
	}
	client.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, phone, email, address)
		VALUES ($1,$2,$3,$4,$5)
	`, client.ID, client.Name, client.Phone, client.Email, client.Address)
	if err != nil {
		return nil, err
	}
	created := client
	return &created, nil
}

func (s *Store) UpdateClient(ctx context.Context, id string, patch domain.ClientUpdateRequest) error {
	sets, args := buildPatch(map[string]any{
		"name":    strPtrValue(patch.Name),
		"phone":   strPtrValue(patch.Phone),
		"email":   strPtrValue(patch.Email),
		"address": strPtrValue(patch.Address),
	})
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET `+strings.Join(sets, ", ")+` WHERE id = $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	// No cascade: sales keep their client_id and listings fall back to a
	// placeholder name.
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, `
		SELECT id, code, name, description, price, quantity
		FROM products
		ORDER BY name
	`)
}

func (s *Store) SearchProductsByName(ctx context.Context, prefix string) ([]domain.Product, error) {
	if prefix == "" {
		return s.ListProducts(ctx)
	}
	return s.queryProducts(ctx, `
		SELECT id, code, name, description, price, quantity
		FROM products
		WHERE name LIKE $1 || '%'
		ORDER BY name
	`, escapeLike(prefix))
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &p.Quantity); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, description, price, quantity
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &p.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Code == "" {
		return nil, store.ErrInvalidInput
	}
	if product.Price.IsNegative() || product.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	product.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, code, name, description, price, quantity)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, product.ID, product.Code, product.Name, product.Description, product.Price, product.Quantity)
	if err != nil {
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch domain.ProductUpdateRequest) error {
	if patch.Price != nil && patch.Price.IsNegative() {
		return store.ErrInvalidInput
	}
	fields := map[string]any{
		"code":        strPtrValue(patch.Code),
		"name":        strPtrValue(patch.Name),
		"description": strPtrValue(patch.Description),
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		fields["quantity"] = *patch.Quantity
	}
	sets, args := buildPatch(fields)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.querySales(ctx, `
		SELECT id, client_id, items, total, invoice_number, sale_date
		FROM sales
		ORDER BY sale_date DESC, id DESC
	`)
}

func (s *Store) ListSalesByClient(ctx context.Context, clientID string) ([]domain.Sale, error) {
	return s.querySales(ctx, `
		SELECT id, client_id, items, total, invoice_number, sale_date
		FROM sales
		WHERE client_id = $1
		ORDER BY sale_date DESC, id DESC
	`, clientID)
}

func (s *Store) querySales(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 32)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, items, total, invoice_number, sale_date
		FROM sales
		WHERE id = $1
	`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ClientID == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidInput
	}
	sale.ID = uuid.NewString()
	if sale.Date.IsZero() {
		sale.Date = time.Now().UTC()
	}
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sales (id, client_id, items, total, invoice_number, sale_date)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, sale.ID, sale.ClientID, items, sale.Total, sale.InvoiceNumber, sale.Date)
	if err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) GetSettings(ctx context.Context) (*domain.CompanySettings, error) {
	var cs domain.CompanySettings
	err := s.db.QueryRowContext(ctx, `
		SELECT name, address, phone, email, logo_url
		FROM settings
		WHERE key = $1
	`, domain.SettingsKey).Scan(&cs.Name, &cs.Address, &cs.Phone, &cs.Email, &cs.LogoURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &cs, nil
}

func (s *Store) PutSettings(ctx context.Context, settings domain.CompanySettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, name, address, phone, email, logo_url)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			logo_url = EXCLUDED.logo_url
	`, domain.SettingsKey, settings.Name, settings.Address, settings.Phone, settings.Email, settings.LogoURL)
	return err
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, created_at)
		VALUES ($1,$2,$3)
	`, email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var sale domain.Sale
	var items []byte
	if err := row.Scan(&sale.ID, &sale.ClientID, &items, &sale.Total, &sale.InvoiceNumber, &sale.Date); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &sale.Items); err != nil {
		return nil, err
	}
	return &sale, nil
}

// buildPatch turns present fields into SET clauses with ordinal parameters.
// Map iteration order is not deterministic, which is fine for an UPDATE.
func buildPatch(fields map[string]any) ([]string, []any) {
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for column, value := range fields {
		if value == nil {
			continue
		}
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	return sets, args
}

// escapeLike escapes LIKE pattern characters so a search prefix matches
// literally, the same way the memory store's prefix check does.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func strPtrValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
