package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/loyalty"
	"github.com/gold360/backoffice/internal/app/domain/order"
	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/internal/app/domain/shipment"
	"github.com/gold360/backoffice/internal/app/domain/transfer"
	"github.com/gold360/backoffice/internal/app/domain/warehouse"
	"github.com/gold360/backoffice/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.WarehouseStore = (*Store)(nil)
var _ storage.InventoryStore = (*Store)(nil)
var _ storage.CustomerStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.TransferStore = (*Store)(nil)
var _ storage.ShipmentStore = (*Store)(nil)
var _ storage.LoyaltyStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- ProductStore -----------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_products (id, sku, name, description, category, metal, purity_karat, weight_grams, unit_price, currency, barcode, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.SKU, p.Name, p.Description, p.Category, p.Metal, p.PurityKarat, p.WeightGrams, p.UnitPrice, p.Currency, p.Barcode, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return product.Product{}, err
	}

	p.SKU = existing.SKU
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE gold_products
		SET name = $2, description = $3, category = $4, metal = $5, purity_karat = $6, weight_grams = $7, unit_price = $8, currency = $9, barcode = $10, active = $11, updated_at = $12
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Category, p.Metal, p.PurityKarat, p.WeightGrams, p.UnitPrice, p.Currency, p.Barcode, p.Active, p.UpdatedAt)
	if err != nil {
		return product.Product{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return product.Product{}, sql.ErrNoRows
	}
	return p, nil
}

const productColumns = `id, sku, name, description, category, metal, purity_karat, weight_grams, unit_price, currency, barcode, active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Metal, &p.PurityKarat, &p.WeightGrams, &p.UnitPrice, &p.Currency, &p.Barcode, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) GetProduct(ctx context.Context, id string) (product.Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM gold_products WHERE id = $1
	`, id))
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (product.Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM gold_products WHERE sku = $1
	`, sku))
}

func (s *Store) ListProducts(ctx context.Context, category string) ([]product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM gold_products`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gold_products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- WarehouseStore ---------------------------------------------------------

func (s *Store) CreateWarehouse(ctx context.Context, w warehouse.Warehouse) (warehouse.Warehouse, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_warehouses (id, code, name, address, city, country, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, w.ID, w.Code, w.Name, w.Address, w.City, w.Country, w.Phone, w.Active, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return warehouse.Warehouse{}, err
	}
	return w, nil
}

func (s *Store) UpdateWarehouse(ctx context.Context, w warehouse.Warehouse) (warehouse.Warehouse, error) {
	existing, err := s.GetWarehouse(ctx, w.ID)
	if err != nil {
		return warehouse.Warehouse{}, err
	}

	w.Code = existing.Code
	w.CreatedAt = existing.CreatedAt
	w.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE gold_warehouses
		SET name = $2, address = $3, city = $4, country = $5, phone = $6, active = $7, updated_at = $8
		WHERE id = $1
	`, w.ID, w.Name, w.Address, w.City, w.Country, w.Phone, w.Active, w.UpdatedAt)
	if err != nil {
		return warehouse.Warehouse{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return warehouse.Warehouse{}, sql.ErrNoRows
	}
	return w, nil
}

const warehouseColumns = `id, code, name, address, city, country, phone, active, created_at, updated_at`

func scanWarehouse(row interface{ Scan(...any) error }) (warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.City, &w.Country, &w.Phone, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func (s *Store) GetWarehouse(ctx context.Context, id string) (warehouse.Warehouse, error) {
	return scanWarehouse(s.db.QueryRowContext(ctx, `
		SELECT `+warehouseColumns+` FROM gold_warehouses WHERE id = $1
	`, id))
}

func (s *Store) GetWarehouseByCode(ctx context.Context, code string) (warehouse.Warehouse, error) {
	return scanWarehouse(s.db.QueryRowContext(ctx, `
		SELECT `+warehouseColumns+` FROM gold_warehouses WHERE code = $1
	`, code))
}

func (s *Store) ListWarehouses(ctx context.Context) ([]warehouse.Warehouse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+warehouseColumns+` FROM gold_warehouses ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []warehouse.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (s *Store) DeleteWarehouse(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gold_warehouses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- InventoryStore ---------------------------------------------------------

func (s *Store) UpsertLevel(ctx context.Context, lvl inventory.Level) (inventory.Level, error) {
	if lvl.ID == "" {
		lvl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lvl.UpdatedAt = now
	if lvl.CreatedAt.IsZero() {
		lvl.CreatedAt = now
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO gold_inventory_levels (id, product_id, warehouse_id, quantity, reorder_point, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, reorder_point = EXCLUDED.reorder_point, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, lvl.ID, lvl.ProductID, lvl.WarehouseID, lvl.Quantity, lvl.ReorderPoint, lvl.CreatedAt, lvl.UpdatedAt).Scan(&lvl.ID, &lvl.CreatedAt)
	if err != nil {
		return inventory.Level{}, err
	}
	return lvl, nil
}

const levelColumns = `id, product_id, warehouse_id, quantity, reorder_point, created_at, updated_at`

func scanLevel(row interface{ Scan(...any) error }) (inventory.Level, error) {
	var lvl inventory.Level
	err := row.Scan(&lvl.ID, &lvl.ProductID, &lvl.WarehouseID, &lvl.Quantity, &lvl.ReorderPoint, &lvl.CreatedAt, &lvl.UpdatedAt)
	return lvl, err
}

func (s *Store) GetLevel(ctx context.Context, productID, warehouseID string) (inventory.Level, error) {
	return scanLevel(s.db.QueryRowContext(ctx, `
		SELECT `+levelColumns+` FROM gold_inventory_levels WHERE product_id = $1 AND warehouse_id = $2
	`, productID, warehouseID))
}

func (s *Store) ListLevels(ctx context.Context, productID, warehouseID string) ([]inventory.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM gold_inventory_levels WHERE 1=1`
	args := []any{}
	if productID != "" {
		args = append(args, productID)
		query += ` AND product_id = $1`
	}
	if warehouseID != "" {
		args = append(args, warehouseID)
		if len(args) == 1 {
			query += ` AND warehouse_id = $1`
		} else {
			query += ` AND warehouse_id = $2`
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []inventory.Level
	for rows.Next() {
		lvl, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, lvl)
	}
	return result, rows.Err()
}

func (s *Store) ListLevelsBelowReorder(ctx context.Context) ([]inventory.Level, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+levelColumns+` FROM gold_inventory_levels
		WHERE reorder_point > 0 AND quantity < reorder_point
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []inventory.Level
	for rows.Next() {
		lvl, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, lvl)
	}
	return result, rows.Err()
}

func (s *Store) CreateStockTransaction(ctx context.Context, tx inventory.StockTransaction) (inventory.StockTransaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_stock_transactions (id, product_id, warehouse_id, type, quantity, quantity_before, quantity_after, reference, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, tx.ID, tx.ProductID, tx.WarehouseID, tx.Type, tx.Quantity, tx.QuantityBefore, tx.QuantityAfter, tx.Reference, tx.Note, tx.CreatedAt)
	if err != nil {
		return inventory.StockTransaction{}, err
	}
	return tx, nil
}

func (s *Store) ListStockTransactions(ctx context.Context, productID, warehouseID string) ([]inventory.StockTransaction, error) {
	query := `
		SELECT id, product_id, warehouse_id, type, quantity, quantity_before, quantity_after, reference, note, created_at
		FROM gold_stock_transactions WHERE 1=1`
	args := []any{}
	if productID != "" {
		args = append(args, productID)
		query += ` AND product_id = $1`
	}
	if warehouseID != "" {
		args = append(args, warehouseID)
		if len(args) == 1 {
			query += ` AND warehouse_id = $1`
		} else {
			query += ` AND warehouse_id = $2`
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []inventory.StockTransaction
	for rows.Next() {
		var tx inventory.StockTransaction
		if err := rows.Scan(&tx.ID, &tx.ProductID, &tx.WarehouseID, &tx.Type, &tx.Quantity, &tx.QuantityBefore, &tx.QuantityAfter, &tx.Reference, &tx.Note, &tx.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// --- CustomerStore ----------------------------------------------------------

func (s *Store) CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_customers (id, first_name, last_name, email, phone, address, city, country, birthday, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.Country, toNullTime(c.Birthday), c.Note, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, err
	}
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	existing, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		return customer.Customer{}, err
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE gold_customers
		SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6, city = $7, country = $8, birthday = $9, note = $10, updated_at = $11
		WHERE id = $1
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.Country, toNullTime(c.Birthday), c.Note, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return customer.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

const customerColumns = `id, first_name, last_name, email, phone, address, city, country, birthday, note, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (customer.Customer, error) {
	var (
		c        customer.Customer
		birthday sql.NullTime
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City, &c.Country, &birthday, &c.Note, &c.CreatedAt, &c.UpdatedAt)
	if birthday.Valid {
		c.Birthday = birthday.Time.UTC()
	}
	return c, err
}

func (s *Store) GetCustomer(ctx context.Context, id string) (customer.Customer, error) {
	return scanCustomer(s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM gold_customers WHERE id = $1
	`, id))
}

func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (customer.Customer, error) {
	return scanCustomer(s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM gold_customers WHERE email = $1
	`, email))
}

func (s *Store) ListCustomers(ctx context.Context, query string) ([]customer.Customer, error) {
	sqlQuery := `SELECT ` + customerColumns + ` FROM gold_customers`
	args := []any{}
	if query != "" {
		sqlQuery += ` WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+query+"%")
	}
	sqlQuery += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gold_customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- OrderStore -------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO gold_orders (id, customer_id, warehouse_id, status, subtotal, discount, total, currency, note, placed_at, paid_at, fulfilled_at, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, o.ID, o.CustomerID, o.WarehouseID, o.Status, o.Subtotal, o.Discount, o.Total, o.Currency, o.Note, toNullTime(o.PlacedAt), toNullTime(o.PaidAt), toNullTime(o.FulfilledAt), toNullTime(o.CancelledAt), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}

	for i := range o.Items {
		item := &o.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = o.ID
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO gold_order_items (id, order_id, product_id, sku, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, item.OrderID, item.ProductID, item.SKU, item.Quantity, item.UnitPrice, item.LineTotal); err != nil {
			return order.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	existing, err := s.GetOrder(ctx, o.ID)
	if err != nil {
		return order.Order{}, err
	}

	o.CustomerID = existing.CustomerID
	o.WarehouseID = existing.WarehouseID
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE gold_orders
		SET status = $2, subtotal = $3, discount = $4, total = $5, currency = $6, note = $7, placed_at = $8, paid_at = $9, fulfilled_at = $10, cancelled_at = $11, updated_at = $12
		WHERE id = $1
	`, o.ID, o.Status, o.Subtotal, o.Discount, o.Total, o.Currency, o.Note, toNullTime(o.PlacedAt), toNullTime(o.PaidAt), toNullTime(o.FulfilledAt), toNullTime(o.CancelledAt), o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return order.Order{}, sql.ErrNoRows
	}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, warehouse_id, status, subtotal, discount, total, currency, note, placed_at, paid_at, fulfilled_at, cancelled_at, created_at, updated_at
		FROM gold_orders WHERE id = $1
	`, id)
	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}
	o.Items, err = s.loadOrderItems(ctx, o.ID)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, customerID string, status order.Status) ([]order.Order, error) {
	query := `
		SELECT id, customer_id, warehouse_id, status, subtotal, discount, total, currency, note, placed_at, paid_at, fulfilled_at, cancelled_at, created_at, updated_at
		FROM gold_orders WHERE 1=1`
	args := []any{}
	if customerID != "" {
		args = append(args, customerID)
		query += ` AND customer_id = $1`
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Items, err = s.loadOrderItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func scanOrder(row interface{ Scan(...any) error }) (order.Order, error) {
	var (
		o           order.Order
		placedAt    sql.NullTime
		paidAt      sql.NullTime
		fulfilledAt sql.NullTime
		cancelledAt sql.NullTime
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.WarehouseID, &o.Status, &o.Subtotal, &o.Discount, &o.Total, &o.Currency, &o.Note, &placedAt, &paidAt, &fulfilledAt, &cancelledAt, &o.CreatedAt, &o.UpdatedAt)
	if placedAt.Valid {
		o.PlacedAt = placedAt.Time.UTC()
	}
	if paidAt.Valid {
		o.PaidAt = paidAt.Time.UTC()
	}
	if fulfilledAt.Valid {
		o.FulfilledAt = fulfilledAt.Time.UTC()
	}
	if cancelledAt.Valid {
		o.CancelledAt = cancelledAt.Time.UTC()
	}
	return o, err
}

func (s *Store) loadOrderItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, sku, quantity, unit_price, line_total
		FROM gold_order_items WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.SKU, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// --- TransferStore ----------------------------------------------------------

func (s *Store) CreateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return transfer.Transfer{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO gold_transfers (id, code, source_id, destination_id, status, note, dispatched_at, completed_at, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, t.ID, t.Code, t.SourceID, t.DestinationID, t.Status, t.Note, toNullTime(t.DispatchedAt), toNullTime(t.CompletedAt), toNullTime(t.CancelledAt), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return transfer.Transfer{}, err
	}

	for i := range t.Items {
		item := &t.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.TransferID = t.ID
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO gold_transfer_items (id, transfer_id, product_id, quantity, received_quantity)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.TransferID, item.ProductID, item.Quantity, item.ReceivedQuantity); err != nil {
			return transfer.Transfer{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return transfer.Transfer{}, err
	}
	return t, nil
}

func (s *Store) UpdateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	existing, err := s.GetTransfer(ctx, t.ID)
	if err != nil {
		return transfer.Transfer{}, err
	}

	t.Code = existing.Code
	t.SourceID = existing.SourceID
	t.DestinationID = existing.DestinationID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return transfer.Transfer{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE gold_transfers
		SET status = $2, note = $3, dispatched_at = $4, completed_at = $5, cancelled_at = $6, updated_at = $7
		WHERE id = $1
	`, t.ID, t.Status, t.Note, toNullTime(t.DispatchedAt), toNullTime(t.CompletedAt), toNullTime(t.CancelledAt), t.UpdatedAt)
	if err != nil {
		return transfer.Transfer{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return transfer.Transfer{}, sql.ErrNoRows
	}

	for _, item := range t.Items {
		if _, err := tx.ExecContext(ctx, `
			UPDATE gold_transfer_items SET received_quantity = $3
			WHERE transfer_id = $1 AND product_id = $2
		`, t.ID, item.ProductID, item.ReceivedQuantity); err != nil {
			return transfer.Transfer{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return transfer.Transfer{}, err
	}
	return t, nil
}

func (s *Store) GetTransfer(ctx context.Context, id string) (transfer.Transfer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, source_id, destination_id, status, note, dispatched_at, completed_at, cancelled_at, created_at, updated_at
		FROM gold_transfers WHERE id = $1
	`, id)
	t, err := scanTransfer(row)
	if err != nil {
		return transfer.Transfer{}, err
	}
	t.Items, err = s.loadTransferItems(ctx, t.ID)
	if err != nil {
		return transfer.Transfer{}, err
	}
	return t, nil
}

func (s *Store) ListTransfers(ctx context.Context, warehouseID string, status transfer.Status) ([]transfer.Transfer, error) {
	query := `
		SELECT id, code, source_id, destination_id, status, note, dispatched_at, completed_at, cancelled_at, created_at, updated_at
		FROM gold_transfers WHERE 1=1`
	args := []any{}
	if warehouseID != "" {
		args = append(args, warehouseID)
		query += ` AND (source_id = $1 OR destination_id = $1)`
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []transfer.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Items, err = s.loadTransferItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func scanTransfer(row interface{ Scan(...any) error }) (transfer.Transfer, error) {
	var (
		t            transfer.Transfer
		dispatchedAt sql.NullTime
		completedAt  sql.NullTime
		cancelledAt  sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Code, &t.SourceID, &t.DestinationID, &t.Status, &t.Note, &dispatchedAt, &completedAt, &cancelledAt, &t.CreatedAt, &t.UpdatedAt)
	if dispatchedAt.Valid {
		t.DispatchedAt = dispatchedAt.Time.UTC()
	}
	if completedAt.Valid {
		t.CompletedAt = completedAt.Time.UTC()
	}
	if cancelledAt.Valid {
		t.CancelledAt = cancelledAt.Time.UTC()
	}
	return t, err
}

func (s *Store) loadTransferItems(ctx context.Context, transferID string) ([]transfer.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transfer_id, product_id, quantity, received_quantity
		FROM gold_transfer_items WHERE transfer_id = $1 ORDER BY id
	`, transferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []transfer.Item
	for rows.Next() {
		var item transfer.Item
		if err := rows.Scan(&item.ID, &item.TransferID, &item.ProductID, &item.Quantity, &item.ReceivedQuantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// --- ShipmentStore ----------------------------------------------------------

func (s *Store) CreateShipment(ctx context.Context, sh shipment.Shipment) (shipment.Shipment, error) {
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sh.CreatedAt = now
	sh.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_shipments (id, order_id, transfer_id, carrier, tracking_number, status, shipped_at, delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, sh.ID, sh.OrderID, sh.TransferID, sh.Carrier, sh.TrackingNumber, sh.Status, toNullTime(sh.ShippedAt), toNullTime(sh.DeliveredAt), sh.CreatedAt, sh.UpdatedAt)
	if err != nil {
		return shipment.Shipment{}, err
	}
	return sh, nil
}

func (s *Store) UpdateShipment(ctx context.Context, sh shipment.Shipment) (shipment.Shipment, error) {
	existing, err := s.GetShipment(ctx, sh.ID)
	if err != nil {
		return shipment.Shipment{}, err
	}

	sh.OrderID = existing.OrderID
	sh.TransferID = existing.TransferID
	sh.CreatedAt = existing.CreatedAt
	sh.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE gold_shipments
		SET carrier = $2, tracking_number = $3, status = $4, shipped_at = $5, delivered_at = $6, updated_at = $7
		WHERE id = $1
	`, sh.ID, sh.Carrier, sh.TrackingNumber, sh.Status, toNullTime(sh.ShippedAt), toNullTime(sh.DeliveredAt), sh.UpdatedAt)
	if err != nil {
		return shipment.Shipment{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return shipment.Shipment{}, sql.ErrNoRows
	}
	return sh, nil
}

const shipmentColumns = `id, order_id, transfer_id, carrier, tracking_number, status, shipped_at, delivered_at, created_at, updated_at`

func scanShipment(row interface{ Scan(...any) error }) (shipment.Shipment, error) {
	var (
		sh          shipment.Shipment
		shippedAt   sql.NullTime
		deliveredAt sql.NullTime
	)
	err := row.Scan(&sh.ID, &sh.OrderID, &sh.TransferID, &sh.Carrier, &sh.TrackingNumber, &sh.Status, &shippedAt, &deliveredAt, &sh.CreatedAt, &sh.UpdatedAt)
	if shippedAt.Valid {
		sh.ShippedAt = shippedAt.Time.UTC()
	}
	if deliveredAt.Valid {
		sh.DeliveredAt = deliveredAt.Time.UTC()
	}
	return sh, err
}

func (s *Store) GetShipment(ctx context.Context, id string) (shipment.Shipment, error) {
	return scanShipment(s.db.QueryRowContext(ctx, `
		SELECT `+shipmentColumns+` FROM gold_shipments WHERE id = $1
	`, id))
}

func (s *Store) GetShipmentByTracking(ctx context.Context, trackingNumber string) (shipment.Shipment, error) {
	return scanShipment(s.db.QueryRowContext(ctx, `
		SELECT `+shipmentColumns+` FROM gold_shipments WHERE tracking_number = $1
	`, trackingNumber))
}

func (s *Store) ListShipments(ctx context.Context, orderID, transferID string) ([]shipment.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM gold_shipments WHERE 1=1`
	args := []any{}
	if orderID != "" {
		args = append(args, orderID)
		query += ` AND order_id = $1`
	}
	if transferID != "" {
		args = append(args, transferID)
		if len(args) == 1 {
			query += ` AND transfer_id = $1`
		} else {
			query += ` AND transfer_id = $2`
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []shipment.Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sh)
	}
	return result, rows.Err()
}

func (s *Store) CreateShipmentEvent(ctx context.Context, ev shipment.Event) (shipment.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_shipment_events (id, shipment_id, status, location, note, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ev.ID, ev.ShipmentID, ev.Status, ev.Location, ev.Note, ev.OccurredAt, ev.CreatedAt)
	if err != nil {
		return shipment.Event{}, err
	}
	return ev, nil
}

func (s *Store) ListShipmentEvents(ctx context.Context, shipmentID string) ([]shipment.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shipment_id, status, location, note, occurred_at, created_at
		FROM gold_shipment_events WHERE shipment_id = $1 ORDER BY occurred_at
	`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []shipment.Event
	for rows.Next() {
		var ev shipment.Event
		if err := rows.Scan(&ev.ID, &ev.ShipmentID, &ev.Status, &ev.Location, &ev.Note, &ev.OccurredAt, &ev.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

// --- LoyaltyStore -----------------------------------------------------------

func (s *Store) UpsertProgram(ctx context.Context, p loyalty.Program) (loyalty.Program, error) {
	existing, err := s.GetActiveProgram(ctx)
	now := time.Now().UTC()
	if err == nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = now
		_, err = s.db.ExecContext(ctx, `
			UPDATE gold_loyalty_programs
			SET name = $2, earn_rate = $3, redeem_rate = $4, expiry_months = $5, active = $6, updated_at = $7
			WHERE id = $1
		`, p.ID, p.Name, p.EarnRate, p.RedeemRate, p.ExpiryMonths, p.Active, p.UpdatedAt)
		if err != nil {
			return loyalty.Program{}, err
		}
		return p, nil
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO gold_loyalty_programs (id, name, earn_rate, redeem_rate, expiry_months, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.EarnRate, p.RedeemRate, p.ExpiryMonths, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return loyalty.Program{}, err
	}
	return p, nil
}

func (s *Store) GetActiveProgram(ctx context.Context) (loyalty.Program, error) {
	var p loyalty.Program
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, earn_rate, redeem_rate, expiry_months, active, created_at, updated_at
		FROM gold_loyalty_programs WHERE active = TRUE
		ORDER BY updated_at DESC LIMIT 1
	`).Scan(&p.ID, &p.Name, &p.EarnRate, &p.RedeemRate, &p.ExpiryMonths, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return loyalty.Program{}, err
	}
	return p, nil
}

func (s *Store) CreateLoyaltyEntry(ctx context.Context, e loyalty.Entry) (loyalty.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_loyalty_entries (id, customer_id, kind, points, reference, expires_at, expired, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.CustomerID, e.Kind, e.Points, e.Reference, toNullTime(e.ExpiresAt), e.Expired, e.CreatedAt)
	if err != nil {
		return loyalty.Entry{}, err
	}
	return e, nil
}

const loyaltyEntryColumns = `id, customer_id, kind, points, reference, expires_at, expired, created_at`

func scanLoyaltyEntry(row interface{ Scan(...any) error }) (loyalty.Entry, error) {
	var (
		e         loyalty.Entry
		expiresAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.CustomerID, &e.Kind, &e.Points, &e.Reference, &expiresAt, &e.Expired, &e.CreatedAt)
	if expiresAt.Valid {
		e.ExpiresAt = expiresAt.Time.UTC()
	}
	return e, err
}

func (s *Store) ListLoyaltyEntries(ctx context.Context, customerID string) ([]loyalty.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+loyaltyEntryColumns+` FROM gold_loyalty_entries
		WHERE customer_id = $1 ORDER BY created_at
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []loyalty.Entry
	for rows.Next() {
		e, err := scanLoyaltyEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) ListExpirableEntries(ctx context.Context, before time.Time) ([]loyalty.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+loyaltyEntryColumns+` FROM gold_loyalty_entries
		WHERE kind = $1 AND expired = FALSE AND expires_at IS NOT NULL AND expires_at <= $2
		ORDER BY expires_at
	`, loyalty.KindEarn, before.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []loyalty.Entry
	for rows.Next() {
		e, err := scanLoyaltyEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) MarkEntryExpired(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE gold_loyalty_entries SET expired = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
