package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"jokersolar/backend/internal/domain"
	"jokersolar/backend/internal/store"
	"jokersolar/backend/internal/xid"
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

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, brand, model, min_price, max_price, cost,
		       quantity, length, measure_type, description, image_url, created_at, updated_at
		FROM inventory_items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 128)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, brand, model, min_price, max_price, cost,
		       quantity, length, measure_type, description, image_url, created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (
			id, name, category, brand, model, min_price, max_price, cost,
			quantity, length, measure_type, description, image_url, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, item.ID, item.Name, item.Category, item.Brand, item.Model,
		item.MinPrice, item.MaxPrice, item.Cost,
		item.Quantity, item.Length, item.MeasureType,
		strings.TrimSpace(item.Description), strings.TrimSpace(item.ImageURL),
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: item already exists", store.ErrValidation)
		}
		return nil, err
	}
	created := item
	return &created, nil
}

func (s *Store) UpdateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	item.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = $2, category = $3, brand = $4, model = $5,
		    min_price = $6, max_price = $7, cost = $8,
		    quantity = $9, length = $10, description = $11, image_url = $12,
		    updated_at = $13
		WHERE id = $1
	`, item.ID, item.Name, item.Category, item.Brand, item.Model,
		item.MinPrice, item.MaxPrice, item.Cost,
		item.Quantity, item.Length,
		strings.TrimSpace(item.Description), strings.TrimSpace(item.ImageURL),
		item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetItem(ctx, item.ID)
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AdjustStock(ctx context.Context, id string, delta decimal.Decimal) (*domain.InventoryItem, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var measureType string
	err = tx.QueryRowContext(ctx, `
		SELECT measure_type FROM inventory_items WHERE id = $1 FOR UPDATE
	`, id).Scan(&measureType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := adjustStockTx(ctx, tx, id, measureType, delta.Neg()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

func (s *Store) CountItemsInCategory(ctx context.Context, category string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory_items WHERE category = $1
	`, category).Scan(&count)
	return count, err
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 32)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, category.ID, category.Name, strings.TrimSpace(category.Description), category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q already exists", store.ErrValidation, category.Name)
		}
		return nil, err
	}
	created := category
	return &created, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
	`, category.ID, category.Name, strings.TrimSpace(category.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q already exists", store.ErrValidation, category.Name)
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetCategory(ctx, category.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	used, err := s.CountItemsInCategory(ctx, category.Name)
	if err != nil {
		return err
	}
	if used > 0 {
		return store.ErrCategoryInUse
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateSale inserts the sale with its line snapshots and decrements every
// line's stock measure in one serializable transaction. A replayed
// idempotency key returns the originally committed sale.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, receipt_number, customer_name, sold_by, sold_at, total, idempotency_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, sale.ID, sale.ReceiptNumber, sale.CustomerName, sale.SoldBy, sale.SoldAt, sale.Total, nullIfEmpty(sale.IdempotencyKey))
	if err != nil {
		if isUniqueViolation(err) && sale.IdempotencyKey != "" {
			_ = tx.Rollback()
			return s.FindSaleByIdempotency(ctx, sale.IdempotencyKey)
		}
		return nil, err
	}

	if err := insertSaleItems(ctx, tx, "sale_items", "sale_id", sale.ID, sale.Items); err != nil {
		return nil, err
	}
	if err := applyStockTx(ctx, tx, sale.Items); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

// CreateCreditSale mirrors CreateSale for credit terms and optionally records
// the initial payment in the same transaction.
func (s *Store) CreateCreditSale(ctx context.Context, sale domain.CreditSale, initial *domain.CreditPayment) (*domain.CreditSale, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	sale.DeriveStatus()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_sales (
			id, receipt_number, customer_name, customer_phone, sold_by, sold_at,
			total, amount_paid, due_date, idempotency_key
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, sale.ID, sale.ReceiptNumber, sale.CustomerName, sale.CustomerPhone, sale.SoldBy, sale.SoldAt,
		sale.Total, sale.AmountPaid, sale.DueDate, nullIfEmpty(sale.IdempotencyKey))
	if err != nil {
		if isUniqueViolation(err) && sale.IdempotencyKey != "" {
			_ = tx.Rollback()
			return s.findCreditSaleByIdempotency(ctx, sale.IdempotencyKey)
		}
		return nil, err
	}

	if err := insertSaleItems(ctx, tx, "credit_sale_items", "credit_sale_id", sale.ID, sale.Items); err != nil {
		return nil, err
	}
	if err := applyStockTx(ctx, tx, sale.Items); err != nil {
		return nil, err
	}
	if initial != nil {
		payment := *initial
		payment.CreditSaleID = sale.ID
		if payment.ID == "" {
			payment.ID = xid.New("pay")
		}
		if payment.RecordedAt.IsZero() {
			payment.RecordedAt = time.Now().UTC()
		}
		if err := insertCreditPayment(ctx, tx, payment); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) FindSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := s.querySale(ctx, `WHERE id = $1`, id)
	if err == nil {
		return sale, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	credit, err := s.GetCreditSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return &credit.Sale, nil
}

func (s *Store) FindSaleByIdempotency(ctx context.Context, key string) (*domain.Sale, error) {
	sale, err := s.querySale(ctx, `WHERE idempotency_key = $1`, key)
	if err == nil {
		return sale, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	credit, err := s.findCreditSaleByIdempotency(ctx, key)
	if err != nil {
		return nil, err
	}
	return &credit.Sale, nil
}

func (s *Store) querySale(ctx context.Context, where string, arg any) (*domain.Sale, error) {
	var sale domain.Sale
	var idem sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, receipt_number, customer_name, sold_by, sold_at, total, idempotency_key
		FROM sales `+where,
		arg).Scan(&sale.ID, &sale.ReceiptNumber, &sale.CustomerName, &sale.SoldBy, &sale.SoldAt, &sale.Total, &idem)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.IdempotencyKey = idem.String
	sale.SoldAt = sale.SoldAt.UTC()
	items, err := s.loadSaleItems(ctx, "sale_items", "sale_id", []string{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Items = items[sale.ID]
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, receipt_number, customer_name, sold_by, sold_at, total, 'sales' AS src
		FROM sales
		WHERE sold_at >= $1 AND sold_at < $2
		UNION ALL
		SELECT id, receipt_number, customer_name, sold_by, sold_at, total, 'credit' AS src
		FROM credit_sales
		WHERE sold_at >= $1 AND sold_at < $2
		ORDER BY sold_at DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	var saleIDs, creditIDs []string
	for rows.Next() {
		var sale domain.Sale
		var src string
		if err := rows.Scan(&sale.ID, &sale.ReceiptNumber, &sale.CustomerName, &sale.SoldBy, &sale.SoldAt, &sale.Total, &src); err != nil {
			return nil, err
		}
		sale.SoldAt = sale.SoldAt.UTC()
		if src == "credit" {
			creditIDs = append(creditIDs, sale.ID)
		} else {
			saleIDs = append(saleIDs, sale.ID)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	saleItems, err := s.loadSaleItems(ctx, "sale_items", "sale_id", saleIDs)
	if err != nil {
		return nil, err
	}
	creditItems, err := s.loadSaleItems(ctx, "credit_sale_items", "credit_sale_id", creditIDs)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		if items, ok := saleItems[sales[i].ID]; ok {
			sales[i].Items = items
		} else {
			sales[i].Items = creditItems[sales[i].ID]
		}
	}
	return sales, nil
}

func (s *Store) ListCreditSales(ctx context.Context) ([]domain.CreditSale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, receipt_number, customer_name, customer_phone, sold_by, sold_at,
		       total, amount_paid, due_date
		FROM credit_sales
		ORDER BY sold_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credits := make([]domain.CreditSale, 0, 64)
	var ids []string
	for rows.Next() {
		credit, err := scanCreditSale(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, credit.ID)
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := s.loadSaleItems(ctx, "credit_sale_items", "credit_sale_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range credits {
		credits[i].Items = items[credits[i].ID]
	}
	return credits, nil
}

func (s *Store) GetCreditSale(ctx context.Context, id string) (*domain.CreditSale, error) {
	return s.queryCreditSale(ctx, `WHERE id = $1`, id)
}

func (s *Store) findCreditSaleByIdempotency(ctx context.Context, key string) (*domain.CreditSale, error) {
	return s.queryCreditSale(ctx, `WHERE idempotency_key = $1`, key)
}

func (s *Store) queryCreditSale(ctx context.Context, where string, arg any) (*domain.CreditSale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, receipt_number, customer_name, customer_phone, sold_by, sold_at,
		       total, amount_paid, due_date
		FROM credit_sales `+where, arg)
	credit, err := scanCreditSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	items, err := s.loadSaleItems(ctx, "credit_sale_items", "credit_sale_id", []string{credit.ID})
	if err != nil {
		return nil, err
	}
	credit.Items = items[credit.ID]
	return &credit, nil
}

func (s *Store) RecordCreditPayment(ctx context.Context, payment domain.CreditPayment) (*domain.CreditSale, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var total, paid decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT total, amount_paid FROM credit_sales WHERE id = $1 FOR UPDATE
	`, payment.CreditSaleID).Scan(&total, &paid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	remaining := total.Sub(paid)
	if !payment.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be greater than zero", store.ErrValidation)
	}
	if payment.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: payment exceeds remaining balance %s", store.ErrValidation, remaining.String())
	}

	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.RecordedAt.IsZero() {
		payment.RecordedAt = time.Now().UTC()
	}
	if err := insertCreditPayment(ctx, tx, payment); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE credit_sales SET amount_paid = amount_paid + $2 WHERE id = $1
	`, payment.CreditSaleID, payment.Amount)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetCreditSale(ctx, payment.CreditSaleID)
}

func (s *Store) ListCreditPayments(ctx context.Context, creditSaleID string) ([]domain.CreditPayment, error) {
	if _, err := s.GetCreditSale(ctx, creditSaleID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, credit_sale_id, amount, method, recorded_by, notes, recorded_at
		FROM credit_payments
		WHERE credit_sale_id = $1
		ORDER BY recorded_at
	`, creditSaleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.CreditPayment, 0, 8)
	for rows.Next() {
		var p domain.CreditPayment
		if err := rows.Scan(&p.ID, &p.CreditSaleID, &p.Amount, &p.Method, &p.RecordedBy, &p.Notes, &p.RecordedAt); err != nil {
			return nil, err
		}
		p.RecordedAt = p.RecordedAt.UTC()
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) TopSellingItems(ctx context.Context, limit int) ([]domain.TopSellingItem, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, MAX(name) AS name, SUM(quantity) AS qty,
		       SUM(selected_price * quantity) AS revenue, COUNT(DISTINCT ref_id) AS sale_count
		FROM (
			SELECT sale_id AS ref_id, item_id, name, quantity, selected_price FROM sale_items
			UNION ALL
			SELECT credit_sale_id AS ref_id, item_id, name, quantity, selected_price FROM credit_sale_items
		) lines
		GROUP BY item_id
		ORDER BY qty DESC, revenue DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]domain.TopSellingItem, 0, limit)
	for rows.Next() {
		var entry domain.TopSellingItem
		if err := rows.Scan(&entry.ItemID, &entry.Name, &entry.QuantitySold, &entry.Revenue, &entry.SaleCount); err != nil {
			return nil, err
		}
		top = append(top, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return top, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || user.PasswordHash == "" {
		return fmt.Errorf("%w: email and password are required", store.ErrValidation)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, user.ID, user.Name, email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already registered", store.ErrValidation)
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, email string, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)), passwordHash)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) loadSaleItems(ctx context.Context, table string, refColumn string, ids []string) (map[string][]domain.SaleLine, error) {
	result := make(map[string][]domain.SaleLine, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+refColumn+`, item_id, name, brand, model, measure_type, selected_price, quantity
		FROM `+table+`
		WHERE `+refColumn+` = ANY($1)
		ORDER BY position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var refID string
		var line domain.SaleLine
		if err := rows.Scan(&refID, &line.ItemID, &line.Name, &line.Brand, &line.Model, &line.MeasureType, &line.SelectedPrice, &line.Quantity); err != nil {
			return nil, err
		}
		result[refID] = append(result[refID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func insertSaleItems(ctx context.Context, tx *sql.Tx, table string, refColumn string, refID string, items []domain.SaleLine) error {
	for i, line := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO `+table+` (`+refColumn+`, position, item_id, name, brand, model, measure_type, selected_price, quantity)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, refID, i, line.ItemID, line.Name, line.Brand, line.Model, line.MeasureType, line.SelectedPrice, line.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func insertCreditPayment(ctx context.Context, tx *sql.Tx, payment domain.CreditPayment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_payments (id, credit_sale_id, amount, method, recorded_by, notes, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, payment.ID, payment.CreditSaleID, payment.Amount, payment.Method, payment.RecordedBy, strings.TrimSpace(payment.Notes), payment.RecordedAt)
	return err
}

// applyStockTx decrements each line's stock measure with a guarded update so
// concurrent checkouts cannot drive stock negative.
func applyStockTx(ctx context.Context, tx *sql.Tx, items []domain.SaleLine) error {
	need := map[string]decimal.Decimal{}
	measure := map[string]string{}
	for _, line := range items {
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("%w: quantity must be greater than zero", store.ErrValidation)
		}
		need[line.ItemID] = need[line.ItemID].Add(line.Quantity)
		measure[line.ItemID] = line.MeasureType
	}
	for itemID, qty := range need {
		if err := adjustStockTx(ctx, tx, itemID, measure[itemID], qty); err != nil {
			return err
		}
	}
	return nil
}

func adjustStockTx(ctx context.Context, tx *sql.Tx, itemID string, measureType string, sub decimal.Decimal) error {
	var res sql.Result
	var err error
	if measureType == domain.MeasureLength {
		res, err = tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET length = length - $2, updated_at = now()
			WHERE id = $1 AND measure_type = 'length' AND length >= $2
		`, itemID, sub)
	} else {
		if !sub.IsInteger() {
			return fmt.Errorf("%w: quantity must be a whole number", store.ErrValidation)
		}
		res, err = tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET quantity = quantity - $2, updated_at = now()
			WHERE id = $1 AND measure_type = 'standard' AND quantity >= $2
		`, itemID, sub.IntPart())
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT true FROM inventory_items WHERE id = $1`, itemID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: item %s", store.ErrNotFound, itemID)
			}
			return err
		}
		return store.ErrInsufficientStock
	}
	return nil
}

func scanItem(row interface{ Scan(...any) error }) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	var description, imageURL sql.NullString
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Brand, &item.Model,
		&item.MinPrice, &item.MaxPrice, &item.Cost,
		&item.Quantity, &item.Length, &item.MeasureType,
		&description, &imageURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return item, err
	}
	item.Description = description.String
	item.ImageURL = imageURL.String
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func scanCreditSale(row interface{ Scan(...any) error }) (domain.CreditSale, error) {
	var credit domain.CreditSale
	err := row.Scan(&credit.ID, &credit.ReceiptNumber, &credit.CustomerName, &credit.CustomerPhone,
		&credit.SoldBy, &credit.SoldAt, &credit.Total, &credit.AmountPaid, &credit.DueDate)
	if err != nil {
		return credit, err
	}
	credit.SoldAt = credit.SoldAt.UTC()
	credit.DueDate = credit.DueDate.UTC()
	credit.DeriveStatus()
	return credit, nil
}

func nullIfEmpty(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
