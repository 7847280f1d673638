package postgres

import (
	"context"
	"fmt"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	db TxBeginner
}

func NewOrderRepository(db TxBeginner) *OrderRepository {
	return &OrderRepository{db: db}
}

const selectOrder = `
	SELECT id, order_key, order_number, currency, status,
	       total::text, shipping_total::text, shipping_tax::text, total_tax::text,
	       billing, created_at, updated_at
	FROM orders`

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	billing, err := billingToJSON(o.Billing)
	if err != nil {
		return err
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}

	var createdAt, updatedAt pgtype.Timestamptz
	err = r.db.QueryRow(ctx, `
		INSERT INTO orders (order_key, order_number, currency, status, total, shipping_total, shipping_tax, total_tax, billing)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9)
		RETURNING id, created_at, updated_at`,
		o.Key, o.Number, o.Currency, string(o.Status),
		o.Total.String(), o.ShippingTotal.String(), o.ShippingTax.String(), o.TotalTax.String(),
		billing,
	).Scan(&o.ID, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	o.CreatedAt = pgtypeToTime(createdAt)
	o.UpdatedAt = pgtypeToTime(updatedAt)

	for k, v := range o.Meta {
		if err := r.UpdateMeta(ctx, o.ID, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := r.scanOrder(r.db.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get order by id: %w", notFound(err, order.ErrNotFound))
	}

	meta, err := r.loadMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Meta = meta
	return o, nil
}

func (r *OrderRepository) GetIDByKey(ctx context.Context, key string) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, `SELECT id FROM orders WHERE order_key = $1`, key).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get order id by key: %w", notFound(err, order.ErrNotFound))
	}
	return id, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status, note string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		if note == "" {
			return nil
		}
		return insertNote(ctx, tx, id, note)
	})
}

func (r *OrderRepository) AddNote(ctx context.Context, id int64, note string) error {
	if err := insertNote(ctx, r.db, id, note); err != nil {
		return err
	}
	return nil
}

func (r *OrderRepository) UpdateMeta(ctx context.Context, id int64, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO order_meta (order_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`,
		id, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to update order meta %q: %w", key, err)
	}
	return nil
}

func (r *OrderRepository) PaymentComplete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(order.StatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("failed to complete order payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Notes(ctx context.Context, id int64) ([]order.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, content, created_at FROM order_notes WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list order notes: %w", err)
	}

	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Note, error) {
		var (
			n  order.Note
			at pgtype.Timestamptz
		)
		err := row.Scan(&n.ID, &n.OrderID, &n.Content, &at)
		n.CreatedAt = pgtypeToTime(at)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan order notes: %w", err)
	}
	return notes, nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o                                   order.Order
		status                              string
		total, shipTotal, shipTax, totalTax pgtype.Text
		billing                             []byte
		createdAt, updatedAt                pgtype.Timestamptz
	)
	err := row.Scan(&o.ID, &o.Key, &o.Number, &o.Currency, &status,
		&total, &shipTotal, &shipTax, &totalTax,
		&billing, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	o.CreatedAt = pgtypeToTime(createdAt)
	o.UpdatedAt = pgtypeToTime(updatedAt)

	for _, n := range []struct {
		src pgtype.Text
		dst *decimal.Decimal
	}{
		{total, &o.Total},
		{shipTotal, &o.ShippingTotal},
		{shipTax, &o.ShippingTax},
		{totalTax, &o.TotalTax},
	} {
		if *n.dst, err = textToDecimal(n.src); err != nil {
			return nil, err
		}
	}

	if o.Billing, err = jsonToBilling(billing); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) loadMeta(ctx context.Context, id int64) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT meta_key, meta_value FROM order_meta WHERE order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan order meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (r *OrderRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertNote(ctx context.Context, db DBTX, id int64, note string) error {
	_, err := db.Exec(ctx, `INSERT INTO order_notes (order_id, content) VALUES ($1, $2)`, id, note)
	if err != nil {
		return fmt.Errorf("failed to add order note: %w", err)
	}
	return nil
}
