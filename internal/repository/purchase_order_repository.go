package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pispas/incident-service/internal/domain"
)

// OrderFilter captures listing parameters.
type OrderFilter struct {
	Status *domain.OrderStatus
}

// PurchaseOrderRepository encapsulates order and line persistence. InTx runs
// the given function against a repository bound to a single transaction, so
// the receiving read-modify-recompute sequence is isolated from concurrent
// receipts.
type PurchaseOrderRepository interface {
	InTx(ctx context.Context, fn func(PurchaseOrderRepository) error) error

	Create(ctx context.Context, order *domain.PurchaseOrder) error
	Update(ctx context.Context, order *domain.PurchaseOrder) error
	UpdateTotal(ctx context.Context, orderID string, total decimal.Decimal) error
	GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.PurchaseOrder, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	CreateLine(ctx context.Context, line *domain.PurchaseOrderLine) error
	UpdateLine(ctx context.Context, line *domain.PurchaseOrderLine) error
	DeleteLine(ctx context.Context, lineID string) error
	GetLine(ctx context.Context, lineID string) (*domain.PurchaseOrderLine, error)
	ListLines(ctx context.Context, orderID string) ([]domain.PurchaseOrderLine, error)
}

type purchaseOrderRepository struct {
	db   querier
	pool *pgxpool.Pool
}

// NewPurchaseOrderRepository instantiates repository.
func NewPurchaseOrderRepository(pool *pgxpool.Pool) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: pool, pool: pool}
}

// InTx runs fn against a transaction-bound repository. Nested calls reuse
// the surrounding transaction.
func (r *purchaseOrderRepository) InTx(ctx context.Context, fn func(PurchaseOrderRepository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(&purchaseOrderRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, numero, estado, notas, total, created_by,
               fecha_creacion, fecha_cursado, fecha_recibido, fecha_ultima_recepcion`

func (r *purchaseOrderRepository) Create(ctx context.Context, order *domain.PurchaseOrder) error {
	const query = `
        INSERT INTO purchase_orders (numero, estado, notas, total, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, fecha_creacion`
	return r.db.QueryRow(ctx, query,
		order.Number,
		order.Status,
		order.Notes,
		order.Total,
		order.CreatedBy,
	).Scan(&order.ID, &order.CreatedAt)
}

func (r *purchaseOrderRepository) Update(ctx context.Context, order *domain.PurchaseOrder) error {
	const query = `
        UPDATE purchase_orders SET estado=$1, notas=$2, total=$3, fecha_cursado=$4,
            fecha_recibido=$5, fecha_ultima_recepcion=$6
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		order.Status,
		order.Notes,
		order.Total,
		order.PlacedAt,
		order.ReceivedAt,
		order.LastReceiptAt,
		order.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepository) UpdateTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	cmd, err := r.db.Exec(ctx, `UPDATE purchase_orders SET total=$1 WHERE id=$2`, total, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepository) GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetForUpdate locks the order row for the remainder of the surrounding
// transaction, serializing concurrent receipts on the same order.
func (r *purchaseOrderRepository) GetForUpdate(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *purchaseOrderRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	if err := scanOrder(r.db.QueryRow(ctx, query, arg), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders`
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` WHERE estado=$1`
	}
	query += ` ORDER BY fecha_creacion DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PurchaseOrder
	for rows.Next() {
		var order domain.PurchaseOrder
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}

func (r *purchaseOrderRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM purchase_orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders`).Scan(&count)
	return count, err
}

const lineColumns = `id, purchase_order_id, pieza_id, codigo, nombre, unidad,
               cantidad, cantidad_recibida, pvp`

func (r *purchaseOrderRepository) CreateLine(ctx context.Context, line *domain.PurchaseOrderLine) error {
	const query = `
        INSERT INTO purchase_order_lines (purchase_order_id, pieza_id, codigo, nombre, unidad, cantidad, cantidad_recibida, pvp)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		line.PurchaseOrderID,
		line.PartID,
		line.Code,
		line.Name,
		line.Unit,
		line.Quantity,
		line.QuantityReceived,
		line.UnitPrice,
	).Scan(&line.ID)
}

func (r *purchaseOrderRepository) UpdateLine(ctx context.Context, line *domain.PurchaseOrderLine) error {
	const query = `
        UPDATE purchase_order_lines SET cantidad=$1, cantidad_recibida=$2, pvp=$3
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		line.Quantity,
		line.QuantityReceived,
		line.UnitPrice,
		line.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepository) DeleteLine(ctx context.Context, lineID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM purchase_order_lines WHERE id=$1`, lineID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepository) GetLine(ctx context.Context, lineID string) (*domain.PurchaseOrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM purchase_order_lines WHERE id=$1`
	var line domain.PurchaseOrderLine
	if err := scanLine(r.db.QueryRow(ctx, query, lineID), &line); err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *purchaseOrderRepository) ListLines(ctx context.Context, orderID string) ([]domain.PurchaseOrderLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchase_order_lines WHERE purchase_order_id=$1 ORDER BY id`, lineColumns)
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PurchaseOrderLine
	for rows.Next() {
		var line domain.PurchaseOrderLine
		if err := scanLine(rows, &line); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, rows.Err()
}

func scanOrder(row pgx.Row, order *domain.PurchaseOrder) error {
	return row.Scan(
		&order.ID,
		&order.Number,
		&order.Status,
		&order.Notes,
		&order.Total,
		&order.CreatedBy,
		&order.CreatedAt,
		&order.PlacedAt,
		&order.ReceivedAt,
		&order.LastReceiptAt,
	)
}

func scanLine(row pgx.Row, line *domain.PurchaseOrderLine) error {
	return row.Scan(
		&line.ID,
		&line.PurchaseOrderID,
		&line.PartID,
		&line.Code,
		&line.Name,
		&line.Unit,
		&line.Quantity,
		&line.QuantityReceived,
		&line.UnitPrice,
	)
}
