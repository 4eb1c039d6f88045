package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
)

type StockRepository struct {
	db *sql.DB
}

func NewStockRepository(conn *Connection) *StockRepository {
	return &StockRepository{
		db: conn.GetDB(),
	}
}

func (r *StockRepository) GetProductWithStockItem(ctx context.Context, barcode string) (*inventory.Product, error) {
	query := `
		SELECT product_id, barcode, name, sales_price
		FROM stock_items
		WHERE barcode = $1
	`

	var p inventory.Product
	err := r.db.QueryRowContext(ctx, query, barcode).Scan(&p.ID, &p.Barcode, &p.Name, &p.SalesPrice)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrNoSuchProduct
		}
		return nil, err
	}

	return &p, nil
}

func (r *StockRepository) AvailableStock(ctx context.Context, productIDs []int) ([]inventory.ProductAmount, error) {
	query := `
		SELECT product_id, amount
		FROM stock_items
		WHERE product_id = ANY($1)
		ORDER BY product_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var available []inventory.ProductAmount
	for rows.Next() {
		var pa inventory.ProductAmount
		if err := rows.Scan(&pa.ProductID, &pa.Amount); err != nil {
			return nil, err
		}
		available = append(available, pa)
	}

	return available, rows.Err()
}

func (r *StockRepository) LowStockItems(ctx context.Context) ([]inventory.StockItem, error) {
	query := `
		SELECT product_id, barcode, name, sales_price, amount, min_stock, max_stock, incoming
		FROM stock_items
		WHERE amount + incoming < min_stock
		ORDER BY product_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []inventory.StockItem
	for rows.Next() {
		var item inventory.StockItem
		err := rows.Scan(
			&item.ID, &item.Barcode, &item.Name, &item.SalesPrice,
			&item.Amount, &item.MinStock, &item.MaxStock, &item.Incoming,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// AccountSale decrements stock one unit per sold line item, flooring at
// zero. Stock bookkeeping must never block a completed sale.
func (r *StockRepository) AccountSale(ctx context.Context, lines []events.SaleLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE stock_items
		SET amount = GREATEST(amount - 1, 0)
		WHERE product_id = $1
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, query, line.ProductID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	monitoring.SalesAccountedTotal.Inc()
	return nil
}

// ReserveForTransfer decrements available amounts for all items inside one
// transaction. If any product is short at call time the whole reservation
// fails with ErrProductNotAvailable.
func (r *StockRepository) ReserveForTransfer(ctx context.Context, items []inventory.ProductAmount) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		var amount int
		err := tx.QueryRowContext(ctx,
			`SELECT amount FROM stock_items WHERE product_id = $1 FOR UPDATE`,
			item.ProductID,
		).Scan(&amount)
		if err != nil {
			if err == sql.ErrNoRows {
				return domainErrors.ErrProductNotAvailable
			}
			return err
		}
		if amount < item.Amount {
			return domainErrors.ErrProductNotAvailable
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE stock_items SET amount = amount - $2 WHERE product_id = $1`,
			item.ProductID, item.Amount,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *StockRepository) AddIncoming(ctx context.Context, items []inventory.ProductAmount) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE stock_items
		SET incoming = incoming + $2
		WHERE product_id = $1
	`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query, item.ProductID, item.Amount); err != nil {
			return err
		}
	}

	return tx.Commit()
}
