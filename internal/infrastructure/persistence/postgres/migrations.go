package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/yuzvak/retail-coordination-service/internal/config"
)

var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "001_create_stock_items",
		sql: `
			CREATE TABLE IF NOT EXISTS stock_items (
				product_id  INTEGER PRIMARY KEY,
				barcode     VARCHAR(64) NOT NULL UNIQUE,
				name        VARCHAR(255) NOT NULL,
				sales_price NUMERIC(12,2) NOT NULL,
				amount      INTEGER NOT NULL DEFAULT 0,
				min_stock   INTEGER NOT NULL DEFAULT 0,
				max_stock   INTEGER NOT NULL DEFAULT 0,
				incoming    INTEGER NOT NULL DEFAULT 0
			)
		`,
	},
	{
		name: "002_index_stock_items_barcode",
		sql:  `CREATE INDEX IF NOT EXISTS idx_stock_items_barcode ON stock_items (barcode)`,
	},
}

func RunMigrations(cfg config.DatabaseConfig) error {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %v", err)
	}

	for _, m := range migrations {
		var applied bool
		err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM migrations WHERE name = $1)`, m.name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %v", m.name, err)
		}
		if applied {
			continue
		}

		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %v", m.name, err)
		}
		if _, err := db.Exec(`INSERT INTO migrations (name) VALUES ($1)`, m.name); err != nil {
			return fmt.Errorf("failed to record migration %s: %v", m.name, err)
		}
	}

	return nil
}
