package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDatabase opens the SQLite database at the given path.
func InitDatabase(path string) error {
	var err error
	DB, err = sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}

	// Test the connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	// Concurrent writers from the scrape pool share one connection pool;
	// sqlite serializes writes, so keep contention visible but bounded.
	if _, err := DB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %v", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables() error {
	return CreateTablesOn(DB)
}

// CreateTablesOn applies the schema to the given database handle.
func CreateTablesOn(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS Store (
			store_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			country TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS ProductType (
			product_type_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS PriceSample (
			sample_id INTEGER PRIMARY KEY AUTOINCREMENT,
			store_id INTEGER NOT NULL,
			product_type_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			variant TEXT CHECK(variant IN ('cheapest', 'most_expensive')) NOT NULL,
			full_name TEXT,
			full_price_string TEXT,
			price_number REAL NOT NULL,
			price_currency TEXT,
			package_size_string TEXT,
			package_size_number REAL,
			package_unit TEXT,
			price_per_unit_string TEXT,
			price_per_unit_number REAL,
			inflation_rate REAL,
			FOREIGN KEY (store_id) REFERENCES Store(store_id),
			FOREIGN KEY (product_type_id) REFERENCES ProductType(product_type_id),
			UNIQUE(store_id, product_type_id, date, variant)
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
