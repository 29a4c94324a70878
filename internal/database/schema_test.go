package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_customers_table.sql",
		"00002_create_products_table.sql",
		"00003_create_product_units_table.sql",
		"00004_create_debt_records_table.sql",
		"00005_create_debt_items_table.sql",
		"00006_create_payment_entries_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		sqlFileCount++

		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing goose Up section", file.Name())
		}
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing goose Down section", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"customers":       "00001_create_customers_table.sql",
		"products":        "00002_create_products_table.sql",
		"product_units":   "00003_create_product_units_table.sql",
		"debt_records":    "00004_create_debt_records_table.sql",
		"debt_items":      "00005_create_debt_items_table.sql",
		"payment_entries": "00006_create_payment_entries_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		// Check if migration creates the table
		createTableStmt := "CREATE TABLE IF NOT EXISTS " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		// Check if migration has drop table in down section
		dropTableStmt := "DROP TABLE IF EXISTS " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestDebtRecordsTableHasRequiredColumns(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00004_create_debt_records_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read debt records migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"customer_id UUID",
		"total_amount DECIMAL",
		"amount_paid DECIMAL",
		"status VARCHAR",
		"debt_date TIMESTAMP",
		"due_date TIMESTAMP",
		"created_at TIMESTAMP",
		"updated_at TIMESTAMP",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Debt records table missing required column definition: %s", column)
		}
	}

	// The status check constraint names all three states
	for _, status := range []string{"'UNPAID'", "'PARTIALLY_PAID'", "'PAID'"} {
		if !strings.Contains(contentStr, status) {
			t.Errorf("Status constraint missing %s", status)
		}
	}
}

func TestDebtItemsCarryNoProductForeignKey(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00005_create_debt_items_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read debt items migration: %v", err)
	}

	contentStr := string(content)

	// Items are snapshots: the record FK cascades, but nothing references the
	// products table
	if strings.Contains(contentStr, "REFERENCES products") {
		t.Error("Debt items must not reference the products table")
	}
	if !strings.Contains(contentStr, "REFERENCES debt_records(id) ON DELETE CASCADE") {
		t.Error("Debt items must cascade from their record")
	}
	for _, column := range []string{"product_name VARCHAR", "unit_label VARCHAR", "unit_price DECIMAL", "line_total DECIMAL"} {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Debt items table missing snapshot column: %s", column)
		}
	}
}
