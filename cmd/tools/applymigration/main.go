package main

import (
	"log"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Adds the payment-link columns to an existing sales_invoices table.
// Safe to re-run: duplicate-column errors are ignored.
func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	addCol := func(sql string) {
		if err := db.Exec(sql).Error; err != nil {
			// Error 1060: duplicate column name
			if !strings.Contains(err.Error(), "Error 1060") {
				log.Fatalf("Failed: %v", err)
			}
		}
	}

	addCol(`ALTER TABLE sales_invoices ADD COLUMN payment_mobile_no VARCHAR(20) AFTER status`)
	addCol(`ALTER TABLE sales_invoices ADD COLUMN payment_link_id VARCHAR(64) AFTER payment_mobile_no`)
	addCol(`ALTER TABLE sales_invoices ADD COLUMN payment_link_url VARCHAR(255) AFTER payment_link_id`)

	if err := db.Exec(`CREATE INDEX ix_sales_invoices_payment_link_id ON sales_invoices (payment_link_id)`).Error; err != nil {
		// Error 1061: duplicate key name
		if !strings.Contains(err.Error(), "Error 1061") {
			log.Fatalf("Failed: %v", err)
		}
	}

	log.Println("Migration applied.")
}
