package main

import (
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS companies (
	  name VARCHAR(140) NOT NULL,
	  abbr VARCHAR(10) NOT NULL,
	  default_currency CHAR(3) NOT NULL DEFAULT 'INR',
	  default_receivable_account VARCHAR(140),
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS customers (
	  name VARCHAR(140) NOT NULL,
	  customer_name VARCHAR(140) NOT NULL,
	  email VARCHAR(140),
	  mobile_no VARCHAR(20),
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS sales_invoices (
	  name VARCHAR(140) NOT NULL,
	  company VARCHAR(140) NOT NULL,
	  customer VARCHAR(140) NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'INR',
	  grand_total DECIMAL(18,2) NOT NULL,
	  outstanding_amount DECIMAL(18,2) NOT NULL,
	  status VARCHAR(20) NOT NULL DEFAULT 'draft',
	  payment_mobile_no VARCHAR(20),
	  payment_link_id VARCHAR(64),
	  payment_link_url VARCHAR(255),
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (name),
	  KEY ix_sales_invoices_company (company),
	  KEY ix_sales_invoices_customer (customer),
	  KEY ix_sales_invoices_payment_link_id (payment_link_id),
	  CONSTRAINT fk_sales_invoices_company FOREIGN KEY (company) REFERENCES companies(name) ON DELETE RESTRICT,
	  CONSTRAINT fk_sales_invoices_customer FOREIGN KEY (customer) REFERENCES customers(name) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS accounts (
	  name VARCHAR(140) NOT NULL,
	  account_name VARCHAR(140) NOT NULL,
	  company VARCHAR(140) NOT NULL,
	  account_type VARCHAR(32) NOT NULL,
	  parent_account VARCHAR(140),
	  is_group TINYINT(1) NOT NULL DEFAULT 0,
	  currency CHAR(3) NOT NULL DEFAULT 'INR',
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (name),
	  KEY ix_accounts_company (company),
	  CONSTRAINT fk_accounts_company FOREIGN KEY (company) REFERENCES companies(name) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS mode_of_payment_accounts (
	  id CHAR(36) NOT NULL,
	  mode_of_payment VARCHAR(64) NOT NULL,
	  company VARCHAR(140) NOT NULL,
	  default_account VARCHAR(140) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_mop_accounts_mode_company (mode_of_payment, company),
	  CONSTRAINT fk_mop_accounts_company FOREIGN KEY (company) REFERENCES companies(name) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS party_accounts (
	  id CHAR(36) NOT NULL,
	  party_type VARCHAR(32) NOT NULL,
	  party VARCHAR(140) NOT NULL,
	  company VARCHAR(140) NOT NULL,
	  account VARCHAR(140) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_party_accounts_party_company (party_type, party, company),
	  CONSTRAINT fk_party_accounts_company FOREIGN KEY (company) REFERENCES companies(name) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS payment_records (
	  id CHAR(36) NOT NULL,
	  reference_no VARCHAR(64) NOT NULL,
	  invoice_name VARCHAR(140) NOT NULL,
	  company VARCHAR(140) NOT NULL,
	  customer VARCHAR(140) NOT NULL,
	  mode_of_payment VARCHAR(64) NOT NULL,
	  paid_from_account VARCHAR(140) NOT NULL,
	  paid_to_account VARCHAR(140) NOT NULL,
	  currency CHAR(3) NOT NULL,
	  paid_amount DECIMAL(18,2) NOT NULL,
	  allocated_amount DECIMAL(18,2) NOT NULL,
	  posting_date DATE NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_payment_records_reference_no (reference_no),
	  KEY ix_payment_records_invoice (invoice_name),
	  CONSTRAINT fk_payment_records_invoice FOREIGN KEY (invoice_name) REFERENCES sales_invoices(name) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS webhook_event_logs (
	  id CHAR(36) NOT NULL,
	  event_type VARCHAR(64) NOT NULL,
	  txn_id VARCHAR(64) NOT NULL,
	  invoice_name VARCHAR(140),
	  payload_json JSON NOT NULL,
	  outcome VARCHAR(32) NOT NULL,
	  note VARCHAR(255),
	  received_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_webhook_event_logs_txn (txn_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("Tables created.")
}
