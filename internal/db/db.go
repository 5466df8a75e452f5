package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Store wraps the database handle. It is constructed once in main and
// injected into every component that needs persistence; nothing in this
// package keeps package-level connection state.
type Store struct {
	db *sql.DB
}

// Connect opens the database, verifies the connection and brings the schema
// up to date. The returned Store is safe for concurrent use.
func Connect(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	handle, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	handle.SetMaxOpenConns(50)
	handle.SetMaxIdleConns(20)
	handle.SetConnMaxLifetime(5 * time.Minute)

	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("error verifying database connection: %w", err)
	}
	log.Println("Connected to the database.")

	s := &Store{db: handle}
	if err := s.initSchema(); err != nil {
		handle.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
		log.Println("Database connection closed.")
	}
}

// initSchema creates tables, applies idempotent migrations and creates
// indexes. Every statement here must be safe to re-run on startup.
func (s *Store) initSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting table creation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            phone TEXT,
            address TEXT,
            is_admin BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            brand TEXT NOT NULL,
            price FLOAT NOT NULL,
            description TEXT,
            image_url TEXT,
            images TEXT[],
            stock INTEGER DEFAULT 0,
            category TEXT,
            featured BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id TEXT REFERENCES users(id),
            items JSONB NOT NULL,
            total FLOAT NOT NULL,
            status TEXT NOT NULL,
            name TEXT,
            phone TEXT,
            address TEXT,
            payment_url TEXT,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS conversations (
            id TEXT PRIMARY KEY,
            user_id TEXT REFERENCES users(id) UNIQUE NOT NULL,
            customer_name TEXT,
            customer_phone TEXT,
            last_message TEXT DEFAULT '',
            unread_by_admin BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS chat_messages (
            id BIGSERIAL PRIMARY KEY,
            conversation_id TEXT REFERENCES conversations(id) NOT NULL,
            sender TEXT NOT NULL CHECK (sender IN ('customer', 'admin')),
            body TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT NOW()
        );
    `
	_, err = tx.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing table creation: %w", err)
	}
	log.Println("Table creation (if not exists) finished.")

	if err = s.migrateSchema(); err != nil {
		return fmt.Errorf("error running schema migrations: %w", err)
	}

	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
        CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
        CREATE INDEX IF NOT EXISTS idx_products_featured ON products(featured);
        CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);
        CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
        CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
        CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
        CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation_id ON chat_messages(conversation_id, id);
    `
	for _, stmt := range strings.Split(strings.TrimSpace(createIndexesSQL), ";") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if _, errIdx := s.db.Exec(trimmed); errIdx != nil {
			log.Printf("Warning: error creating index ('%s'): %v", trimmed, errIdx)
		}
	}
	log.Println("Index creation (if not exists) finished.")

	log.Println("Database initialization finished.")
	return nil
}

// migrateSchema applies column-level migrations for tables that predate the
// current CREATE TABLE statements. Each entry must be idempotent.
func (s *Store) migrateSchema() error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "products.images",
			sql:  `ALTER TABLE products ADD COLUMN IF NOT EXISTS images TEXT[];`,
		},
		{
			name: "orders.payment_url",
			sql:  `ALTER TABLE orders ADD COLUMN IF NOT EXISTS payment_url TEXT;`,
		},
		{
			name: "conversations.unread_by_admin",
			sql:  `ALTER TABLE conversations ADD COLUMN IF NOT EXISTS unread_by_admin BOOLEAN DEFAULT FALSE;`,
		},
		{
			name: "users.address",
			sql:  `ALTER TABLE users ADD COLUMN IF NOT EXISTS address TEXT;`,
		},
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration.sql); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: migration '%s' skipped (object already exists). Details: %v", migration.name, err)
				continue
			}
			return fmt.Errorf("schema migration ('%s') failed: %w", migration.name, err)
		}
	}

	log.Println("Schema migrations applied (or not required).")
	return nil
}
