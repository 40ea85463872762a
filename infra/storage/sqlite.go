package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// PaymentRecord is one payment initiation attempt
type PaymentRecord struct {
	ID          int64     `json:"id"`
	RequestID   string    `json:"requestId,omitempty"`
	OrderID     string    `json:"orderId"`
	Method      string    `json:"method"`
	Amount      int64     `json:"amount"`
	RedirectURL string    `json:"redirectUrl,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PostbackRecord is one postback received from the gateway, accepted or not
type PostbackRecord struct {
	ID            int64     `json:"id"`
	OrderID       string    `json:"orderId"`
	PaymentID     string    `json:"paymentId,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	Status        string    `json:"status"`
	StatusCode    string    `json:"statusCode,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	ClientIP      string    `json:"clientIp,omitempty"`
	Accepted      bool      `json:"accepted"`
	Error         string    `json:"error,omitempty"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

// OrderHistory is everything recorded for one order
type OrderHistory struct {
	OrderID   string           `json:"orderId"`
	Payments  []PaymentRecord  `json:"payments"`
	Postbacks []PostbackRecord `json:"postbacks"`
}

// SQLiteStorage keeps the transaction log in a SQLite database
type SQLiteStorage struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

const maxRetries = 3

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStorage) retryOperation(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}

		lastErr = err
		if attempt == maxRetries {
			break
		}

		// 10ms, 20ms, 40ms
		backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// NewSQLiteStorage opens (and creates if needed) the transaction log at dbPath
func NewSQLiteStorage(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	storage := &SQLiteStorage{
		db:   db,
		path: dbPath,
	}

	if err := storage.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("SQLite transaction log initialized at: %s", dbPath)
	return storage, nil
}

func (s *SQLiteStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL DEFAULT '',
		order_id TEXT NOT NULL,
		method TEXT NOT NULL,
		amount INTEGER NOT NULL,
		redirect_url TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id);

	CREATE TABLE IF NOT EXISTS postbacks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL,
		payment_id TEXT NOT NULL DEFAULT '',
		transaction_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		status_code TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT '',
		client_ip TEXT NOT NULL DEFAULT '',
		accepted INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		received_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_postbacks_order ON postbacks(order_id);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// RecordPayment stores a payment initiation attempt
func (s *SQLiteStorage) RecordPayment(ctx context.Context, rec PaymentRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (request_id, order_id, method, amount, redirect_url, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.RequestID, rec.OrderID, rec.Method, rec.Amount, rec.RedirectURL, rec.Error, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
}

// RecordPostback stores a received postback
func (s *SQLiteStorage) RecordPostback(ctx context.Context, rec PostbackRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
		INSERT INTO postbacks (order_id, payment_id, transaction_id, status, status_code, amount, currency, client_ip, accepted, error, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.OrderID, rec.PaymentID, rec.TransactionID, rec.Status, rec.StatusCode,
			rec.Amount, rec.Currency, rec.ClientIP, rec.Accepted, rec.Error, rec.ReceivedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record postback: %w", err)
		}
		return nil
	})
}

// ErrOrderNotFound is returned when nothing was recorded for an order
var ErrOrderNotFound = errors.New("order not found")

// OrderHistory returns the payment attempts and postbacks of an order, oldest first
func (s *SQLiteStorage) OrderHistory(ctx context.Context, orderID string) (*OrderHistory, error) {
	history := &OrderHistory{
		OrderID:   orderID,
		Payments:  []PaymentRecord{},
		Postbacks: []PostbackRecord{},
	}

	err := s.retryOperation(ctx, func() error {
		history.Payments = history.Payments[:0]
		history.Postbacks = history.Postbacks[:0]

		rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, order_id, method, amount, redirect_url, error, created_at
		FROM payments WHERE order_id = ? ORDER BY id`, orderID)
		if err != nil {
			return fmt.Errorf("failed to query payments: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var rec PaymentRecord
			if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.OrderID, &rec.Method, &rec.Amount, &rec.RedirectURL, &rec.Error, &rec.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan payment: %w", err)
			}
			history.Payments = append(history.Payments, rec)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating payments: %w", err)
		}

		pbRows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, payment_id, transaction_id, status, status_code, amount, currency, client_ip, accepted, error, received_at
		FROM postbacks WHERE order_id = ? ORDER BY id`, orderID)
		if err != nil {
			return fmt.Errorf("failed to query postbacks: %w", err)
		}
		defer pbRows.Close()

		for pbRows.Next() {
			var rec PostbackRecord
			if err := pbRows.Scan(&rec.ID, &rec.OrderID, &rec.PaymentID, &rec.TransactionID, &rec.Status, &rec.StatusCode,
				&rec.Amount, &rec.Currency, &rec.ClientIP, &rec.Accepted, &rec.Error, &rec.ReceivedAt); err != nil {
				return fmt.Errorf("failed to scan postback: %w", err)
			}
			history.Postbacks = append(history.Postbacks, rec)
		}
		return pbRows.Err()
	})
	if err != nil {
		return nil, err
	}

	if len(history.Payments) == 0 && len(history.Postbacks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	return history, nil
}

// Ping checks the database connection
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStorage) Name() string {
	return "sqlite"
}

// Check reports whether the database is reachable
func (s *SQLiteStorage) Check(ctx context.Context) error {
	return s.Ping(ctx)
}
