package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "data", "icepay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestNewSQLiteStorage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "icepay.db")

	s, err := NewSQLiteStorage(context.Background(), dbPath)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, dbPath, s.path)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSQLiteStorage_OrderHistory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.RecordPayment(ctx, PaymentRecord{
		RequestID: "req-1",
		OrderID:   "ORD-1",
		Method:    "ideal",
		Amount:    1234,
		Error:     "gateway error: timeout",
	}))
	require.NoError(t, s.RecordPayment(ctx, PaymentRecord{
		OrderID:     "ORD-1",
		Method:      "ideal",
		Amount:      1234,
		RedirectURL: "https://pay.icepay.eu/checkout/abc",
	}))
	require.NoError(t, s.RecordPostback(ctx, PostbackRecord{
		OrderID:  "ORD-1",
		Status:   "OK",
		Amount:   "1234",
		Currency: "EUR",
		ClientIP: "194.30.175.10",
		Accepted: true,
	}))
	require.NoError(t, s.RecordPayment(ctx, PaymentRecord{OrderID: "ORD-2", Method: "paypal", Amount: 500}))

	history, err := s.OrderHistory(ctx, "ORD-1")
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", history.OrderID)
	require.Len(t, history.Payments, 2)
	assert.Equal(t, "req-1", history.Payments[0].RequestID)
	assert.Equal(t, "gateway error: timeout", history.Payments[0].Error)
	assert.Equal(t, "https://pay.icepay.eu/checkout/abc", history.Payments[1].RedirectURL)
	assert.False(t, history.Payments[0].CreatedAt.IsZero())

	require.Len(t, history.Postbacks, 1)
	assert.True(t, history.Postbacks[0].Accepted)
	assert.Equal(t, "194.30.175.10", history.Postbacks[0].ClientIP)
}

func TestSQLiteStorage_OrderHistory_NotFound(t *testing.T) {
	s := newTestStorage(t)

	history, err := s.OrderHistory(context.Background(), "missing")

	assert.Nil(t, history)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSQLiteStorage_ConcurrentWrites(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.RecordPayment(ctx, PaymentRecord{OrderID: "ORD-C", Method: "ideal", Amount: int64(i + 1)}))
		}(i)
	}
	wg.Wait()

	history, err := s.OrderHistory(ctx, "ORD-C")
	require.NoError(t, err)
	assert.Len(t, history.Payments, 20)
}

func TestRetryOperation(t *testing.T) {
	s := &SQLiteStorage{}
	ctx := context.Background()

	t.Run("retries_busy", func(t *testing.T) {
		calls := 0
		err := s.retryOperation(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives_up", func(t *testing.T) {
		calls := 0
		err := s.retryOperation(ctx, func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		assert.Error(t, err)
		assert.Equal(t, maxRetries+1, calls)
	})

	t.Run("other_errors_not_retried", func(t *testing.T) {
		calls := 0
		err := s.retryOperation(ctx, func() error {
			calls++
			return fmt.Errorf("constraint failed")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestSQLiteStorage_Check(t *testing.T) {
	s := newTestStorage(t)

	assert.Equal(t, "sqlite", s.Name())
	assert.NoError(t, s.Check(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Check(context.Background()))
}
