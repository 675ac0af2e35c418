package jsonstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/apperr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestInitCreatesSeedDocument(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, doc.Customers)
	assert.Empty(t, doc.Orders)
	require.Len(t, doc.Products, 3)
	assert.Equal(t, int64(1), doc.Products[0].ID)
	assert.Equal(t, 5, doc.Products[0].Stock)
	assert.True(t, doc.Products[0].Price.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, 10, doc.Configuration.WelcomeDiscount)
	assert.Equal(t, "WELCOME10", doc.Configuration.DiscountCode)
}

func TestInitKeepsExistingDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(d *Document) error {
		d.Products[0].Stock = 1
		return nil
	}))

	again := New(s.Path())
	require.NoError(t, again.Init(ctx))
	doc, err := again.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Products[0].Stock)
}

func TestFileUsesTopLevelKeys(t *testing.T) {
	s := newTestStore(t)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	for _, key := range []string{`"customers"`, `"products"`, `"orders"`, `"configuration"`} {
		assert.Contains(t, string(data), key)
	}
	assert.Contains(t, string(data), `"preco": 2500`)
}

func TestLoadMissingOrCorruptFile(t *testing.T) {
	ctx := context.Background()

	missing := New(filepath.Join(t.TempDir(), "nope.json"))
	_, err := missing.Load(ctx)
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)

	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = New(path).Load(ctx)
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestUpdateDiscardsChangesOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	errReject := errors.New("reject")

	err := s.Update(ctx, func(d *Document) error {
		d.Products[0].Stock = 0
		d.Orders = append(d.Orders, Order{ID: 1})
		return errReject
	})
	require.ErrorIs(t, err, errReject)

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Products[0].Stock)
	assert.Empty(t, doc.Orders)
}

func TestConcurrentUpdatesAreSerialised(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(ctx, func(d *Document) error {
				d.Customers = append(d.Customers, Customer{ID: s.NextID()})
				return nil
			}))
		}()
	}
	wg.Wait()

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Customers, writers)
}

func TestNextIDStrictlyIncreases(t *testing.T) {
	s := New("unused")
	prev := s.NextID()
	for i := 0; i < 1000; i++ {
		id := s.NextID()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestCanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
