package cart_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/linemk/restaurant-orders/internal/cart"
	"github.com/linemk/restaurant-orders/internal/domain/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession — сессия в памяти, считает пометки об изменении.
type fakeSession struct {
	values   map[string][]byte
	modified int
}

func newFakeSession() *fakeSession {
	return &fakeSession{values: make(map[string][]byte)}
}

func (s *fakeSession) Get(key string) ([]byte, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *fakeSession) Set(key string, value []byte) { s.values[key] = value }
func (s *fakeSession) Delete(key string)             { delete(s.values, key) }
func (s *fakeSession) MarkModified()                 { s.modified++ }

// fakeCatalog — каталог блюд по идентификатору.
type fakeCatalog struct {
	items map[int64]*models.MenuItem
	err   error
	calls int
}

func newFakeCatalog(items ...*models.MenuItem) *fakeCatalog {
	c := &fakeCatalog{items: make(map[int64]*models.MenuItem)}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *fakeCatalog) GetByIDs(ctx context.Context, ids []int64) ([]*models.MenuItem, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	var res []*models.MenuItem
	for _, id := range ids {
		if it, ok := c.items[id]; ok {
			res = append(res, it)
		}
	}
	return res, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew_EmptySessionCreatesCart(t *testing.T) {
	sess := newFakeSession()
	c := cart.New(sess, "", newFakeCatalog())

	assert.Equal(t, 0, c.LineCount())
	_, ok := sess.values[cart.DefaultSessionKey]
	assert.True(t, ok, "empty cart should be written to the session")
	assert.Equal(t, 1, sess.modified)
}

func TestNew_RestoresFromSession(t *testing.T) {
	sess := newFakeSession()
	first := cart.New(sess, "cart", newFakeCatalog())
	first.Add(1, price("4.50"), 2, false)

	second := cart.New(sess, "cart", newFakeCatalog())
	line, ok := second.Line(1)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, price("4.50").Equal(line.UnitPrice))
}

func TestNew_CorruptSessionValue(t *testing.T) {
	sess := newFakeSession()
	sess.values["cart"] = []byte("not json")

	c := cart.New(sess, "cart", newFakeCatalog())
	assert.Equal(t, 0, c.LineCount())

	var stored map[string]any
	require.NoError(t, json.Unmarshal(sess.values["cart"], &stored))
	assert.Empty(t, stored)
}

func TestAdd_AccumulatesQuantity(t *testing.T) {
	c := cart.New(newFakeSession(), "cart", newFakeCatalog())

	c.Add(7, price("3.00"), 2, false)
	c.Add(7, price("3.00"), 3, false)

	line, ok := c.Line(7)
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
}

func TestAdd_OverrideReplacesQuantity(t *testing.T) {
	c := cart.New(newFakeSession(), "cart", newFakeCatalog())

	c.Add(7, price("3.00"), 2, false)
	c.Add(7, price("3.00"), 3, true)

	line, ok := c.Line(7)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
}

func TestAdd_KeepsFirstPrice(t *testing.T) {
	c := cart.New(newFakeSession(), "cart", newFakeCatalog())

	c.Add(1, price("10.00"), 1, false)
	c.Add(1, price("12.50"), 2, false)

	line, _ := c.Line(1)
	assert.True(t, price("10.00").Equal(line.UnitPrice), "price snapshot is taken on first add")
	assert.True(t, price("30.00").Equal(c.TotalPrice()))
}

func TestAdd_MarksSessionModified(t *testing.T) {
	sess := newFakeSession()
	c := cart.New(sess, "cart", newFakeCatalog())
	before := sess.modified

	c.Add(1, price("1.00"), 1, false)
	assert.Equal(t, before+1, sess.modified)

	var stored map[string]cart.Line
	require.NoError(t, json.Unmarshal(sess.values["cart"], &stored))
	assert.Equal(t, 1, stored["1"].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	c := cart.New(newFakeSession(), "cart", newFakeCatalog())
	c.Add(1, price("2.00"), 1, false)

	c.UpdateQuantity(1, 4)
	line, _ := c.Line(1)
	assert.Equal(t, 4, line.Quantity)

	c.UpdateQuantity(1, 0)
	_, ok := c.Line(1)
	assert.False(t, ok, "zero quantity removes the line")

	c.Add(2, price("2.00"), 1, false)
	c.UpdateQuantity(2, -3)
	_, ok = c.Line(2)
	assert.False(t, ok, "negative quantity removes the line")
}

func TestUpdateQuantity_MissingIsNoop(t *testing.T) {
	sess := newFakeSession()
	c := cart.New(sess, "cart", newFakeCatalog())
	before := sess.modified

	c.UpdateQuantity(42, 3)
	assert.Equal(t, 0, c.LineCount())
	assert.Equal(t, before, sess.modified)
}

func TestRemove(t *testing.T) {
	sess := newFakeSession()
	c := cart.New(sess, "cart", newFakeCatalog())
	c.Add(1, price("2.00"), 1, false)
	c.Add(2, price("3.00"), 1, false)

	c.Remove(1)
	assert.Equal(t, 1, c.LineCount())

	before := sess.modified
	c.Remove(1)
	assert.Equal(t, before, sess.modified, "removing a missing line is a no-op")
}

func TestClear(t *testing.T) {
	sess := newFakeSession()
	c := cart.New(sess, "cart", newFakeCatalog())
	c.Add(1, price("2.00"), 3, false)
	c.Add(2, price("5.00"), 1, false)

	c.Clear()

	assert.Equal(t, 0, c.LineCount())
	assert.Equal(t, 0, c.TotalCount())
	assert.True(t, decimal.Zero.Equal(c.TotalPrice()))
	_, ok := sess.values["cart"]
	assert.False(t, ok, "cart key should be removed from the session")
}

func TestCounts(t *testing.T) {
	c := cart.New(newFakeSession(), "cart", newFakeCatalog())
	c.Add(1, price("2.00"), 3, false)
	c.Add(2, price("5.00"), 1, false)

	assert.Equal(t, 4, c.TotalCount())
	assert.Equal(t, 2, c.LineCount())
}

func TestTotalPrice_UsesSnapshotAfterMutations(t *testing.T) {
	c := cart.New(newFakeSession(), "cart", newFakeCatalog())
	c.Add(1, price("2.25"), 2, false)
	c.Add(2, price("9.99"), 1, false)
	c.Add(3, price("1.00"), 5, false)
	c.UpdateQuantity(2, 3)
	c.Remove(3)
	c.Add(1, price("100.00"), 1, false)

	// 2.25*3 + 9.99*3
	assert.Equal(t, "36.72", c.TotalPrice().StringFixed(2))
}

func TestItems(t *testing.T) {
	catalog := newFakeCatalog(
		&models.MenuItem{ID: 1, Name: "Pilau", Price: price("8.00")},
		&models.MenuItem{ID: 2, Name: "Chapati", Price: price("1.00")},
	)
	c := cart.New(newFakeSession(), "cart", catalog)
	c.Add(2, price("0.80"), 4, false)
	c.Add(1, price("7.50"), 2, false)

	var items []cart.Item
	for item, err := range c.Items(context.Background()) {
		require.NoError(t, err)
		items = append(items, item)
	}

	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, "Pilau", items[0].MenuItem.Name)
	assert.Equal(t, "15.00", items[0].LineTotal.StringFixed(2), "line total uses the snapshot, not the catalog price")
	assert.Equal(t, int64(2), items[1].ProductID)
	assert.Equal(t, "3.20", items[1].LineTotal.StringFixed(2))
}

func TestItems_SkipsDeletedProducts(t *testing.T) {
	catalog := newFakeCatalog(&models.MenuItem{ID: 1, Name: "Pilau"})
	c := cart.New(newFakeSession(), "cart", catalog)
	c.Add(1, price("7.50"), 1, false)
	c.Add(99, price("3.00"), 1, false)

	count := 0
	for item, err := range c.Items(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, int64(1), item.ProductID)
		count++
	}
	assert.Equal(t, 1, count)
}

func TestItems_RemovedLineNotYielded(t *testing.T) {
	catalog := newFakeCatalog(&models.MenuItem{ID: 1}, &models.MenuItem{ID: 2})
	c := cart.New(newFakeSession(), "cart", catalog)
	c.Add(1, price("1.00"), 1, false)
	c.Add(2, price("1.00"), 1, false)

	c.UpdateQuantity(1, 0)

	for item, err := range c.Items(context.Background()) {
		require.NoError(t, err)
		assert.NotEqual(t, int64(1), item.ProductID)
	}
}

func TestItems_Restartable(t *testing.T) {
	catalog := newFakeCatalog(&models.MenuItem{ID: 1})
	c := cart.New(newFakeSession(), "cart", catalog)
	c.Add(1, price("1.00"), 1, false)

	seq := c.Items(context.Background())
	for range 2 {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, 2, catalog.calls, "catalog is queried on every pass")
}

func TestItems_CatalogError(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.err = assert.AnError
	c := cart.New(newFakeSession(), "cart", catalog)
	c.Add(1, price("1.00"), 1, false)

	var errs []error
	for _, err := range c.Items(context.Background()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], assert.AnError)
}

func TestItems_EmptyCartSkipsCatalog(t *testing.T) {
	catalog := newFakeCatalog()
	c := cart.New(newFakeSession(), "cart", catalog)

	for range c.Items(context.Background()) {
		t.Fatal("empty cart should yield nothing")
	}
	assert.Equal(t, 0, catalog.calls)
}
