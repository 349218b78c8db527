package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	mu      sync.Mutex
	puts    []models.CartItem
	deletes []string
	clears  int
	err     error
}

func (f *fakeSyncer) PutCartItem(_ context.Context, item models.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, item)
	return f.err
}

func (f *fakeSyncer) DeleteCartItem(_ context.Context, variantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, variantID)
	return f.err
}

func (f *fakeSyncer) ClearCart(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	return f.err
}

func item(variant, price string, qty, stock int) models.CartItem {
	return models.CartItem{
		ProductID:   "p-" + variant,
		VariantID:   variant,
		ProductName: "Product " + variant,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
		Stock:       stock,
	}
}

func newGuest(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	s, err := LoadGuest(context.Background(), mem, WithClock(fixedClock))
	require.NoError(t, err)
	return s, mem
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestStore_SubtotalScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newGuest(t)

	require.NoError(t, s.AddItem(ctx, item("V1", "29.99", 2, 0)))
	require.NoError(t, s.AddItem(ctx, item("V2", "51.98", 1, 0)))

	assert.True(t, decimal.RequireFromString("111.96").Equal(s.TotalPrice()), "got %s", s.TotalPrice())
	assert.Equal(t, 3, s.TotalItems())
}

func TestStore_AddItemIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	s, _ := newGuest(t)

	require.NoError(t, s.AddItem(ctx, item("V1", "10", 1, 0)))
	require.NoError(t, s.AddItem(ctx, item("V2", "5", 1, 0)))
	require.NoError(t, s.AddItem(ctx, item("V1", "10", 2, 0)))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "V1", items[0].VariantID, "insertion order is display order")
	assert.Equal(t, 3, items[0].Quantity)
}

func TestStore_AddItemCapsAtStock(t *testing.T) {
	ctx := context.Background()
	s, _ := newGuest(t)

	require.NoError(t, s.AddItem(ctx, item("V1", "10", 7, 5)))
	assert.Equal(t, 5, s.Items()[0].Quantity)

	require.NoError(t, s.AddItem(ctx, item("V1", "10", 3, 5)))
	assert.Equal(t, 5, s.Items()[0].Quantity)
}

func TestStore_UpdateQuantityClamps(t *testing.T) {
	ctx := context.Background()
	s, _ := newGuest(t)
	require.NoError(t, s.AddItem(ctx, item("V1", "10", 1, 4)))

	require.NoError(t, s.UpdateQuantity(ctx, "V1", 9))
	assert.Equal(t, 4, s.Items()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, "V1", 2))
	assert.Equal(t, 2, s.Items()[0].Quantity)

	err := s.UpdateQuantity(ctx, "nope", 2)
	assert.True(t, errors.Is(err, ErrUnknownVariant))
}

func TestStore_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	a, _ := newGuest(t)
	b, _ := newGuest(t)
	for _, s := range []*Store{a, b} {
		require.NoError(t, s.AddItem(ctx, item("V1", "10", 2, 0)))
		require.NoError(t, s.AddItem(ctx, item("V2", "3.50", 1, 0)))
	}

	require.NoError(t, a.UpdateQuantity(ctx, "V1", 0))
	require.NoError(t, b.RemoveItem(ctx, "V1"))

	assert.Equal(t, a.Items(), b.Items())
	assert.True(t, a.TotalPrice().Equal(b.TotalPrice()))

	require.NoError(t, a.UpdateQuantity(ctx, "V2", -3))
	assert.Empty(t, a.Items())
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	s, _ := newGuest(t)
	require.NoError(t, s.RemoveItem(context.Background(), "ghost"))
	assert.Empty(t, s.Items())
}

// Random operation sequences keep subtotal == sum(price*qty) and never leave
// a line with a non-positive quantity.
func TestStore_SubtotalInvariantUnderRandomOps(t *testing.T) {
	ctx := context.Background()
	prices := []string{"0.99", "29.99", "51.98", "7.25", "100"}

	for seed := int64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s, _ := newGuest(t)

		for step := 0; step < 200; step++ {
			v := fmt.Sprintf("V%d", rng.Intn(len(prices)))
			price := prices[v[1]-'0']
			switch rng.Intn(3) {
			case 0:
				_ = s.AddItem(ctx, item(v, price, rng.Intn(4)+1, rng.Intn(6)))
			case 1:
				_ = s.UpdateQuantity(ctx, v, rng.Intn(8)-2)
			case 2:
				_ = s.RemoveItem(ctx, v)
			}

			want := decimal.Zero
			count := 0
			for _, it := range s.Items() {
				require.Greater(t, it.Quantity, 0, "seed %d step %d", seed, step)
				if it.Stock > 0 {
					require.LessOrEqual(t, it.Quantity, it.Stock)
				}
				want = want.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
				count += it.Quantity
			}
			require.True(t, want.Equal(s.TotalPrice()), "seed %d step %d: %s != %s", seed, step, want, s.TotalPrice())
			require.Equal(t, count, s.TotalItems())
		}
	}
}

func TestStore_GuestPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	s, mem := newGuest(t)
	require.NoError(t, s.AddItem(ctx, item("V1", "29.99", 2, 0)))
	require.NotEmpty(t, s.ID())

	reloaded, err := LoadGuest(ctx, mem)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), reloaded.ID())
	assert.Equal(t, s.Items()[0].VariantID, reloaded.Items()[0].VariantID)
	assert.True(t, s.TotalPrice().Equal(reloaded.TotalPrice()))
}

func TestStore_GuestDiscardsOtherFormatVersion(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, storage.KeyCart, `{"v":99,"data":{"items":[]}}`))

	s, err := LoadGuest(ctx, mem)
	require.NoError(t, err)
	assert.Empty(t, s.Items())
}

func TestStore_AuthenticatedSyncsEveryMutation(t *testing.T) {
	ctx := context.Background()
	syncer := &fakeSyncer{}
	s := NewAuthenticated(models.Cart{ID: "c1"}, syncer, nil)

	require.NoError(t, s.AddItem(ctx, item("V1", "10", 1, 0)))
	require.NoError(t, s.UpdateQuantity(ctx, "V1", 3))
	require.NoError(t, s.RemoveItem(ctx, "V1"))
	require.NoError(t, s.Clear(ctx))

	require.Len(t, syncer.puts, 2)
	assert.Equal(t, 3, syncer.puts[1].Quantity)
	assert.Equal(t, []string{"V1"}, syncer.deletes)
	assert.Equal(t, 1, syncer.clears)
}

func TestStore_SyncFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	s := NewAuthenticated(models.Cart{ID: "c1"}, &fakeSyncer{err: boom}, nil)

	err := s.AddItem(ctx, item("V1", "10", 2, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.TotalItems())
}

func TestStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s, _ := newGuest(t)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddItem(ctx, item("V1", "1", 1, 0))
		}()
	}
	wg.Wait()

	assert.Equal(t, n, s.TotalItems())
}
