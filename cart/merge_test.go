package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_EmptyServerIsIdentity(t *testing.T) {
	guest := []models.CartItem{item("V1", "29.99", 2, 0), item("V2", "51.98", 1, 3)}

	got := Merge(guest, nil)
	assert.Equal(t, guest, got)
}

func TestMerge_OverlapSumsCappedAtStock(t *testing.T) {
	guest := []models.CartItem{item("V1", "10", 3, 5), item("V3", "2", 1, 0)}
	server := []models.CartItem{item("V1", "10", 4, 5), item("V2", "7", 1, 0)}

	got := Merge(guest, server)
	require.Len(t, got, 3)

	assert.Equal(t, "V1", got[0].VariantID)
	assert.Equal(t, 5, got[0].Quantity, "4+3 capped at stock 5")
	assert.Equal(t, "V2", got[1].VariantID)
	assert.Equal(t, "V3", got[2].VariantID, "guest-only lines are appended")
}

func TestMerge_OverlapWithoutStockSums(t *testing.T) {
	got := Merge(
		[]models.CartItem{item("V1", "10", 2, 0)},
		[]models.CartItem{item("V1", "10", 3, 0)},
	)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Quantity)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	server := []models.CartItem{item("V1", "10", 1, 0)}
	_ = Merge([]models.CartItem{item("V1", "10", 4, 0)}, server)
	assert.Equal(t, 1, server[0].Quantity)
}

func TestStore_MergeGuestCart(t *testing.T) {
	ctx := context.Background()
	s, mem := newGuest(t)
	require.NoError(t, s.AddItem(ctx, item("V1", "10", 2, 0)))
	require.NoError(t, s.AddItem(ctx, item("V2", "5", 1, 0)))

	syncer := &fakeSyncer{}
	server := models.Cart{ID: "server-1", Items: []models.CartItem{item("V1", "10", 1, 0), item("V9", "1", 1, 0)}}

	res, err := s.MergeGuestCart(ctx, server, syncer)
	require.NoError(t, err)
	assert.Equal(t, MergeSuccess, res.Status)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)

	assert.Equal(t, ModeAuthenticated, s.Mode())
	assert.Equal(t, "server-1", s.ID())
	assert.Equal(t, 5, s.TotalItems())
	require.Len(t, syncer.puts, 2)

	_, ok, _ := mem.Get(ctx, storage.KeyCart)
	assert.False(t, ok, "guest snapshot is cleared after merge")
	_, ok, _ = mem.Get(ctx, storage.KeyGuestCartID)
	assert.False(t, ok, "guest cart id is cleared after merge")

	// Later mutations go to the server, not to storage.
	require.NoError(t, s.AddItem(ctx, item("V2", "5", 1, 0)))
	assert.Equal(t, 0, mem.Len())
	assert.Len(t, syncer.puts, 3)
}

func TestStore_MergeEmptyGuestCart(t *testing.T) {
	s, _ := newGuest(t)
	res, err := s.MergeGuestCart(context.Background(), models.Cart{ID: "srv"}, &fakeSyncer{})
	require.NoError(t, err)
	assert.Equal(t, MergeGuestEmpty, res.Status)
}

func TestStore_MergeSyncFailureKeepsMergedState(t *testing.T) {
	ctx := context.Background()
	s, _ := newGuest(t)
	require.NoError(t, s.AddItem(ctx, item("V1", "10", 2, 0)))

	boom := errors.New("unavailable")
	res, err := s.MergeGuestCart(ctx, models.Cart{ID: "srv"}, &fakeSyncer{err: boom})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, MergeFailed, res.Status)
	assert.Equal(t, 2, s.TotalItems())
}

type fakeRemote struct {
	fakeSyncer
	cart  models.Cart
	loads int
}

func (f *fakeRemote) GetCart(context.Context) (models.Cart, error) {
	f.loads++
	return f.cart, nil
}

func TestManager_GuestIsCachedAndScoped(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	m := NewManager(mem, nil)

	a, err := m.Guest(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, a.AddItem(ctx, item("V1", "1", 1, 0)))

	again, err := m.Guest(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, ok, _ := mem.Get(ctx, "guest:a:"+storage.KeyCart)
	assert.True(t, ok)

	b, err := m.Guest(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Items())
}

func TestManager_IdleGuestsAreEvictedAndReloaded(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	m := NewManager(mem, nil, WithGuestIdle(time.Minute))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	a, err := m.Guest(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, a.AddItem(ctx, item("V1", "1", 2, 0)))
	_, err = m.Guest(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, m.CachedGuests())

	now = now.Add(45 * time.Second)
	_, err = m.Guest(ctx, "a")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = m.Guest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, m.CachedGuests(), "b idle past the window")

	now = now.Add(2 * time.Minute)
	reloaded, err := m.Guest(ctx, "a")
	require.NoError(t, err)
	assert.NotSame(t, a, reloaded)
	assert.Equal(t, 2, reloaded.TotalItems())
	assert.Equal(t, 1, m.CachedGuests())
}

func TestManager_UserLoadsServerCartOnce(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil)
	remote := &fakeRemote{cart: models.Cart{ID: "srv", Items: []models.CartItem{item("V1", "3", 2, 0)}}}

	s, err := m.User(ctx, "u1", remote)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalItems())

	_, err = m.User(ctx, "u1", remote)
	require.NoError(t, err)
	assert.Equal(t, 1, remote.loads)
}

func TestManager_MergeGuest(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil)
	remote := &fakeRemote{cart: models.Cart{ID: "srv"}}

	res, err := m.MergeGuest(ctx, "nobody", "u1", remote)
	require.NoError(t, err)
	assert.Equal(t, MergeNoGuestCart, res.Status)
	assert.Zero(t, m.CachedGuests())

	g, err := m.Guest(ctx, "g1")
	require.NoError(t, err)
	require.NoError(t, g.AddItem(ctx, item("V1", "4", 2, 0)))

	res, err = m.MergeGuest(ctx, "g1", "u1", remote)
	require.NoError(t, err)
	assert.Equal(t, MergeSuccess, res.Status)

	user, err := m.User(ctx, "u1", remote)
	require.NoError(t, err)
	assert.Same(t, g, user)
	assert.Equal(t, 2, user.TotalItems())
}
