package repository

import (
	"context"
	"testing"
	"time"

	"toyWholesale/cart"
	"toyWholesale/pricing"
	"toyWholesale/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	repo, err := NewSessionRepository(ctx, rdb, 30*time.Minute, zap.NewNop())
	require.NoError(t, err)

	sid, err := repo.CreateSession(ctx, 42, true)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL("session:"+sid))

	user, ok, err := repo.GetSession(ctx, sid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, user.UserId)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, sid, user.SessionId)

	mr.FastForward(20 * time.Minute)
	require.NoError(t, repo.RefreshSession(ctx, sid))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:"+sid))

	require.NoError(t, repo.DeleteSession(ctx, sid))
	_, ok, err = repo.GetSession(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepo_Expires(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	repo, err := NewSessionRepository(ctx, rdb, time.Minute, zap.NewNop())
	require.NoError(t, err)

	sid, err := repo.CreateSession(ctx, 1, false)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, ok, err := repo.GetSession(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepo_RedisDown(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	repo, err := NewSessionRepository(ctx, rdb, time.Minute, zap.NewNop())
	require.NoError(t, err)

	mr.Close()
	_, _, err = repo.GetSession(ctx, "whatever")
	assert.Error(t, err)
}

func TestCartRepo_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	repo, err := NewCartRepository(ctx, rdb, zap.NewNop())
	require.NoError(t, err)

	empty, err := repo.GetCart(ctx, "unknown")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	tiers, err := pricing.NewTiers("10", "8", "6")
	require.NoError(t, err)
	var c cart.Cart
	c.Add(cart.Item{ProductID: 1, Name: "Кубики", Tiers: tiers, Quantity: 20})
	require.NoError(t, repo.SetCart(ctx, "abc", c))
	assert.Equal(t, 24*time.Hour, mr.TTL("cart:abc"))

	got, err := repo.GetCart(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "160.00", got.Total().StringFixed(2))

	require.NoError(t, repo.DeleteCart(ctx, "abc"))
	assert.False(t, mr.Exists("cart:abc"))
}

func TestCartRepo_CorruptDataYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	repo, err := NewCartRepository(ctx, rdb, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, mr.Set("cart:broken", "{not json"))

	got, err := repo.GetCart(ctx, "broken")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
