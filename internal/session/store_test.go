package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lira-chatbot/internal/common/database"
)

func TestMemoryStoreUnknownIDReturnsEmpty(t *testing.T) {
	store := NewMemoryStore()

	s, err := store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, s.History)
	assert.False(t, s.SystemSent)
	assert.Empty(t, s.SystemInstruction)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New()
	s.EnsureSystemInstruction("context block")
	s.MarkSystemSent()
	s.ReplaceHistory([]Turn{
		NewTurn(RoleUser, "hi"),
		NewTurn(RoleModel, "hello"),
	})
	require.NoError(t, store.Put(ctx, "a", s))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, s.History, got.History)
	assert.True(t, got.SystemSent)
	assert.Equal(t, "context block", got.SystemInstruction)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New()
	s.ReplaceHistory([]Turn{NewTurn(RoleUser, "original")})
	require.NoError(t, store.Put(ctx, "a", s))

	// Mutating the caller's copy must not leak into the store.
	s.History[0].Parts[0].Text = "mutated"
	s.ReplaceHistory(append(s.History, NewTurn(RoleModel, "extra")))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, "original", got.History[0].Parts[0].Text)

	// Same for the retrieved copy.
	got.History[0].Parts[0].Text = "mutated again"
	got2, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", got2.History[0].Parts[0].Text)
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	s := New()
	s.EnsureSystemInstruction("context block")
	s.MarkSystemSent()
	s.ReplaceHistory([]Turn{
		NewTurn(RoleUser, "hi"),
		NewTurn(RoleModel, "hello"),
	})
	require.NoError(t, store.Put(ctx, "a", s))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, s.History, got.History)
	assert.True(t, got.SystemSent)
	assert.Equal(t, "context block", got.SystemInstruction)
}

func TestRedisStoreMissReturnsEmpty(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)

	got, err := store.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, got.History)
	assert.False(t, got.SystemSent)
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", New()))
	assert.Equal(t, time.Minute, mr.TTL("chat:session:a"))

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.History, "expired session reads as fresh")
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)

	require.NoError(t, mr.Set("chat:session:a", "not json"))

	_, err := store.Get(context.Background(), "a")
	assert.Error(t, err)
}

func TestEnsureSystemInstructionIdempotent(t *testing.T) {
	s := New()
	s.EnsureSystemInstruction("first")
	s.EnsureSystemInstruction("second")
	assert.Equal(t, "first", s.SystemInstruction)
}
