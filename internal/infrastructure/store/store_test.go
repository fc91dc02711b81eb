package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, "test:"), mr
}

func setupTestSQLite(t *testing.T) *SQLiteStore {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================
// Contract Tests (shared by every backend)
// ============================================

func runContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := s.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k", `{"a":1}`))
		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"a":1}`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k", "first"))
		require.NoError(t, s.Set(ctx, "k", "second"))
		v, _, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "second", v)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "gone", "x"))
		require.NoError(t, s.Remove(ctx, "gone"))
		_, ok, err := s.Get(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove absent key", func(t *testing.T) {
		assert.NoError(t, s.Remove(ctx, "never-set"))
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	runContract(t, NewMemoryStore())
}

func TestRedisStore_Contract(t *testing.T) {
	s, _ := setupTestRedis(t)
	runContract(t, s)
}

func TestSQLiteStore_Contract(t *testing.T) {
	runContract(t, setupTestSQLite(t))
}

// ============================================
// Backend-specific Tests
// ============================================

func TestRedisStore_UsesPrefixAndNoTTL(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyOrders, "[]"))

	assert.True(t, mr.Exists("test:orders"))
	assert.Equal(t, int64(0), int64(mr.TTL("test:orders")))
}

func TestRedisStore_ServerDown(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")

	assert.ErrorContains(t, err, "redis get failed")
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyCatalog, "[1]"))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, KeyCatalog)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", v)
}

func TestSQLiteStore_OpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "kv.db")

	s, err := OpenSQLite(path)

	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestOpen_Memory(t *testing.T) {
	s, closer, err := Open(context.Background(), Options{Backend: "memory"})

	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, closer.Close())
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Backend: "etcd"})

	assert.ErrorContains(t, err, "unknown backend")
}

// ============================================
// JSON Helper Tests
// ============================================

func TestGetJSON_MissingKey(t *testing.T) {
	s := NewMemoryStore()
	var dst []string

	ok, err := GetJSON(context.Background(), s, "missing", &dst)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, dst)
}

func TestGetJSON_Corrupt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "bad", "{not json"))

	var dst map[string]int
	_, err := GetJSON(ctx, s, "bad", &dst)

	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSetJSON_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, s, "stats", map[string]int{"views": 3}))

	var dst map[string]int
	ok, err := GetJSON(ctx, s, "stats", &dst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, dst["views"])
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"coupon key normalises", CouponKey("  Asha@Example.COM "), "coupon:asha@example.com"},
		{"milestone key", MilestoneKey("asha@example.com", 4), "milestone:asha@example.com:4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
