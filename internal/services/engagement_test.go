package services

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"resepi/internal/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, CounterStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCounterStore(client)
}

func TestConcurrentLikesAllApplied(t *testing.T) {
	mr, store := newRedisStore(t)
	svc := NewEngagementService(store, time.Second)
	recipeID := uuid.NewString()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.IncrementLike(recipeID)
		}()
	}
	wg.Wait()
	svc.Wait()

	got := mr.HGet(LikesKey, recipeID)
	assert.Equal(t, "200", got)

	counts := svc.Counts(context.Background(), recipeID)
	assert.Equal(t, int64(n), counts.Likes)
	assert.Equal(t, int64(0), counts.Views)
}

func TestViewsAndLikesAreIndependent(t *testing.T) {
	_, store := newRedisStore(t)
	svc := NewEngagementService(store, time.Second)
	a, b := uuid.NewString(), uuid.NewString()

	svc.IncrementView(a)
	svc.IncrementView(a)
	svc.IncrementLike(a)
	svc.IncrementView(b)
	svc.Wait()

	ca := svc.Counts(context.Background(), a)
	cb := svc.Counts(context.Background(), b)
	assert.Equal(t, Counts{Likes: 1, Views: 2}, ca)
	assert.Equal(t, Counts{Likes: 0, Views: 1}, cb)
}

func TestIncrementSwallowsStoreOutage(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewEngagementService(NewRedisCounterStore(client), 200*time.Millisecond)
	svc.delay = time.Millisecond

	assert.NotPanics(t, func() {
		svc.IncrementLike("r1")
		svc.IncrementView("r1")
		svc.Wait()
	})
	assert.Equal(t, Counts{}, svc.Counts(context.Background(), "r1"))
}

type flakyStore struct {
	CounterStore
	mu       sync.Mutex
	failures int
}

func (f *flakyStore) Incr(ctx context.Context, key, field string) (int64, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return 0, errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.CounterStore.Incr(ctx, key, field)
}

func TestIncrementRetriesTransientFailure(t *testing.T) {
	store := &flakyStore{CounterStore: NewMemoryCounterStore(), failures: 2}
	svc := NewEngagementService(store, time.Second)
	svc.delay = time.Millisecond

	require.NoError(t, svc.Increment(context.Background(), LikesKey, "r1"))
	assert.Equal(t, int64(1), svc.Counts(context.Background(), "r1").Likes)
}

func TestIncrementGivesUpAfterAttempts(t *testing.T) {
	store := &flakyStore{CounterStore: NewMemoryCounterStore(), failures: 10}
	svc := NewEngagementService(store, time.Second)
	svc.delay = time.Millisecond

	assert.Error(t, svc.Increment(context.Background(), LikesKey, "r1"))
	assert.Equal(t, int64(0), svc.Counts(context.Background(), "r1").Likes)
}

func TestMemoryStoreConcurrentIncrements(t *testing.T) {
	svc := NewEngagementService(NewMemoryCounterStore(), time.Second)
	for i := 0; i < 100; i++ {
		svc.IncrementView("r1")
	}
	svc.Wait()
	assert.Equal(t, int64(100), svc.Counts(context.Background(), "r1").Views)
}

// silentListener accepts connections and never writes a reply.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	var mu sync.Mutex
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func TestCountsBoundedWhenStoreHangs(t *testing.T) {
	client := redis.NewClient(db.RedisOptions(silentListener(t), "", 0))
	t.Cleanup(func() { _ = client.Close() })
	svc := NewEngagementService(NewRedisCounterStore(client), 200*time.Millisecond)

	start := time.Now()
	counts := svc.Counts(context.Background(), uuid.NewString())
	elapsed := time.Since(start)

	assert.Equal(t, Counts{}, counts)
	assert.Less(t, elapsed, 900*time.Millisecond)
}

func TestCountsReadsMissingFieldsAsZero(t *testing.T) {
	mr, store := newRedisStore(t)
	svc := NewEngagementService(store, time.Second)
	id := uuid.NewString()
	mr.HSet(ViewsKey, id, "7")

	assert.Equal(t, Counts{Likes: 0, Views: 7}, svc.Counts(context.Background(), id))
}
