package services

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	LikesKey = "recipe:likes"
	ViewsKey = "recipe:views"
)

// CounterStore is a hash of integer counters with atomic increment.
type CounterStore interface {
	Incr(ctx context.Context, key, field string) (int64, error)
	// Get reads field from each hash in keys, in order. Missing fields are 0.
	Get(ctx context.Context, field string, keys ...string) ([]int64, error)
}

type redisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore 基于 Redis Hash 的计数器，HINCRBY 保证原子递增
func NewRedisCounterStore(client *redis.Client) CounterStore {
	return &redisCounterStore{client: client}
}

func (s *redisCounterStore) Incr(ctx context.Context, key, field string) (int64, error) {
	return s.client.HIncrBy(ctx, key, field, 1).Result()
}

// Get 一次 pipeline 往返读取所有计数
func (s *redisCounterStore) Get(ctx context.Context, field string, keys ...string) ([]int64, error) {
	cmds := make([]*redis.StringCmd, len(keys))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGet(ctx, key, field)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	out := make([]int64, len(keys))
	for i, cmd := range cmds {
		val, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if out[i], err = strconv.ParseInt(val, 10, 64); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type memoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]map[string]int64
}

// NewMemoryCounterStore 进程内计数器，Redis 未配置时使用
func NewMemoryCounterStore() CounterStore {
	return &memoryCounterStore{counts: make(map[string]map[string]int64)}
}

func (s *memoryCounterStore) Incr(_ context.Context, key, field string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.counts[key]
	if !ok {
		h = make(map[string]int64)
		s.counts[key] = h
	}
	h[field]++
	return h[field], nil
}

func (s *memoryCounterStore) Get(_ context.Context, field string, keys ...string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(keys))
	for i, key := range keys {
		out[i] = s.counts[key][field]
	}
	return out, nil
}

// NewCounterStoreWithFallback picks Redis when a client is available.
func NewCounterStoreWithFallback(client *redis.Client) CounterStore {
	if client == nil {
		return NewMemoryCounterStore()
	}
	return NewRedisCounterStore(client)
}
