package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisOptions 客户端参数。调用方的 context 截止时间对每条命令生效
func RedisOptions(addr, password string, database int) *redis.Options {
	return &redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    database,
		DialTimeout:           2 * time.Second,
		ReadTimeout:           time.Second,
		WriteTimeout:          time.Second,
		ContextTimeoutEnabled: true,
	}
}

// NewRedisClient returns nil when Redis is not configured or unreachable so
// callers can fall back to the in-process counter store.
func NewRedisClient(ctx context.Context, addr, password string, database int) *redis.Client {
	if addr == "" {
		logrus.Warn("Redis address not configured, engagement counters use in-process store")
		return nil
	}

	rdb := redis.NewClient(RedisOptions(addr, password, database))

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", addr).Warn("Redis unreachable, engagement counters use in-process store")
		_ = rdb.Close()
		return nil
	}

	logrus.WithFields(logrus.Fields{"addr": addr, "db": database}).Info("Connected to Redis")
	return rdb
}
