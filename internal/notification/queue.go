package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryQueue очередь в памяти процесса
type MemoryQueue struct {
	ch      chan int64
	waitFor time.Duration
}

// NewMemoryQueue создает очередь на size элементов
func NewMemoryQueue(size int, waitFor time.Duration) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan int64, size), waitFor: waitFor}
}

func (q *MemoryQueue) Push(ctx context.Context, id int64) error {
	select {
	case q.ch <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (int64, error) {
	timer := time.NewTimer(q.waitFor)
	defer timer.Stop()

	select {
	case id := <-q.ch:
		return id, nil
	case <-timer.C:
		return 0, ErrQueueEmpty
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Len возвращает число ожидающих ID
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

// Drain забирает все ожидающие ID без ожидания
func (q *MemoryQueue) Drain() []int64 {
	var ids []int64
	for {
		select {
		case id := <-q.ch:
			ids = append(ids, id)
		default:
			return ids
		}
	}
}

// RedisQueue очередь на Redis списке, общая для нескольких экземпляров сервиса
type RedisQueue struct {
	client  *redis.Client
	key     string
	waitFor time.Duration
}

// NewRedisQueue создает очередь над списком key
func NewRedisQueue(client *redis.Client, key string, waitFor time.Duration) *RedisQueue {
	return &RedisQueue{client: client, key: key, waitFor: waitFor}
}

func (q *RedisQueue) Push(ctx context.Context, id int64) error {
	if err := q.client.LPush(ctx, q.key, id).Err(); err != nil {
		return fmt.Errorf("redis queue: push %d: %w", id, err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (int64, error) {
	values, err := q.client.BRPop(ctx, q.waitFor, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrQueueEmpty
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("redis queue: pop: %w", err)
	}

	// BRPop возвращает пару [ключ, значение]
	if len(values) != 2 {
		return 0, fmt.Errorf("redis queue: unexpected reply %v", values)
	}

	id, err := strconv.ParseInt(values[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis queue: invalid id %q: %w", values[1], err)
	}
	return id, nil
}

// NewRedisClient создает клиент Redis
func NewRedisClient(addr, password string, db, poolSize int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})
}

// PingRedis проверяет соединение с Redis
func PingRedis(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
