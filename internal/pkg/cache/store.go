package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// INCR 与 EXPIRE 在同一脚本内执行。
// 只有计数器刚创建（值为 1）或丢失了过期时间时才设置窗口，已在运行的窗口不会被延长。
var incrWithExpiryScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("TTL", KEYS[1]) == -1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Store 基于 Redis 的共享计数器和 JSON 缓存
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// IncrWithExpiry 原子递增 key，首次创建时设置 window 过期
func (s *Store) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	count, err := incrWithExpiryScript.Run(ctx, s.client, []string{key}, seconds).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return count, nil
}

// SetJSON 序列化后写入并设置过期时间
func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.client.Set(ctx, key, data, ttl).Err()
}

// GetJSON 读取并反序列化，key 不存在时返回 false
func (s *Store) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return true, nil
}

// Ping 检查 Redis 连通性
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
