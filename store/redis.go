package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/trackit/core"
)

// RedisSource 是 Redis 实现的 BundleSource。
// 适用于训练器把工件发布到 Redis、多实例共享拉取的部署形态。
// 只在加载期被访问；切换/推荐路径不触碰 Redis。
type RedisSource struct {
	client *redis.Client
}

// NewRedisSource 创建 Redis 工件源并校验连通性。
func NewRedisSource(addr string, db int) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisSource{client: client}, nil
}

func (s *RedisSource) Name() string { return "redis" }

// Fetch 实现 BundleSource 接口
func (s *RedisSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	val, err := s.client.Get(ctx, location).Bytes()
	if err == redis.Nil {
		return nil, core.NewDomainError(core.ModuleBundle, core.ErrorCodeNotFound,
			fmt.Sprintf("bundle: key %q not found", location))
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", location, err)
	}
	return val, nil
}

func (s *RedisSource) Close() error { return s.client.Close() }

// 确保实现了接口
var _ BundleSource = (*RedisSource)(nil)
