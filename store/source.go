package store

import "context"

// BundleSource 是工件存储的领域接口。
//
// 设计原则：
//   - 定义在 store，由具体后端（文件系统、Redis 等）实现
//   - 只在加载期被调用；请求路径上不发生任何 I/O
//
// 实现：
//   - FSSource 从本地文件系统读取工件
//   - RedisSource 从 Redis 读取工件
type BundleSource interface {
	// Name 返回后端名称（用于日志/加载错误记录）
	Name() string

	// Fetch 按位置读取工件字节流；不存在时返回 NOT_FOUND 错误
	Fetch(ctx context.Context, location string) ([]byte, error)

	// Close 关闭连接/释放资源
	Close() error
}
