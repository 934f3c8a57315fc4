package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rushteam/trackit/core"
)

// FSSource 是文件系统实现的 BundleSource，用于本地部署/测试/开发。
type FSSource struct {
	// Root 是工件根目录；为空时 location 按原样作为路径使用。
	Root string
}

// NewFSSource 创建文件系统工件源。
func NewFSSource(root string) *FSSource {
	return &FSSource{Root: root}
}

func (s *FSSource) Name() string { return "fs" }

// Fetch 实现 BundleSource 接口
func (s *FSSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	path := location
	if s.Root != "" {
		path = filepath.Join(s.Root, location)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewDomainError(core.ModuleBundle, core.ErrorCodeNotFound,
				fmt.Sprintf("bundle: %s not found", path))
		}
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}
	return data, nil
}

func (s *FSSource) Close() error { return nil }

// 确保实现了接口
var _ BundleSource = (*FSSource)(nil)
