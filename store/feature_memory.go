package store

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/rushteam/trackit/core"
)

// Row 是构建 MemoryFeatureStore 的单条输入：元信息 + 同维向量。
type Row struct {
	Track  *core.Track
	Vector []float64
}

// MemoryFeatureStore 是内存实现的 FeatureStore。
//
// 特点：
//   - 构建时校验维度一致、ID 唯一，之后只读
//   - 读路径无锁，任意并发读安全
//   - Sample 是唯一带随机性的操作，内部用独立锁保护随机源
type MemoryFeatureStore struct {
	dim       int
	ids       []string // 升序
	vectors   map[string][]float64
	tracks    map[string]*core.Track
	byCluster map[int][]string // cluster -> 成员 ID（升序）

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// Option 配置 MemoryFeatureStore 的可选参数。
type Option func(*MemoryFeatureStore)

// WithSampleSeed 固定 Sample 的随机种子，用于可复现的测试。
func WithSampleSeed(seed int64) Option {
	return func(m *MemoryFeatureStore) {
		m.rnd = rand.New(rand.NewSource(seed))
	}
}

// NewMemoryFeatureStore 构建一个不可变的内存特征存储。
// 校验：dim > 0、至少一条记录、每条向量维度等于 dim、ID 不重复。
func NewMemoryFeatureStore(dim int, rows []Row, opts ...Option) (*MemoryFeatureStore, error) {
	if dim <= 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
			fmt.Sprintf("feature: dimension must be positive, got %d", dim))
	}
	if len(rows) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
			"feature: at least one track is required")
	}

	m := &MemoryFeatureStore{
		dim:       dim,
		ids:       make([]string, 0, len(rows)),
		vectors:   make(map[string][]float64, len(rows)),
		tracks:    make(map[string]*core.Track, len(rows)),
		byCluster: make(map[int][]string),
		rnd:       rand.New(rand.NewSource(rand.Int63())),
	}

	for _, row := range rows {
		if row.Track == nil || row.Track.ID == "" {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
				"feature: track id is required")
		}
		id := row.Track.ID
		if _, exists := m.vectors[id]; exists {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
				fmt.Sprintf("feature: duplicate track id %q", id))
		}
		if len(row.Vector) != dim {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
				fmt.Sprintf("feature: track %q has dimension %d, want %d", id, len(row.Vector), dim))
		}
		m.ids = append(m.ids, id)
		m.vectors[id] = row.Vector
		m.tracks[id] = row.Track
		m.byCluster[row.Track.ClusterID] = append(m.byCluster[row.Track.ClusterID], id)
	}

	sort.Strings(m.ids)
	for _, members := range m.byCluster {
		sort.Strings(members)
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get 实现 core.FeatureStore 接口
func (m *MemoryFeatureStore) Get(id string) ([]float64, error) {
	vec, ok := m.vectors[id]
	if !ok {
		return nil, core.NewUnknownTrack(core.ModuleFeature, id)
	}
	return vec, nil
}

// Meta 实现 core.FeatureStore 接口
func (m *MemoryFeatureStore) Meta(id string) (*core.Track, error) {
	tr, ok := m.tracks[id]
	if !ok {
		return nil, core.NewUnknownTrack(core.ModuleFeature, id)
	}
	return tr, nil
}

// Sample 实现 core.FeatureStore 接口。
// 均匀无放回抽样；n 大于可抽样本数时返回全部（升序）。
func (m *MemoryFeatureStore) Sample(n int, clusterID ...int) ([]string, error) {
	if n <= 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
			fmt.Sprintf("feature: sample size must be positive, got %d", n))
	}

	pool := m.ids
	if len(clusterID) > 0 {
		members, ok := m.byCluster[clusterID[0]]
		if !ok {
			return nil, core.NewUnknownCluster(core.ModuleFeature, clusterID[0])
		}
		pool = members
	}

	if n >= len(pool) {
		out := make([]string, len(pool))
		copy(out, pool)
		return out, nil
	}

	m.rndMu.Lock()
	perm := m.rnd.Perm(len(pool))
	m.rndMu.Unlock()

	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, pool[idx])
	}
	sort.Strings(out)
	return out, nil
}

// AllIDs 实现 core.FeatureStore 接口
func (m *MemoryFeatureStore) AllIDs() []string { return m.ids }

// Dim 实现 core.FeatureStore 接口
func (m *MemoryFeatureStore) Dim() int { return m.dim }

// Len 实现 core.FeatureStore 接口
func (m *MemoryFeatureStore) Len() int { return len(m.ids) }

// Vectors 返回 id -> vector 的内部映射，供构建相似度索引时复用。
// 调用方不得修改。
func (m *MemoryFeatureStore) Vectors() map[string][]float64 { return m.vectors }

// 确保实现了接口
var _ core.FeatureStore = (*MemoryFeatureStore)(nil)
