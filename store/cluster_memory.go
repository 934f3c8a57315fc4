package store

import (
	"fmt"
	"sort"

	"github.com/rushteam/trackit/core"
)

// MemoryClusterIndex 是内存实现的 ClusterIndex。
// 成员关系由轨道的簇归属推导而来，统计由离线训练器提供；构建后只读。
type MemoryClusterIndex struct {
	clusterOf map[string]int
	members   map[int][]string // cluster -> 成员 ID（升序）
	stats     map[int]*core.ClusterStats
	clusters  []int // 升序
}

// NewMemoryClusterIndex 从轨道归属与簇统计构建索引。
// 校验：每个非噪声簇都有统计条目；统计条目不重复。
// 统计里的 Size 以实际成员数为准覆盖（防止工件内部不一致被带进请求路径）。
func NewMemoryClusterIndex(assign map[string]int, stats []*core.ClusterStats) (*MemoryClusterIndex, error) {
	if len(assign) == 0 {
		return nil, core.NewDomainError(core.ModuleCluster, core.ErrorCodeInvalidInput,
			"cluster: at least one assignment is required")
	}

	idx := &MemoryClusterIndex{
		clusterOf: make(map[string]int, len(assign)),
		members:   make(map[int][]string),
		stats:     make(map[int]*core.ClusterStats, len(stats)),
	}

	for id, cid := range assign {
		idx.clusterOf[id] = cid
		idx.members[cid] = append(idx.members[cid], id)
	}
	for cid, members := range idx.members {
		sort.Strings(members)
		idx.clusters = append(idx.clusters, cid)
	}
	sort.Ints(idx.clusters)

	for _, st := range stats {
		if st == nil {
			continue
		}
		if _, dup := idx.stats[st.ClusterID]; dup {
			return nil, core.NewDomainError(core.ModuleCluster, core.ErrorCodeInvalidInput,
				fmt.Sprintf("cluster: duplicate stats for cluster %d", st.ClusterID))
		}
		copied := *st
		copied.Size = len(idx.members[st.ClusterID])
		idx.stats[st.ClusterID] = &copied
	}

	// 每个非噪声簇必须有训练器统计；噪声簇按需补一条空统计
	for _, cid := range idx.clusters {
		if _, ok := idx.stats[cid]; ok {
			continue
		}
		if cid == core.NoiseCluster {
			idx.stats[cid] = &core.ClusterStats{ClusterID: cid, Size: len(idx.members[cid])}
			continue
		}
		return nil, core.NewDomainError(core.ModuleCluster, core.ErrorCodeInvalidInput,
			fmt.Sprintf("cluster: missing stats for cluster %d", cid))
	}

	return idx, nil
}

// ClusterOf 实现 core.ClusterIndex 接口
func (idx *MemoryClusterIndex) ClusterOf(id string) (int, error) {
	cid, ok := idx.clusterOf[id]
	if !ok {
		return 0, core.NewUnknownTrack(core.ModuleCluster, id)
	}
	return cid, nil
}

// Members 实现 core.ClusterIndex 接口。未知簇返回空切片。
func (idx *MemoryClusterIndex) Members(clusterID int) []string {
	members := idx.members[clusterID]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// Stats 实现 core.ClusterIndex 接口
func (idx *MemoryClusterIndex) Stats(clusterID int) (*core.ClusterStats, error) {
	st, ok := idx.stats[clusterID]
	if !ok {
		return nil, core.NewUnknownCluster(core.ModuleCluster, clusterID)
	}
	return st, nil
}

// Clusters 实现 core.ClusterIndex 接口
func (idx *MemoryClusterIndex) Clusters() []int { return idx.clusters }

// 确保实现了接口
var _ core.ClusterIndex = (*MemoryClusterIndex)(nil)
