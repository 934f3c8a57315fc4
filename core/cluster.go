package core

// ClusterStats 是离线训练产出的簇级统计。
// Cohesion/Separation 是训练器直接给出的标量，引擎只透传不重算。
type ClusterStats struct {
	ClusterID        int
	Size             int
	Cohesion         float64
	Separation       float64
	DominantGenres   []string
	DominantFeatures []string
}

// ClusterIndex 是单个模型变体的簇索引领域接口。
//
// 不变量：
//   - FeatureStore 中每个轨道 ID 恰好映射到一个簇（可能是 NoiseCluster）
//   - 每个簇的成员 ID 都存在于同变体的 FeatureStore
//
// 构建完成后只读，任意并发读安全。
type ClusterIndex interface {
	// ClusterOf 返回轨道所属簇 ID；轨道不存在时返回 UNKNOWN_TRACK 错误。
	ClusterOf(id string) (int, error)

	// Members 返回簇的成员 ID（升序副本）；未知簇返回空切片。
	Members(clusterID int) []string

	// Stats 返回簇级统计；未知簇返回 UNKNOWN_CLUSTER 错误。
	Stats(clusterID int) (*ClusterStats, error)

	// Clusters 返回全部簇 ID（升序，含 NoiseCluster 当且仅当存在噪声轨道）。
	Clusters() []int
}
