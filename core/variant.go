package core

// ModelVariant 是一套完整的模型变体：特征存储 + 簇索引 + 相似度索引。
// 由静态工件一次性构建，构建后不可变；"哪个变体在用"通过 Registry 的
// 原子指针切换表达，而不是原地修改变体。
type ModelVariant struct {
	Name     string
	Features FeatureStore
	Clusters ClusterIndex
	Index    SimilarityIndex
}

// VariantSummary 是变体的摘要信息，用于 Available() 列表展示。
type VariantSummary struct {
	Name     string
	Dim      int
	Tracks   int
	Clusters int
}

// Summary 返回变体摘要。簇计数不含噪声簇。
func (v *ModelVariant) Summary() VariantSummary {
	clusters := 0
	for _, id := range v.Clusters.Clusters() {
		if id != NoiseCluster {
			clusters++
		}
	}
	return VariantSummary{
		Name:     v.Name,
		Dim:      v.Features.Dim(),
		Tracks:   v.Features.Len(),
		Clusters: clusters,
	}
}
