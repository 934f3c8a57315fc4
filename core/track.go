package core

import "github.com/rushteam/trackit/pkg/utils"

// NoiseCluster 是 HDBSCAN 未能归入任何簇的轨道所使用的特殊簇 ID。
// 噪声轨道同样存在于 FeatureStore，只是不参与簇内检索。
const NoiseCluster = -1

// Track 是推荐链路中的统一元信息结构。
// 向量本身存放在 FeatureStore（id -> vector），Track 只承载展示/过滤所需的字段。
// 变体构建完成后 Track 不可变，任意并发读安全。
type Track struct {
	ID         string
	Name       string
	Artist     string
	Genres     []string
	Popularity int    // 0-100
	PreviewURL string // 可选，试听地址
	ClusterID  int    // NoiseCluster 表示噪声/未分配
	Meta       map[string]any
}

// Recommendation 是单条推荐结果：轨道、相似度分数、来源种子、标签。
// Labels 用于解释与观测（match 类型、fallback 标记等）。
type Recommendation struct {
	Track  *Track
	Score  float64 // (0,1]，1/(1+distance)
	SeedID string  // 产生最佳分数的种子轨道 ID
	Labels map[string]utils.Label
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (r *Recommendation) PutLabel(key string, lbl utils.Label) {
	if r.Labels == nil {
		r.Labels = make(map[string]utils.Label)
	}
	if old, ok := r.Labels[key]; ok {
		r.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	r.Labels[key] = lbl
}

// RecommendationResult 是一次 recommend 调用的完整输出。
// Items 按分数严格降序排列，同分时按轨道 ID 升序（保证可复现）。
// 候选集耗尽时 Items 为空切片而非 nil，且不是错误。
type RecommendationResult struct {
	Variant  string
	Strategy Strategy
	Items    []*Recommendation
}
