package core

// FeatureStore 是单个模型变体的特征存储领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 构建完成后只读，任意并发读安全，无需加锁
//   - 同一个 store 内所有向量维度一致
//
// 使用场景：
//   - 推荐时解析种子向量（Get）
//   - 簇信息展示时抽样成员（Sample）
//   - 全局策略的候选枚举（AllIDs）
type FeatureStore interface {
	// Get 返回轨道的特征向量；不存在时返回 UNKNOWN_TRACK 错误。
	Get(id string) ([]float64, error)

	// Meta 返回轨道的元信息；不存在时返回 UNKNOWN_TRACK 错误。
	Meta(id string) (*Track, error)

	// Sample 均匀无放回地抽取 n 个互不相同的轨道 ID。
	// 可选传入一个簇 ID 将抽样范围限制到该簇；n 大于可抽样本数时返回全部。
	Sample(n int, clusterID ...int) ([]string, error)

	// AllIDs 返回全部轨道 ID（升序，调用方不得修改）。
	AllIDs() []string

	// Dim 返回向量维度。
	Dim() int

	// Len 返回轨道数量。
	Len() int
}
