package core

// Neighbor 是一次最近邻检索的单条结果。
type Neighbor struct {
	ID       string
	Distance float64
}

// SimilarityIndex 是单个模型变体的最近邻检索领域接口。
//
// 设计原则：
//   - 距离度量是变体的属性（欧氏距离作用在变体自己的特征空间上），不是索引的属性
//   - exclude 中的 ID 绝不出现在结果里
//   - candidates 非 nil 时检索空间被限制为恰好该 ID 集合（用于簇内检索）；
//     实现可以在受限集合上暴力扫描，也可以查全量再过滤，只要输出顺序与排除语义一致
//   - 结果按距离升序，同距离按 ID 升序，长度 ≤ k
type SimilarityIndex interface {
	Nearest(vec []float64, k int, exclude map[string]struct{}, candidates map[string]struct{}) ([]Neighbor, error)
}

// Similarity 把距离单调映射为相似度分数：1/(1+d)，值域 (0,1]，距离越小分数越高。
// 所有展示层分数都经过这一个映射，保证跨策略可比。
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}
