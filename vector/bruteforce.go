package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/trackit/core"
)

// BruteForce 是穷举扫描实现的相似度索引。
//
// 特点：
//   - 构建后只读，任意并发读安全
//   - 欧氏距离（作用在变体自己的、可能已归一化/PCA 降维的特征空间上）
//   - candidates 非 nil 时只在受限集合上扫描；输出顺序与全量扫描后过滤完全一致
//   - 同距离按 ID 升序打破平局，保证输出可复现
//
// 数据规模在几万轨道量级时穷举扫描足够快，且避免近似索引的召回偏差。
type BruteForce struct {
	dim  int
	ids  []string // 升序
	vecs map[string][]float64
}

// NewBruteForce 构建穷举索引。向量维度必须全部等于 dim。
func NewBruteForce(dim int, vecs map[string][]float64) (*BruteForce, error) {
	if dim <= 0 {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
			fmt.Sprintf("index: dimension must be positive, got %d", dim))
	}

	ids := make([]string, 0, len(vecs))
	for id, vec := range vecs {
		if len(vec) != dim {
			return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
				fmt.Sprintf("index: vector %q has dimension %d, want %d", id, len(vec), dim))
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &BruteForce{dim: dim, ids: ids, vecs: vecs}, nil
}

// Nearest 实现 core.SimilarityIndex 接口。
func (b *BruteForce) Nearest(vec []float64, k int, exclude map[string]struct{}, candidates map[string]struct{}) ([]core.Neighbor, error) {
	if len(vec) != b.dim {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
			fmt.Sprintf("index: query vector has dimension %d, want %d", len(vec), b.dim))
	}
	if k <= 0 {
		return nil, nil
	}

	// candidates 为 nil 时扫描全量；否则只扫描受限集合（不在索引中的 ID 直接跳过）
	scored := make([]core.Neighbor, 0, k)
	scan := func(id string) {
		if _, skip := exclude[id]; skip {
			return
		}
		target, ok := b.vecs[id]
		if !ok {
			return
		}
		scored = append(scored, core.Neighbor{ID: id, Distance: euclideanDistance(vec, target)})
	}

	if candidates == nil {
		for _, id := range b.ids {
			scan(id)
		}
	} else {
		for id := range candidates {
			scan(id)
		}
	}

	// 距离升序，同距离按 ID 升序
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].ID < scored[j].ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// euclideanDistance 计算欧氏距离
func euclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// 确保实现了接口
var _ core.SimilarityIndex = (*BruteForce)(nil)
