package engine

import (
	"sort"

	"github.com/rushteam/trackit/core"
	"github.com/rushteam/trackit/pkg/utils"
)

// tier 表达两级排序：首选层（簇内命中/精确匹配）严格排在补齐层
// （仅全局命中/global 补齐）之前，与原始分数无关。
const (
	tierPrimary = 0
	tierPadded  = 1
)

// scored 是合并/排序阶段的中间态：候选在所有种子中的最佳（最小）距离。
type scored struct {
	id       string
	seedID   string // 产生最佳距离的种子
	dist     float64
	tier     int
	match    string // cluster / global / exact / padded
	fallback bool   // cluster 策略下该种子是否发生了回退
}

// seedHits 是单个种子的一组检索命中。
type seedHits struct {
	seedID    string
	neighbors []core.Neighbor
	tier      int
	match     string
	fallback  bool
}

// mergeBest 合并多种子命中：同一候选出现在多个种子附近时，
// 取其最佳（最小距离）记录。tier 更小者优先于距离比较
// （hybrid 的簇内命中无条件压过仅全局命中）。
// 按 hits 的种子顺序迭代、仅在严格更优时替换，保证确定性。
func mergeBest(hits []seedHits) []*scored {
	best := make(map[string]*scored)
	order := make([]string, 0)

	for _, h := range hits {
		for _, nb := range h.neighbors {
			entry, exists := best[nb.ID]
			if !exists {
				best[nb.ID] = &scored{
					id:       nb.ID,
					seedID:   h.seedID,
					dist:     nb.Distance,
					tier:     h.tier,
					match:    h.match,
					fallback: h.fallback,
				}
				order = append(order, nb.ID)
				continue
			}
			if h.tier < entry.tier || (h.tier == entry.tier && nb.Distance < entry.dist) {
				entry.seedID = h.seedID
				entry.dist = nb.Distance
				entry.tier = h.tier
				entry.match = h.match
				entry.fallback = h.fallback
			}
		}
	}

	out := make([]*scored, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

// rank 排序并截断：tier 升序（首选层在前），层内分数降序（即距离升序），
// 同分按轨道 ID 升序打破平局，保证输出可复现。
func rank(items []*scored, count int) []*scored {
	sort.Slice(items, func(i, j int) bool {
		if items[i].tier != items[j].tier {
			return items[i].tier < items[j].tier
		}
		if items[i].dist != items[j].dist {
			return items[i].dist < items[j].dist
		}
		return items[i].id < items[j].id
	})
	if len(items) > count {
		items = items[:count]
	}
	return items
}

// formatResult 把排序后的中间态格式化为对外结果，并打上解释标签。
func formatResult(q *query, ranked []*scored) (*core.RecommendationResult, error) {
	result := &core.RecommendationResult{
		Variant:  q.variant.Name,
		Strategy: q.strategy,
		Items:    make([]*core.Recommendation, 0, len(ranked)),
	}

	for _, s := range ranked {
		tr, err := q.variant.Features.Meta(s.id)
		if err != nil {
			return nil, err
		}
		rec := &core.Recommendation{
			Track:  tr,
			Score:  core.Similarity(s.dist),
			SeedID: s.seedID,
		}
		rec.PutLabel("strategy", utils.Label{Value: string(q.strategy), Source: "engine"})
		rec.PutLabel("match", utils.Label{Value: s.match, Source: "engine"})
		rec.PutLabel("seed", utils.Label{Value: s.seedID, Source: "engine"})
		if s.fallback {
			rec.PutLabel("fallback", utils.Label{Value: "global", Source: "engine"})
		}
		result.Items = append(result.Items, rec)
	}
	return result, nil
}
