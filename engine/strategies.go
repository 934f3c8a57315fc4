package engine

import (
	"strings"

	"github.com/rushteam/trackit/core"
)

// runGlobal 全局策略：候选为整个 FeatureStore 减去种子集合。
// 多种子时每个种子独立检索最近邻，再按最佳分数合并。
func (e *Engine) runGlobal(q *query) ([]*scored, error) {
	hits, err := searchSeeds(q, q.allowed, nil, tierPrimary, "global", false)
	if err != nil {
		return nil, err
	}
	return rank(mergeBest(hits), q.count), nil
}

// runCluster 簇内策略：每个种子的候选限制为其所属簇的成员。
// 种子簇为噪声、或簇内非种子候选数小于 max(ClusterFallbackMin, count) 时，
// 该种子的贡献显式回退到全局策略（结果带 fallback 标签，不是静默行为）。
func (e *Engine) runCluster(q *query) ([]*scored, error) {
	threshold := q.count
	if e.cfg.ClusterFallbackMin > threshold {
		threshold = e.cfg.ClusterFallbackMin
	}

	hits := make([]seedHits, 0, len(q.seedIDs))
	for _, seedID := range q.seedIDs {
		cid, err := q.variant.Clusters.ClusterOf(seedID)
		if err != nil {
			return nil, err
		}

		fallback := cid == core.NoiseCluster
		var cand map[string]struct{}
		if !fallback {
			cand = q.restrict(q.variant.Clusters.Members(cid))
			if len(cand) < threshold {
				fallback = true
			}
		}

		var h seedHits
		if fallback {
			h, err = searchSeed(q, seedID, q.allowed, nil, tierPrimary, "global", true)
		} else {
			h, err = searchSeed(q, seedID, cand, nil, tierPrimary, "cluster", false)
		}
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return rank(mergeBest(hits), q.count), nil
}

// runHybrid 混合策略：簇内命中与全局命中取并集，
// 簇内命中无条件排在仅全局命中之前（层内再按分数、ID 排序）。
// 偏好音乐上更内聚的簇内邻居，同时在簇过小时不至于饿死结果。
func (e *Engine) runHybrid(q *query) ([]*scored, error) {
	hits := make([]seedHits, 0, len(q.seedIDs)*2)
	for _, seedID := range q.seedIDs {
		cid, err := q.variant.Clusters.ClusterOf(seedID)
		if err != nil {
			return nil, err
		}
		if cid != core.NoiseCluster {
			cand := q.restrict(q.variant.Clusters.Members(cid))
			if len(cand) > 0 {
				h, err := searchSeed(q, seedID, cand, nil, tierPrimary, "cluster", false)
				if err != nil {
					return nil, err
				}
				hits = append(hits, h)
			}
		}
		h, err := searchSeed(q, seedID, q.allowed, nil, tierPadded, "global", false)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return rank(mergeBest(hits), q.count), nil
}

// runArtist 艺人策略：候选限制为与任一种子同艺人的轨道
// （大小写不敏感精确匹配），在受限集合内按相似度排序；
// 不足 count 时用全局结果补齐，补齐条目带 match=padded 标签以便调用方区分。
func (e *Engine) runArtist(q *query) ([]*scored, error) {
	artists := make(map[string]struct{}, len(q.seedIDs))
	for _, seedID := range q.seedIDs {
		tr, err := q.variant.Features.Meta(seedID)
		if err != nil {
			return nil, err
		}
		artists[strings.ToLower(tr.Artist)] = struct{}{}
	}

	exact, err := q.candidatesWhere(func(tr *core.Track) bool {
		_, ok := artists[strings.ToLower(tr.Artist)]
		return ok
	})
	if err != nil {
		return nil, err
	}
	return e.runRestrictedWithPadding(q, exact)
}

// runGenre 流派策略：候选限制为与种子簇 dominant_genres
// 至少共享一个标签的轨道；补齐规则与艺人策略一致。
// 噪声簇种子没有簇级流派统计，不贡献任何标签。
func (e *Engine) runGenre(q *query) ([]*scored, error) {
	genres := make(map[string]struct{})
	for _, seedID := range q.seedIDs {
		cid, err := q.variant.Clusters.ClusterOf(seedID)
		if err != nil {
			return nil, err
		}
		if cid == core.NoiseCluster {
			continue
		}
		stats, err := q.variant.Clusters.Stats(cid)
		if err != nil {
			return nil, err
		}
		for _, g := range stats.DominantGenres {
			genres[strings.ToLower(g)] = struct{}{}
		}
	}

	exact, err := q.candidatesWhere(func(tr *core.Track) bool {
		for _, g := range tr.Genres {
			if _, ok := genres[strings.ToLower(g)]; ok {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return e.runRestrictedWithPadding(q, exact)
}

// runRestrictedWithPadding 在受限集合内按全局规则排序；
// 精确命中不足 count 时，从剩余轨道（排除种子与精确集合）补齐全局结果，
// 精确条目整体排在补齐条目之前。
func (e *Engine) runRestrictedWithPadding(q *query, exact map[string]struct{}) ([]*scored, error) {
	var hits []seedHits
	if len(exact) > 0 {
		var err error
		hits, err = searchSeeds(q, exact, nil, tierPrimary, "exact", false)
		if err != nil {
			return nil, err
		}
	}

	merged := rank(mergeBest(hits), q.count)
	if len(merged) >= q.count {
		return merged, nil
	}

	// 补齐：精确集合整体进排除名单，保证补齐条目与精确条目不重叠
	padHits, err := searchSeeds(q, q.allowed, exact, tierPadded, "padded", false)
	if err != nil {
		return nil, err
	}
	return rank(mergeBest(append(hits, padHits...)), q.count), nil
}

// searchSeeds 对每个种子独立执行一次最近邻检索。
func searchSeeds(q *query, candidates, extraExclude map[string]struct{}, tier int, match string, fallback bool) ([]seedHits, error) {
	hits := make([]seedHits, 0, len(q.seedIDs))
	for _, seedID := range q.seedIDs {
		h, err := searchSeed(q, seedID, candidates, extraExclude, tier, match, fallback)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// searchSeed 以单个种子为查询点检索 count 个最近邻。
// 种子集合永远在排除名单里，输出绝不包含种子。
func searchSeed(q *query, seedID string, candidates, extraExclude map[string]struct{}, tier int, match string, fallback bool) (seedHits, error) {
	exclude := q.seedSet
	if len(extraExclude) > 0 {
		exclude = make(map[string]struct{}, len(q.seedSet)+len(extraExclude))
		for id := range q.seedSet {
			exclude[id] = struct{}{}
		}
		for id := range extraExclude {
			exclude[id] = struct{}{}
		}
	}

	neighbors, err := q.variant.Index.Nearest(q.seedVecs[seedID], q.count, exclude, candidates)
	if err != nil {
		return seedHits{}, err
	}
	return seedHits{
		seedID:    seedID,
		neighbors: neighbors,
		tier:      tier,
		match:     match,
		fallback:  fallback,
	}, nil
}

// restrict 把成员列表物化为候选集合：去掉种子、应用过滤。
func (q *query) restrict(members []string) map[string]struct{} {
	out := make(map[string]struct{}, len(members))
	for _, id := range members {
		if _, isSeed := q.seedSet[id]; isSeed {
			continue
		}
		if q.allowed != nil {
			if _, ok := q.allowed[id]; !ok {
				continue
			}
		}
		out[id] = struct{}{}
	}
	return out
}

// candidatesWhere 按谓词枚举候选集合：去掉种子、应用过滤。
func (q *query) candidatesWhere(pred func(tr *core.Track) bool) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, id := range q.variant.Features.AllIDs() {
		if _, isSeed := q.seedSet[id]; isSeed {
			continue
		}
		if q.allowed != nil {
			if _, ok := q.allowed[id]; !ok {
				continue
			}
		}
		tr, err := q.variant.Features.Meta(id)
		if err != nil {
			return nil, err
		}
		if pred(tr) {
			out[id] = struct{}{}
		}
	}
	return out, nil
}
