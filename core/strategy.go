package core

import "fmt"

// Strategy 是推荐策略的封闭枚举。每次调用恰好使用一种策略。
type Strategy string

const (
	// StrategyGlobal 在整个特征空间检索最近邻。
	StrategyGlobal Strategy = "global"
	// StrategyCluster 把候选限制在种子所属簇内；簇过小或为噪声时按种子回退到 global。
	StrategyCluster Strategy = "cluster"
	// StrategyHybrid 合并簇内与全局结果，簇内命中严格排在仅全局命中之前。
	StrategyHybrid Strategy = "hybrid"
	// StrategyArtist 把候选限制为与任一种子同艺人的轨道（大小写不敏感精确匹配），不足时用全局补齐。
	StrategyArtist Strategy = "artist"
	// StrategyGenre 把候选限制为与种子簇 dominant_genres 至少共享一个标签的轨道，不足时用全局补齐。
	StrategyGenre Strategy = "genre"
)

// Valid 判断策略是否属于封闭集合。
func (s Strategy) Valid() bool {
	switch s {
	case StrategyGlobal, StrategyCluster, StrategyHybrid, StrategyArtist, StrategyGenre:
		return true
	default:
		return false
	}
}

// ParseStrategy 解析策略字符串；非法值返回 INVALID_INPUT 错误。
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(s)
	if !st.Valid() {
		return "", NewDomainError(ModuleEngine, ErrorCodeInvalidInput,
			fmt.Sprintf("engine: unknown strategy %q (supported: global, cluster, hybrid, artist, genre)", s))
	}
	return st, nil
}
