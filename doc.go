// Package trackit 是一个音乐轨道相似推荐引擎（Track Recommender Kit）。
//
// 设计要点：
// - Variant-first: 多套特征空间模型（naive/pca/combined/...）作为不可变 ModelVariant 共存，
//   Registry 原子切换活跃变体，在途查询不受切换影响
// - Labels-first: 结果条目携带标准化 Label（match/fallback/seed），支持 explain / 观测
// - 请求路径纯内存：工件只在加载期读取（文件系统或 Redis），recommend/compare 不做任何 I/O
package trackit

import (
	"github.com/rushteam/trackit/core"
	"github.com/rushteam/trackit/engine"
	"github.com/rushteam/trackit/registry"
)

// 轻量 facade：便于用户直接 import "trackit" 使用核心抽象。
type Engine = engine.Engine
type Request = engine.Request
type Registry = registry.Registry
type Strategy = core.Strategy
type Track = core.Track
type Recommendation = core.Recommendation
type RecommendationResult = core.RecommendationResult

const (
	StrategyGlobal  = core.StrategyGlobal
	StrategyCluster = core.StrategyCluster
	StrategyHybrid  = core.StrategyHybrid
	StrategyArtist  = core.StrategyArtist
	StrategyGenre   = core.StrategyGenre
)
