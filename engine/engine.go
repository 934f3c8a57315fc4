package engine

import (
	"context"
	"fmt"

	"github.com/rushteam/trackit/core"
	"github.com/rushteam/trackit/pkg/dsl"
	"github.com/rushteam/trackit/registry"
)

// Config 是引擎的策略配置。
type Config struct {
	// ClusterFallbackMin 是簇内策略的回退下限：簇内非种子候选数小于
	// max(ClusterFallbackMin, count) 时，该种子的贡献回退到全局策略。
	// 0 表示"小于请求数量即回退"。
	ClusterFallbackMin int

	// DefaultCount 是 Request.Count 为 0 时的默认返回数量（默认 10）。
	DefaultCount int

	// DefaultStrategy 是 Request.Strategy 为空时的默认策略（默认 global）。
	DefaultStrategy core.Strategy

	// Filter 是可选的全局 CEL 过滤表达式，作用于所有候选（种子不受过滤影响）。
	Filter string
}

// Engine 是推荐编排器：在活跃或指定变体之上执行推荐策略，
// 合并多种子查询、排序去重并格式化结果。
//
// 并发模型：变体数据全部不可变，Recommend/Compare 是纯内存计算，
// 任意并发调用安全；一次调用开始时捕获的变体引用在变体切换后依然有效。
type Engine struct {
	registry *registry.Registry
	cfg      Config
	filter   *dsl.Filter // 编译后的全局过滤器，可为 nil
}

// New 创建引擎。配置里的过滤表达式在此时编译，非法表达式直接报错。
func New(reg *registry.Registry, cfg Config) (*Engine, error) {
	if reg == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: registry is required")
	}
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = 10
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = core.StrategyGlobal
	}
	if !cfg.DefaultStrategy.Valid() {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("engine: invalid default strategy %q", cfg.DefaultStrategy))
	}
	if cfg.ClusterFallbackMin < 0 {
		cfg.ClusterFallbackMin = 0
	}

	filter, err := dsl.NewFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	return &Engine{registry: reg, cfg: cfg, filter: filter}, nil
}

// Request 是一次推荐查询。
type Request struct {
	SeedIDs  []string      // 种子轨道（1..N，有序）
	Strategy core.Strategy // 为空时使用 DefaultStrategy
	Count    int           // 为 0 时使用 DefaultCount
	Variant  string        // 为空时使用当前活跃变体
	Filter   string        // 可选 CEL 过滤表达式，覆盖全局配置
}

// Recommend 执行推荐查询。
//
// 前置条件：所有种子必须在目标变体的 FeatureStore 中可解析，
// 任一种子未知则整个请求以 UNKNOWN_TRACK 失败（不返回部分结果）。
//
// 后置条件：结果长度 ≤ count；结果不含任何种子；对相同的
// (seeds, strategy, variant, 注册表状态) 输出逐字节一致。
// 候选集耗尽返回空结果而非错误。
func (e *Engine) Recommend(ctx context.Context, req *Request) (*core.RecommendationResult, error) {
	q, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	return e.run(q)
}

// query 是一次经过校验、种子已解析的查询。
type query struct {
	variant  *core.ModelVariant
	strategy core.Strategy
	count    int
	seedIDs  []string
	seedVecs map[string][]float64
	seedSet  map[string]struct{}
	allowed  map[string]struct{} // 过滤后的候选全集；nil 表示无过滤
}

// prepare 校验请求、解析变体与种子、应用候选过滤。
func (e *Engine) prepare(req *Request) (*query, error) {
	if req == nil || len(req.SeedIDs) == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: at least one seed track is required")
	}
	if req.Count < 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("engine: count must be positive, got %d", req.Count))
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = e.cfg.DefaultStrategy
	}
	if !strategy.Valid() {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("engine: unknown strategy %q", strategy))
	}

	count := req.Count
	if count == 0 {
		count = e.cfg.DefaultCount
	}

	// 解析变体：显式指定或当前活跃。此处捕获的引用贯穿整次查询，
	// 之后发生的 Switch 不影响本次结果。
	var variant *core.ModelVariant
	var err error
	if req.Variant != "" {
		variant, err = e.registry.Get(req.Variant)
	} else {
		variant, err = e.registry.Active()
	}
	if err != nil {
		return nil, err
	}

	// 解析种子向量：任一未知即整体失败
	seedVecs := make(map[string][]float64, len(req.SeedIDs))
	seedSet := make(map[string]struct{}, len(req.SeedIDs))
	for _, id := range req.SeedIDs {
		vec, err := variant.Features.Get(id)
		if err != nil {
			return nil, err
		}
		seedVecs[id] = vec
		seedSet[id] = struct{}{}
	}

	filter := e.filter
	if req.Filter != "" {
		filter, err = dsl.NewFilter(req.Filter)
		if err != nil {
			return nil, err
		}
	}

	allowed, err := buildAllowed(variant, filter)
	if err != nil {
		return nil, err
	}

	return &query{
		variant:  variant,
		strategy: strategy,
		count:    count,
		seedIDs:  dedupeSeeds(req.SeedIDs),
		seedVecs: seedVecs,
		seedSet:  seedSet,
		allowed:  allowed,
	}, nil
}

// run 按策略执行并格式化结果。
func (e *Engine) run(q *query) (*core.RecommendationResult, error) {
	var (
		ranked []*scored
		err    error
	)
	switch q.strategy {
	case core.StrategyGlobal:
		ranked, err = e.runGlobal(q)
	case core.StrategyCluster:
		ranked, err = e.runCluster(q)
	case core.StrategyHybrid:
		ranked, err = e.runHybrid(q)
	case core.StrategyArtist:
		ranked, err = e.runArtist(q)
	case core.StrategyGenre:
		ranked, err = e.runGenre(q)
	}
	if err != nil {
		return nil, err
	}
	return formatResult(q, ranked)
}

// buildAllowed 把 CEL 过滤器物化为候选 ID 集合。无过滤器时返回 nil（全量）。
// 单条求值失败时保留该候选（过滤器失效不致命，与 FilterNode 的行为一致）。
func buildAllowed(variant *core.ModelVariant, filter *dsl.Filter) (map[string]struct{}, error) {
	if filter == nil {
		return nil, nil
	}
	allowed := make(map[string]struct{})
	for _, id := range variant.Features.AllIDs() {
		tr, err := variant.Features.Meta(id)
		if err != nil {
			return nil, err
		}
		ok, err := filter.Match(tr)
		if err != nil || ok {
			allowed[id] = struct{}{}
		}
	}
	return allowed, nil
}

// dedupeSeeds 去除重复种子，保留首次出现的顺序。
func dedupeSeeds(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ListVariants 返回已加载变体的摘要列表。
func (e *Engine) ListVariants() []core.VariantSummary {
	return e.registry.Available()
}

// SwitchVariant 原子切换活跃变体。
func (e *Engine) SwitchVariant(name string) error {
	return e.registry.Switch(name)
}

// ClusterInfo 是 cluster_info 查询的输出：统计 + 可选的抽样成员。
type ClusterInfo struct {
	Stats        *core.ClusterStats
	SampleTracks []*core.Track
}

// GetClusterInfo 返回指定簇的统计与至多 sampleN 个抽样成员。
// variant 为空时使用当前活跃变体；未知簇返回 UNKNOWN_CLUSTER。
func (e *Engine) GetClusterInfo(ctx context.Context, clusterID int, variant string, sampleN int) (*ClusterInfo, error) {
	var v *core.ModelVariant
	var err error
	if variant != "" {
		v, err = e.registry.Get(variant)
	} else {
		v, err = e.registry.Active()
	}
	if err != nil {
		return nil, err
	}

	stats, err := v.Clusters.Stats(clusterID)
	if err != nil {
		return nil, err
	}

	info := &ClusterInfo{Stats: stats}
	if sampleN > 0 {
		ids, err := v.Features.Sample(sampleN, clusterID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			tr, err := v.Features.Meta(id)
			if err != nil {
				return nil, err
			}
			info.SampleTracks = append(info.SampleTracks, tr)
		}
	}
	return info, nil
}
