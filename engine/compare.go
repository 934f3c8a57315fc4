package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/trackit/core"
)

// CompareLabel 标识一次对比中的单个被比较项：变体 + 策略。
type CompareLabel struct {
	Variant  string        // 为空时使用当前活跃变体
	Strategy core.Strategy // 为空时使用引擎默认策略
}

func (l CompareLabel) String() string {
	variant := l.Variant
	if variant == "" {
		variant = "active"
	}
	return fmt.Sprintf("%s/%s", variant, l.Strategy)
}

// CompareEntry 是单个被比较项的结果：结果 + 耗时，或一个被隔离的错误。
type CompareEntry struct {
	Label   CompareLabel
	Result  *core.RecommendationResult
	Elapsed time.Duration
	Err     error
}

// Compare 把同一组种子依次跑过多个 (变体, 策略) 组合，返回每项的结果与耗时，
// 不改变活跃变体。
//
// 各项子查询相互独立、并发执行；单项失败（例如种子在某个变体中不存在、
// 变体未加载）只记录在该项的 Err 上，绝不中断其他项。
// 输出顺序等于请求的 labels 顺序，与完成顺序无关。
func (e *Engine) Compare(ctx context.Context, seedIDs []string, labels []CompareLabel, count int) ([]CompareEntry, error) {
	if len(seedIDs) == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: at least one seed track is required")
	}
	if len(labels) == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: at least one compare label is required")
	}

	entries := make([]CompareEntry, len(labels))
	eg, gctx := errgroup.WithContext(ctx)

	for i, label := range labels {
		i, label := i, label
		eg.Go(func() error {
			start := time.Now()
			result, err := e.Recommend(gctx, &Request{
				SeedIDs:  seedIDs,
				Strategy: label.Strategy,
				Count:    count,
				Variant:  label.Variant,
			})
			// 失败按项隔离，不向 errgroup 传播
			entries[i] = CompareEntry{
				Label:   label,
				Result:  result,
				Elapsed: time.Since(start),
				Err:     err,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
