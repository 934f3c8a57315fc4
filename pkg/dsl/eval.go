package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/trackit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("track", cel.DynType),
		cel.Variable("meta", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Filter 是轨道元信息过滤器，使用 CEL (Common Expression Language) 实现。
// CEL 是 Google 开发的表达式语言，具有类型安全、高性能、线程安全等特性。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：track.popularity > 50
//   - 字符串：track.artist == "Nina Simone"
//   - 包含："jazz" in track.genres
//   - 逻辑：track.popularity >= 30 && "rock" in track.genres
//   - 自定义元信息：meta.explicit == false
//
// 表达式在 NewFilter 时编译一次，之后可被任意多个 goroutine 并发 Match。
type Filter struct {
	expr string
	prg  cel.Program
}

// NewFilter 编译过滤表达式。空表达式返回 nil 过滤器（放行所有轨道）。
// 编译失败返回 INVALID_INPUT 错误。
func NewFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError,
			fmt.Sprintf("dsl: cel env: %v", err))
	}

	// 编译表达式
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dsl: compile %q: %v", expr, issues.Err()))
	}

	// 创建程序
	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dsl: program %q: %v", expr, err))
	}

	return &Filter{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式（用于结果标注/观测）。
func (f *Filter) Expr() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match 对单条轨道求值，返回布尔结果。
// 表达式必须返回布尔值，否则报错。
// 注意：CEL 访问不存在的 key 会报错，调用方可用 has(meta.key) 检查存在性。
func (f *Filter) Match(tr *core.Track) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(buildInput(tr))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(tr *core.Track) map[string]interface{} {
	genres := make([]interface{}, 0, len(tr.Genres))
	for _, g := range tr.Genres {
		genres = append(genres, g)
	}

	track := map[string]interface{}{
		"id":         tr.ID,
		"name":       tr.Name,
		"artist":     tr.Artist,
		"genres":     genres,
		"popularity": tr.Popularity,
		"cluster":    tr.ClusterID,
	}

	meta := tr.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	return map[string]interface{}{
		"track": track,
		"meta":  meta,
	}
}
