package registry

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/trackit/core"
	"github.com/rushteam/trackit/store"
)

// VariantRef 指向一个待加载的变体工件。
type VariantRef struct {
	Name     string // 变体名（与工件内的 name 必须一致）
	Location string // 工件位置（文件路径或 Redis key，取决于 BundleSource）
}

// Registry 持有全部已加载的模型变体，并维护"当前活跃变体"指针。
//
// 生命周期：
//   - 进程启动时 LoadAll 一次性加载全部可发现变体（并行，失败按变体记录）
//   - 之后变体集合不再变化；Switch 只原子地重指活跃指针
//
// 并发模型：
//   - 读路径（Get/Active/Available）无锁或只读锁，任意并发安全
//   - Switch 之间串行化；已捕获旧变体引用的在途请求继续使用旧变体，
//     旧变体不会被删除，天然不存在读到半切换状态的问题
type Registry struct {
	mu       sync.RWMutex
	variants map[string]*core.ModelVariant
	failures map[string]error
	loaded   bool

	switchMu sync.Mutex // 串行化 Switch；后提交者生效
	active   atomic.Pointer[core.ModelVariant]
}

// New 创建空注册表。
func New() *Registry {
	return &Registry{
		variants: make(map[string]*core.ModelVariant),
		failures: make(map[string]error),
	}
}

// LoadAll 并行加载 refs 指向的全部变体。
// 单个变体加载失败只记录（Failures），不中断其他变体；
// 零个变体加载成功时返回 REGISTRY_EMPTY。
// 活跃指针初始化为 refs 顺序中第一个加载成功的变体。
func (r *Registry) LoadAll(ctx context.Context, src store.BundleSource, refs []VariantRef) error {
	if len(refs) == 0 {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeRegistryEmpty,
			"registry: no variants configured")
	}

	r.mu.Lock()
	if r.loaded {
		r.mu.Unlock()
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeInvalidInput,
			"registry: already loaded")
	}
	r.loaded = true
	r.mu.Unlock()

	eg, gctx := errgroup.WithContext(ctx)
	for _, ref := range refs {
		ref := ref
		eg.Go(func() error {
			variant, err := loadVariant(gctx, src, ref)

			r.mu.Lock()
			defer r.mu.Unlock()
			if err != nil {
				// 加载失败按变体记录，不致命
				r.failures[ref.Name] = err
				return nil
			}
			r.variants[ref.Name] = variant
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.variants) == 0 {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeRegistryEmpty,
			"registry: all variants failed to load")
	}

	// 按 refs 顺序取第一个加载成功的作为初始活跃变体（确定性）
	for _, ref := range refs {
		if v, ok := r.variants[ref.Name]; ok {
			r.active.Store(v)
			break
		}
	}
	return nil
}

// Get 返回指定变体；未加载时返回 VARIANT_NOT_FOUND。
func (r *Registry) Get(name string) (*core.ModelVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[name]
	if !ok {
		return nil, core.NewVariantNotFound(name)
	}
	return v, nil
}

// Active 返回当前活跃变体；注册表为空时返回 REGISTRY_EMPTY。
// 调用方捕获到的引用在 Switch 之后依然有效。
func (r *Registry) Active() (*core.ModelVariant, error) {
	v := r.active.Load()
	if v == nil {
		return nil, core.NewDomainError(core.ModuleRegistry, core.ErrorCodeRegistryEmpty,
			"registry: no active variant")
	}
	return v, nil
}

// Switch 原子地把活跃指针重指到 name；目标未加载时返回 VARIANT_NOT_FOUND。
// 不阻塞、不作废针对旧活跃变体的在途读取。
func (r *Registry) Switch(name string) error {
	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	r.mu.RLock()
	v, ok := r.variants[name]
	r.mu.RUnlock()
	if !ok {
		return core.NewVariantNotFound(name)
	}

	r.active.Store(v)
	return nil
}

// Available 返回全部已加载变体的摘要（按名称升序）。
// 加载失败的变体不出现在列表中。
func (r *Registry) Available() []core.VariantSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.VariantSummary, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Failures 返回加载失败记录（变体名 -> 错误），供健康检查/观测使用。
func (r *Registry) Failures() map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]error, len(r.failures))
	for name, err := range r.failures {
		out[name] = err
	}
	return out
}
