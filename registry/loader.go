package registry

import (
	"context"
	"fmt"

	"github.com/rushteam/trackit/core"
	"github.com/rushteam/trackit/store"
	"github.com/rushteam/trackit/vector"
)

// loadVariant 拉取并组装单个变体：fetch -> decode -> 构建三元组。
// 任何一步失败都包装为该变体的 LOAD_FAILED。
func loadVariant(ctx context.Context, src store.BundleSource, ref VariantRef) (*core.ModelVariant, error) {
	if ref.Name == "" || ref.Location == "" {
		return nil, loadFailed(ref.Name, fmt.Errorf("name and location are required"))
	}

	data, err := src.Fetch(ctx, ref.Location)
	if err != nil {
		return nil, loadFailed(ref.Name, err)
	}

	bundle, err := store.DecodeBundle(data)
	if err != nil {
		return nil, loadFailed(ref.Name, err)
	}
	if bundle.Name != ref.Name {
		return nil, loadFailed(ref.Name, fmt.Errorf("bundle name %q does not match ref %q", bundle.Name, ref.Name))
	}

	features, err := store.NewMemoryFeatureStore(bundle.Dim, bundle.Rows())
	if err != nil {
		return nil, loadFailed(ref.Name, err)
	}

	clusters, err := store.NewMemoryClusterIndex(bundle.Assignments(), bundle.Stats())
	if err != nil {
		return nil, loadFailed(ref.Name, err)
	}

	index, err := vector.NewBruteForce(bundle.Dim, features.Vectors())
	if err != nil {
		return nil, loadFailed(ref.Name, err)
	}

	return &core.ModelVariant{
		Name:     ref.Name,
		Features: features,
		Clusters: clusters,
		Index:    index,
	}, nil
}

func loadFailed(name string, cause error) *core.DomainError {
	return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeLoadFailed,
		fmt.Sprintf("registry: load variant %q: %v", name, cause))
}
