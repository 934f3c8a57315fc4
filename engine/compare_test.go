package engine

import (
	"context"
	"testing"

	"github.com/rushteam/trackit/core"
)

func TestEngine_Compare(t *testing.T) {
	eng := newTestEngine(t, Config{})
	ctx := context.Background()

	t.Run("runs every label, failures isolated", func(t *testing.T) {
		labels := []CompareLabel{
			{Variant: "naive_features", Strategy: core.StrategyGlobal},
			{Variant: "missing", Strategy: core.StrategyGlobal},
			{Strategy: core.StrategyCluster},
		}
		entries, err := eng.Compare(ctx, []string{"a1"}, labels, 3)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("Compare() returned %d entries, want 3", len(entries))
		}

		// output order follows the requested labels, not completion order
		for i := range entries {
			if entries[i].Label != labels[i] {
				t.Errorf("entry %d label = %v, want %v", i, entries[i].Label, labels[i])
			}
		}

		if entries[0].Err != nil || len(entries[0].Result.Items) != 3 {
			t.Errorf("entry 0 = %+v", entries[0])
		}
		if !core.IsVariantNotFound(entries[1].Err) {
			t.Errorf("entry 1 error = %v, want VARIANT_NOT_FOUND", entries[1].Err)
		}
		if entries[2].Err != nil || entries[2].Result.Variant != "naive_features" {
			t.Errorf("entry 2 = %+v, want active variant", entries[2])
		}
	})

	t.Run("seed unknown in one variant fails only that entry", func(t *testing.T) {
		labels := []CompareLabel{
			{Variant: "naive_features"},
			{Variant: "small"},
		}
		entries, err := eng.Compare(ctx, []string{"a1"}, labels, 3)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if entries[0].Err != nil {
			t.Errorf("entry 0 error = %v", entries[0].Err)
		}
		if !core.IsUnknownTrack(entries[1].Err) {
			t.Errorf("entry 1 error = %v, want UNKNOWN_TRACK", entries[1].Err)
		}
	})

	t.Run("active variant is untouched", func(t *testing.T) {
		labels := []CompareLabel{{Variant: "small"}}
		if _, err := eng.Compare(ctx, []string{"c1"}, labels, 1); err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		result, err := eng.Recommend(ctx, &Request{SeedIDs: []string{"a1"}, Count: 1})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if result.Variant != "naive_features" {
			t.Errorf("active variant = %s after Compare, want naive_features", result.Variant)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := eng.Compare(ctx, nil, []CompareLabel{{}}, 3); !core.IsInvalidInput(err) {
			t.Errorf("Compare() without seeds error = %v, want INVALID_INPUT", err)
		}
		if _, err := eng.Compare(ctx, []string{"a1"}, nil, 3); !core.IsInvalidInput(err) {
			t.Errorf("Compare() without labels error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestCompareLabel_String(t *testing.T) {
	if got := (CompareLabel{Strategy: core.StrategyGlobal}).String(); got != "active/global" {
		t.Errorf("String() = %q, want active/global", got)
	}
	if got := (CompareLabel{Variant: "pca", Strategy: core.StrategyCluster}).String(); got != "pca/cluster" {
		t.Errorf("String() = %q, want pca/cluster", got)
	}
}

func TestEngine_GetClusterInfo(t *testing.T) {
	eng := newTestEngine(t, Config{})
	ctx := context.Background()

	t.Run("stats and sample", func(t *testing.T) {
		info, err := eng.GetClusterInfo(ctx, 1, "", 3)
		if err != nil {
			t.Fatalf("GetClusterInfo() error = %v", err)
		}
		if info.Stats.Size != 5 || info.Stats.Cohesion != 0.9 {
			t.Errorf("Stats = %+v", info.Stats)
		}
		if len(info.Stats.DominantGenres) != 1 || info.Stats.DominantGenres[0] != "rock" {
			t.Errorf("DominantGenres = %v", info.Stats.DominantGenres)
		}
		if len(info.SampleTracks) != 3 {
			t.Fatalf("SampleTracks = %d, want 3", len(info.SampleTracks))
		}
		for _, tr := range info.SampleTracks {
			if tr.ClusterID != 1 {
				t.Errorf("sample %s from cluster %d, want 1", tr.ID, tr.ClusterID)
			}
		}
	})

	t.Run("zero sample size skips sampling", func(t *testing.T) {
		info, err := eng.GetClusterInfo(ctx, 2, "", 0)
		if err != nil {
			t.Fatalf("GetClusterInfo() error = %v", err)
		}
		if info.Stats.Size != 4 || len(info.SampleTracks) != 0 {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("explicit variant", func(t *testing.T) {
		info, err := eng.GetClusterInfo(ctx, 1, "small", 0)
		if err != nil {
			t.Fatalf("GetClusterInfo() error = %v", err)
		}
		if info.Stats.Size != 2 {
			t.Errorf("Stats.Size = %d, want 2", info.Stats.Size)
		}
	})

	t.Run("unknown cluster", func(t *testing.T) {
		if _, err := eng.GetClusterInfo(ctx, 99, "", 0); !core.IsUnknownCluster(err) {
			t.Errorf("GetClusterInfo(99) error = %v, want UNKNOWN_CLUSTER", err)
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		if _, err := eng.GetClusterInfo(ctx, 1, "missing", 0); !core.IsVariantNotFound(err) {
			t.Errorf("GetClusterInfo() error = %v, want VARIANT_NOT_FOUND", err)
		}
	})
}
