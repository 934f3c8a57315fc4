package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/trackit/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source:
  type: fs
  root: ./artifacts
variants:
  - name: naive_features
    bundle: naive_features.json
  - name: pca_features
    bundle: pca_features.json
engine:
  cluster_fallback_min: 5
  default_count: 20
  default_strategy: cluster
  filter: "track.popularity > 10"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.Type != "fs" || cfg.Source.Root != "./artifacts" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Engine.ClusterFallbackMin != 5 || cfg.Engine.DefaultCount != 20 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.DefaultStrategy() != core.StrategyCluster {
		t.Errorf("DefaultStrategy() = %s, want cluster", cfg.DefaultStrategy())
	}

	refs := cfg.VariantRefs()
	if len(refs) != 2 || refs[0].Name != "naive_features" || refs[0].Location != "naive_features.json" {
		t.Errorf("VariantRefs() = %v", refs)
	}
	// order follows the manifest: the first ref becomes the initial active variant
	if refs[1].Name != "pca_features" {
		t.Errorf("VariantRefs()[1] = %v", refs[1])
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Load() on missing file should fail")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "variants: [broken")
		if _, err := Load(path); err == nil {
			t.Error("Load() on malformed yaml should fail")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Variants = []VariantConfig{
			{Name: "naive_features", Bundle: "naive.json"},
			{Name: "pca_features", Bundle: "pca.json"},
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(cfg *Config) {}},
		{name: "no variants", mutate: func(cfg *Config) { cfg.Variants = nil }, wantErr: true},
		{
			name:    "duplicate variant name",
			mutate:  func(cfg *Config) { cfg.Variants[1].Name = cfg.Variants[0].Name },
			wantErr: true,
		},
		{
			name:    "variant without bundle",
			mutate:  func(cfg *Config) { cfg.Variants[0].Bundle = "" },
			wantErr: true,
		},
		{
			name:    "unknown source type",
			mutate:  func(cfg *Config) { cfg.Source.Type = "s3" },
			wantErr: true,
		},
		{name: "redis source type", mutate: func(cfg *Config) { cfg.Source.Type = "redis" }},
		{
			name:    "unparseable strategy",
			mutate:  func(cfg *Config) { cfg.Engine.DefaultStrategy = "bogus" },
			wantErr: true,
		},
		{name: "valid strategy", mutate: func(cfg *Config) { cfg.Engine.DefaultStrategy = "hybrid" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestConfig_BuildSource(t *testing.T) {
	cfg := &Config{}
	cfg.Variants = []VariantConfig{{Name: "v", Bundle: "v.json"}}
	cfg.Source.Type = "fs"
	cfg.Source.Root = t.TempDir()

	src, err := cfg.BuildSource()
	if err != nil {
		t.Fatalf("BuildSource() error = %v", err)
	}
	defer src.Close()
	if src.Name() != "fs" {
		t.Errorf("Name() = %s, want fs", src.Name())
	}
}
