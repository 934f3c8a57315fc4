package store

import (
	"testing"

	"github.com/rushteam/trackit/core"
)

func validBundle() *Bundle {
	return &Bundle{
		Name: "naive_features",
		Dim:  2,
		Tracks: []BundleTrack{
			{ID: "t1", Name: "one", Artist: "alice", Popularity: 50, Cluster: 1, Vector: []float64{0, 1}},
			{ID: "t2", Name: "two", Artist: "bob", Popularity: 60, Cluster: 1, Vector: []float64{0, 2}},
			{ID: "t3", Name: "three", Artist: "cara", Popularity: 70, Cluster: core.NoiseCluster, Vector: []float64{9, 9}},
		},
		Clusters: []BundleCluster{
			{ID: 1, Cohesion: 0.9, Separation: 0.8, DominantGenres: []string{"rock"}},
		},
	}
}

func TestBundle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *Bundle)
		wantErr bool
	}{
		{name: "valid", mutate: func(b *Bundle) {}},
		{name: "missing name", mutate: func(b *Bundle) { b.Name = "" }, wantErr: true},
		{name: "explicit euclidean metric", mutate: func(b *Bundle) { b.Metric = "euclidean" }},
		{name: "unsupported metric", mutate: func(b *Bundle) { b.Metric = "cosine" }, wantErr: true},
		{name: "non-positive dim", mutate: func(b *Bundle) { b.Dim = 0 }, wantErr: true},
		{name: "no tracks", mutate: func(b *Bundle) { b.Tracks = nil }, wantErr: true},
		{
			name:    "duplicate track id",
			mutate:  func(b *Bundle) { b.Tracks = append(b.Tracks, b.Tracks[0]) },
			wantErr: true,
		},
		{
			name:    "vector dimension mismatch",
			mutate:  func(b *Bundle) { b.Tracks[0].Vector = []float64{1} },
			wantErr: true,
		},
		{
			name:    "popularity out of range",
			mutate:  func(b *Bundle) { b.Tracks[0].Popularity = 101 },
			wantErr: true,
		},
		{
			name:    "missing cluster stats",
			mutate:  func(b *Bundle) { b.Clusters = nil },
			wantErr: true,
		},
		{
			name:    "duplicate cluster stats",
			mutate:  func(b *Bundle) { b.Clusters = append(b.Clusters, b.Clusters[0]) },
			wantErr: true,
		},
		{
			name:   "noise cluster needs no stats",
			mutate: func(b *Bundle) { b.Tracks = b.Tracks[2:]; b.Clusters = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(b)
			err := b.Validate()
			if tt.wantErr && !core.IsLoadFailed(err) {
				t.Errorf("Validate() error = %v, want LOAD_FAILED", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestDecodeBundle(t *testing.T) {
	t.Run("corrupt payload", func(t *testing.T) {
		if _, err := DecodeBundle([]byte("{not json")); !core.IsLoadFailed(err) {
			t.Errorf("DecodeBundle() error = %v, want LOAD_FAILED", err)
		}
	})

	t.Run("valid payload round trip", func(t *testing.T) {
		data := []byte(`{
			"name": "naive_features",
			"dim": 2,
			"tracks": [
				{"id": "t1", "name": "one", "artist": "alice", "popularity": 50, "cluster": 1, "vector": [0, 1]},
				{"id": "t2", "name": "two", "artist": "bob", "popularity": 60, "cluster": -1, "vector": [0, 2]}
			],
			"clusters": [{"id": 1, "cohesion": 0.9, "separation": 0.8, "dominant_genres": ["rock"]}]
		}`)
		b, err := DecodeBundle(data)
		if err != nil {
			t.Fatalf("DecodeBundle() error = %v", err)
		}
		if b.Name != "naive_features" || len(b.Tracks) != 2 {
			t.Errorf("DecodeBundle() = %+v", b)
		}
		if b.Assignments()["t2"] != core.NoiseCluster {
			t.Errorf("Assignments()[t2] = %d, want noise", b.Assignments()["t2"])
		}
		if len(b.Rows()) != 2 || b.Rows()[0].Track.Artist != "alice" {
			t.Errorf("Rows() = %+v", b.Rows())
		}
		if len(b.Stats()) != 1 || b.Stats()[0].Cohesion != 0.9 {
			t.Errorf("Stats() = %+v", b.Stats())
		}
	})
}
