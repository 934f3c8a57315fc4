package store

import (
	"testing"

	"github.com/rushteam/trackit/core"
)

func testRows() []Row {
	mk := func(id, artist string, cluster int, vec []float64) Row {
		return Row{
			Track:  &core.Track{ID: id, Name: id, Artist: artist, ClusterID: cluster},
			Vector: vec,
		}
	}
	return []Row{
		mk("t3", "alice", 1, []float64{0, 3}),
		mk("t1", "alice", 1, []float64{0, 1}),
		mk("t2", "bob", 1, []float64{0, 2}),
		mk("t4", "bob", 2, []float64{5, 5}),
		mk("t5", "cara", core.NoiseCluster, []float64{9, 9}),
	}
}

func TestNewMemoryFeatureStore_Validation(t *testing.T) {
	tests := []struct {
		name string
		dim  int
		rows []Row
	}{
		{name: "zero dimension", dim: 0, rows: testRows()},
		{name: "no rows", dim: 2, rows: nil},
		{
			name: "duplicate id",
			dim:  2,
			rows: append(testRows(), Row{Track: &core.Track{ID: "t1"}, Vector: []float64{0, 0}}),
		},
		{
			name: "dimension mismatch",
			dim:  2,
			rows: append(testRows(), Row{Track: &core.Track{ID: "t9"}, Vector: []float64{0}}),
		},
		{
			name: "empty id",
			dim:  2,
			rows: []Row{{Track: &core.Track{}, Vector: []float64{0, 0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMemoryFeatureStore(tt.dim, tt.rows); !core.IsInvalidInput(err) {
				t.Errorf("NewMemoryFeatureStore() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestMemoryFeatureStore_Lookup(t *testing.T) {
	m, err := NewMemoryFeatureStore(2, testRows())
	if err != nil {
		t.Fatalf("NewMemoryFeatureStore() error = %v", err)
	}

	if m.Dim() != 2 || m.Len() != 5 {
		t.Errorf("Dim()=%d Len()=%d, want 2 and 5", m.Dim(), m.Len())
	}

	vec, err := m.Get("t2")
	if err != nil || vec[1] != 2 {
		t.Errorf("Get(t2) = %v, %v", vec, err)
	}
	tr, err := m.Meta("t2")
	if err != nil || tr.Artist != "bob" {
		t.Errorf("Meta(t2) = %v, %v", tr, err)
	}

	if _, err := m.Get("nope"); !core.IsUnknownTrack(err) {
		t.Errorf("Get(nope) error = %v, want UNKNOWN_TRACK", err)
	}
	if _, err := m.Meta("nope"); !core.IsUnknownTrack(err) {
		t.Errorf("Meta(nope) error = %v, want UNKNOWN_TRACK", err)
	}

	// AllIDs sorted ascending
	all := m.AllIDs()
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Fatalf("AllIDs() not sorted: %v", all)
		}
	}
}

func TestMemoryFeatureStore_Sample(t *testing.T) {
	m, err := NewMemoryFeatureStore(2, testRows(), WithSampleSeed(42))
	if err != nil {
		t.Fatalf("NewMemoryFeatureStore() error = %v", err)
	}

	t.Run("distinct ids", func(t *testing.T) {
		got, err := m.Sample(3)
		if err != nil {
			t.Fatalf("Sample() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Sample(3) returned %d ids", len(got))
		}
		seen := map[string]struct{}{}
		for _, id := range got {
			if _, dup := seen[id]; dup {
				t.Errorf("Sample() returned duplicate %s", id)
			}
			seen[id] = struct{}{}
		}
	})

	t.Run("n larger than pool returns all", func(t *testing.T) {
		got, err := m.Sample(100)
		if err != nil {
			t.Fatalf("Sample() error = %v", err)
		}
		if len(got) != 5 {
			t.Errorf("Sample(100) returned %d ids, want 5", len(got))
		}
	})

	t.Run("restricted to one cluster", func(t *testing.T) {
		got, err := m.Sample(10, 1)
		if err != nil {
			t.Fatalf("Sample() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Sample(10, 1) returned %d ids, want 3", len(got))
		}
		for _, id := range got {
			tr, _ := m.Meta(id)
			if tr.ClusterID != 1 {
				t.Errorf("Sample(10, 1) returned %s from cluster %d", id, tr.ClusterID)
			}
		}
	})

	t.Run("unknown cluster", func(t *testing.T) {
		if _, err := m.Sample(1, 99); !core.IsUnknownCluster(err) {
			t.Errorf("Sample(1, 99) error = %v, want UNKNOWN_CLUSTER", err)
		}
	})

	t.Run("non-positive n", func(t *testing.T) {
		if _, err := m.Sample(0); !core.IsInvalidInput(err) {
			t.Errorf("Sample(0) error = %v, want INVALID_INPUT", err)
		}
	})
}
