package store

import (
	"encoding/json"
	"fmt"

	"github.com/rushteam/trackit/core"
)

// Bundle 是离线训练器产出的单变体工件：嵌入表 + 簇归属 + 簇统计。
// 这是加载契约（load contract）的唯一形态；引擎不关心训练器如何生成它。
type Bundle struct {
	Name     string          `json:"name"`
	Dim      int             `json:"dim"`
	Metric   string          `json:"metric,omitempty"` // 省略时为 euclidean
	Tracks   []BundleTrack   `json:"tracks"`
	Clusters []BundleCluster `json:"clusters"`
}

// BundleTrack 是工件中的单条轨道：元信息 + 向量 + 簇归属。
type BundleTrack struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Artist     string         `json:"artist"`
	Genres     []string       `json:"genres,omitempty"`
	Popularity int            `json:"popularity"`
	PreviewURL string         `json:"preview_url,omitempty"`
	Cluster    int            `json:"cluster"` // core.NoiseCluster 表示噪声
	Vector     []float64      `json:"vector"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// BundleCluster 是工件中的簇级统计条目（训练器预计算，引擎透传）。
type BundleCluster struct {
	ID               int      `json:"id"`
	Cohesion         float64  `json:"cohesion"`
	Separation       float64  `json:"separation"`
	DominantGenres   []string `json:"dominant_genres,omitempty"`
	DominantFeatures []string `json:"dominant_features,omitempty"`
}

// DecodeBundle 解析工件字节流并做结构校验。
// 任何校验失败都包装成 LOAD_FAILED，由 Registry 按变体记录。
func DecodeBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, loadFailed(fmt.Sprintf("bundle: parse: %v", err))
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate 校验工件自身一致性：
//   - 名称、维度、轨道列表非空
//   - 轨道 ID 唯一、向量维度一致、popularity 在 0-100
//   - 每个被引用的非噪声簇都有统计条目，统计条目不重复
func (b *Bundle) Validate() error {
	if b.Name == "" {
		return loadFailed("bundle: name is required")
	}
	if b.Dim <= 0 {
		return loadFailed(fmt.Sprintf("bundle %q: dim must be positive, got %d", b.Name, b.Dim))
	}
	if len(b.Tracks) == 0 {
		return loadFailed(fmt.Sprintf("bundle %q: no tracks", b.Name))
	}
	if b.Metric != "" && b.Metric != "euclidean" {
		return loadFailed(fmt.Sprintf("bundle %q: unsupported metric %q", b.Name, b.Metric))
	}

	seen := make(map[string]struct{}, len(b.Tracks))
	referenced := make(map[int]struct{})
	for _, tr := range b.Tracks {
		if tr.ID == "" {
			return loadFailed(fmt.Sprintf("bundle %q: track with empty id", b.Name))
		}
		if _, dup := seen[tr.ID]; dup {
			return loadFailed(fmt.Sprintf("bundle %q: duplicate track id %q", b.Name, tr.ID))
		}
		seen[tr.ID] = struct{}{}
		if len(tr.Vector) != b.Dim {
			return loadFailed(fmt.Sprintf("bundle %q: track %q has dimension %d, want %d",
				b.Name, tr.ID, len(tr.Vector), b.Dim))
		}
		if tr.Popularity < 0 || tr.Popularity > 100 {
			return loadFailed(fmt.Sprintf("bundle %q: track %q popularity %d out of range [0,100]",
				b.Name, tr.ID, tr.Popularity))
		}
		if tr.Cluster != core.NoiseCluster {
			referenced[tr.Cluster] = struct{}{}
		}
	}

	statSeen := make(map[int]struct{}, len(b.Clusters))
	for _, c := range b.Clusters {
		if _, dup := statSeen[c.ID]; dup {
			return loadFailed(fmt.Sprintf("bundle %q: duplicate cluster stats %d", b.Name, c.ID))
		}
		statSeen[c.ID] = struct{}{}
	}
	for cid := range referenced {
		if _, ok := statSeen[cid]; !ok {
			return loadFailed(fmt.Sprintf("bundle %q: missing stats for cluster %d", b.Name, cid))
		}
	}

	return nil
}

// Rows 把工件轨道转换为特征存储的构建输入。
func (b *Bundle) Rows() []Row {
	rows := make([]Row, 0, len(b.Tracks))
	for _, tr := range b.Tracks {
		rows = append(rows, Row{
			Track: &core.Track{
				ID:         tr.ID,
				Name:       tr.Name,
				Artist:     tr.Artist,
				Genres:     tr.Genres,
				Popularity: tr.Popularity,
				PreviewURL: tr.PreviewURL,
				ClusterID:  tr.Cluster,
				Meta:       tr.Meta,
			},
			Vector: tr.Vector,
		})
	}
	return rows
}

// Assignments 返回轨道 -> 簇的归属映射。
func (b *Bundle) Assignments() map[string]int {
	assign := make(map[string]int, len(b.Tracks))
	for _, tr := range b.Tracks {
		assign[tr.ID] = tr.Cluster
	}
	return assign
}

// Stats 返回簇统计（Size 留给索引按实际成员数填充）。
func (b *Bundle) Stats() []*core.ClusterStats {
	stats := make([]*core.ClusterStats, 0, len(b.Clusters))
	for _, c := range b.Clusters {
		stats = append(stats, &core.ClusterStats{
			ClusterID:        c.ID,
			Cohesion:         c.Cohesion,
			Separation:       c.Separation,
			DominantGenres:   c.DominantGenres,
			DominantFeatures: c.DominantFeatures,
		})
	}
	return stats
}

func loadFailed(msg string) *core.DomainError {
	return core.NewDomainError(core.ModuleBundle, core.ErrorCodeLoadFailed, msg)
}
