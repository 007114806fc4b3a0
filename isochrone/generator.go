package isochrone

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bluele/gcache"
	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/paulmach/orb"
	"github.com/samber/lo"
)

// 行程时间的来源，通常是*transit.Matrix
type TimeSource interface {
	Row(origin string) (transit.Row, error)
	Stations() []transit.Station
}

type Generator struct {
	source    TimeSource
	geom      Geometry
	walkSpeed float64
	stations  []transit.Station
	cache     gcache.Cache
}

type Option func(*Generator)

func WithGeometry(geom Geometry) Option {
	return func(g *Generator) {
		g.geom = geom
	}
}

// 步行速度（米/分钟）
func WithWalkSpeed(speed float64) Option {
	return func(g *Generator) {
		if speed > 0 && !math.IsInf(speed, 0) {
			g.walkSpeed = speed
		}
	}
}

func WithCacheSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.cache = gcache.New(size).LRU().Build()
		}
	}
}

func NewGenerator(source TimeSource, opts ...Option) *Generator {
	g := &Generator{
		source:    source,
		geom:      NewClipGeometry(DEFAULT_CIRCLE_SEGMENTS),
		walkSpeed: DEFAULT_WALK_SPEED,
		stations:  source.Stations(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.cache == nil {
		g.cache = gcache.New(DEFAULT_CACHE_SIZE).LRU().Build()
	}
	return g
}

func (g *Generator) WalkSpeed() float64 {
	return g.walkSpeed
}

// 去重并升序，为空时使用默认阈值
func normalizeThresholds(thresholds []float64) ([]float64, error) {
	if len(thresholds) == 0 {
		thresholds = DEFAULT_THRESHOLDS
	}
	for _, t := range thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, t)
		}
	}
	ret := lo.Uniq(thresholds)
	sort.Float64s(ret)
	return ret, nil
}

func cacheKey(origin string, thresholds []float64, walkSpeed float64) string {
	parts := lo.Map(thresholds, func(t float64, _ int) string {
		return strconv.FormatFloat(t, 'g', -1, 64)
	})
	return origin + "|" + strings.Join(parts, ",") + "|" + strconv.FormatFloat(walkSpeed, 'g', -1, 64)
}

// 生成origin的等时圈，每个阈值一个，按阈值升序
// walkSpeed<=0时使用默认步行速度
// 返回的等时圈为缓存的深拷贝，调用方可以修改
func (g *Generator) Generate(origin string, thresholds []float64, walkSpeed float64) ([]Band, error) {
	ts, err := normalizeThresholds(thresholds)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(walkSpeed) || math.IsInf(walkSpeed, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWalkSpeed, walkSpeed)
	}
	if walkSpeed <= 0 {
		walkSpeed = g.walkSpeed
	}
	key := cacheKey(origin, ts, walkSpeed)
	if v, err := g.cache.Get(key); err == nil {
		return cloneBands(v.([]Band)), nil
	}
	row, err := g.source.Row(origin)
	if err != nil {
		return nil, err
	}
	bands := make([]Band, 0, len(ts))
	for _, t := range ts {
		bands = append(bands, g.band(row, t, walkSpeed))
	}
	if err := g.cache.Set(key, bands); err != nil {
		log.Warnf("failed to cache isochrone of %s: %v", origin, err)
	}
	return cloneBands(bands), nil
}

func cloneBands(bands []Band) []Band {
	ret := make([]Band, len(bands))
	for i, b := range bands {
		ret[i] = Band{
			Minutes:  b.Minutes,
			Polygon:  b.Polygon.Clone(),
			Stations: append(make([]string, 0, len(b.Stations)), b.Stations...),
		}
	}
	return ret
}

func (g *Generator) band(row transit.Row, t float64, walkSpeed float64) Band {
	b := Band{Minutes: t, Stations: make([]string, 0)}
	buffers := make([]orb.MultiPolygon, 0)
	for _, s := range g.stations {
		d := row.Get(s.ID)
		if !d.Within(t) {
			continue
		}
		b.Stations = append(b.Stations, s.ID)
		v, _ := d.Value()
		// 剩余步行时间为0的车站只是一个点，不贡献面积
		if remaining := t - v; remaining > 0 {
			buffers = append(buffers, g.geom.Buffer(s.Point(), remaining*walkSpeed))
		}
	}
	sort.Strings(b.Stations)
	b.Polygon = g.geom.Union(buffers)
	return b
}

// 两个起点在各阈值下都能到达的区域
func (g *Generator) Overlap(a, b string, thresholds []float64, walkSpeed float64) ([]Band, error) {
	bandsA, err := g.Generate(a, thresholds, walkSpeed)
	if err != nil {
		return nil, err
	}
	bandsB, err := g.Generate(b, thresholds, walkSpeed)
	if err != nil {
		return nil, err
	}
	ret := make([]Band, len(bandsA))
	for i := range bandsA {
		stations := lo.Intersect(bandsA[i].Stations, bandsB[i].Stations)
		sort.Strings(stations)
		ret[i] = Band{
			Minutes:  bandsA[i].Minutes,
			Polygon:  g.geom.Intersect(bandsA[i].Polygon, bandsB[i].Polygon),
			Stations: stations,
		}
	}
	return ret, nil
}
