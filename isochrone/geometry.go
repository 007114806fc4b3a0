package isochrone

import (
	"math"
	"sort"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// 几何运算接口，退化输入返回空多边形而不是错误
type Geometry interface {
	// 以center为圆心、半径radius米的缓冲区
	Buffer(center orb.Point, radius float64) orb.MultiPolygon
	Union(parts []orb.MultiPolygon) orb.MultiPolygon
	Intersect(a, b orb.MultiPolygon) orb.MultiPolygon
}

// 基于polyclip的实现
// 圆周顶点按测地线计算，求并时在经纬度平面内近似，步行半径只有几公里，误差可接受
type ClipGeometry struct {
	segments int
}

func NewClipGeometry(segments int) *ClipGeometry {
	if segments < 8 {
		segments = DEFAULT_CIRCLE_SEGMENTS
	}
	return &ClipGeometry{segments: segments}
}

func (g *ClipGeometry) Buffer(center orb.Point, radius float64) orb.MultiPolygon {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return orb.MultiPolygon{}
	}
	radius = math.Min(radius, MAX_BUFFER_RADIUS)
	ring := make(orb.Ring, 0, g.segments+1)
	for i := 0; i < g.segments; i++ {
		bearing := 360 * float64(i) / float64(g.segments)
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
	}
	ring = append(ring, ring[0])
	if ring.Orientation() != orb.CCW {
		ring.Reverse()
	}
	return orb.MultiPolygon{orb.Polygon{ring}}
}

// 分治两两合并
func (g *ClipGeometry) Union(parts []orb.MultiPolygon) orb.MultiPolygon {
	clips := make([]polyclip.Polygon, 0, len(parts))
	for _, p := range parts {
		if c := toClip(p); len(c) > 0 {
			clips = append(clips, c)
		}
	}
	if len(clips) == 0 {
		return orb.MultiPolygon{}
	}
	for len(clips) > 1 {
		next := make([]polyclip.Polygon, 0, (len(clips)+1)/2)
		for i := 0; i < len(clips); i += 2 {
			if i+1 < len(clips) {
				next = append(next, clips[i].Construct(polyclip.UNION, clips[i+1]))
			} else {
				next = append(next, clips[i])
			}
		}
		clips = next
	}
	return fromClip(clips[0])
}

func (g *ClipGeometry) Intersect(a, b orb.MultiPolygon) orb.MultiPolygon {
	ca, cb := toClip(a), toClip(b)
	if len(ca) == 0 || len(cb) == 0 {
		return orb.MultiPolygon{}
	}
	return fromClip(ca.Construct(polyclip.INTERSECTION, cb))
}

func toClip(mp orb.MultiPolygon) polyclip.Polygon {
	ret := polyclip.Polygon{}
	for _, poly := range mp {
		for _, ring := range poly {
			n := len(ring)
			if n > 1 && ring[0] == ring[n-1] {
				n--
			}
			if n < 3 {
				continue
			}
			c := make(polyclip.Contour, n)
			for i := 0; i < n; i++ {
				c[i] = polyclip.Point{X: ring[i][0], Y: ring[i][1]}
			}
			ret = append(ret, c)
		}
	}
	return ret
}

type contour struct {
	ring  orb.Ring
	area  float64
	depth int
}

// polyclip的结果不区分外环与洞，按包含深度判断：偶数为外环，奇数为洞
// 外环逆时针，洞顺时针
func fromClip(p polyclip.Polygon) orb.MultiPolygon {
	cs := make([]*contour, 0, len(p))
	for _, c := range p {
		if len(c) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(c)+1)
		for _, pt := range c {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		ring = append(ring, ring[0])
		area := math.Abs(planar.Area(ring))
		if area == 0 {
			continue
		}
		cs = append(cs, &contour{ring: ring, area: area})
	}
	// 面积从大到小，包含者一定排在被包含者之前
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].area > cs[j].area })
	parents := make([]int, len(cs))
	for i, c := range cs {
		parents[i] = -1
		probe := c.ring[0]
		// 从最小的候选开始找直接包含者
		for j := i - 1; j >= 0; j-- {
			if planar.RingContains(cs[j].ring, probe) {
				parents[i] = j
				c.depth = cs[j].depth + 1
				break
			}
		}
	}
	ret := orb.MultiPolygon{}
	polyIndex := make(map[int]int) // contour index -> polygon index
	for i, c := range cs {
		if c.depth%2 == 0 {
			if c.ring.Orientation() != orb.CCW {
				c.ring.Reverse()
			}
			polyIndex[i] = len(ret)
			ret = append(ret, orb.Polygon{c.ring})
		}
	}
	for i, c := range cs {
		if c.depth%2 == 1 {
			if c.ring.Orientation() != orb.CW {
				c.ring.Reverse()
			}
			k := polyIndex[parents[i]]
			ret[k] = append(ret[k], c.ring)
		}
	}
	return ret
}
