package isochrone

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// 等时圈：Minutes内（地铁 + 步行）可达的区域
type Band struct {
	Minutes float64
	Polygon orb.MultiPolygon
	// Minutes内可达的车站（含步行余量为0的车站），升序
	Stations []string
}

func (b Band) IsEmpty() bool {
	return len(b.Polygon) == 0
}

func (b Band) Contains(p orb.Point) bool {
	return planar.MultiPolygonContains(b.Polygon, p)
}

// 面积（平方米）
func (b Band) Area() float64 {
	return math.Abs(geo.Area(b.Polygon))
}

// polygon -> ring（外环在前，洞在后） -> (lon, lat)
func (b Band) Coordinates() [][][][2]float64 {
	ret := make([][][][2]float64, 0, len(b.Polygon))
	for _, poly := range b.Polygon {
		rings := make([][][2]float64, 0, len(poly))
		for _, ring := range poly {
			pts := make([][2]float64, len(ring))
			for i, p := range ring {
				pts[i] = [2]float64{p[0], p[1]}
			}
			rings = append(rings, pts)
		}
		ret = append(ret, rings)
	}
	return ret
}

// 每个等时圈一个Feature
func FeatureCollection(bands []Band) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, b := range bands {
		f := geojson.NewFeature(b.Polygon)
		f.Properties["minutes"] = b.Minutes
		f.Properties["stations"] = b.Stations
		fc.Append(f)
	}
	return fc
}
