package transit

import (
	"math"

	"github.com/paulmach/orb"
)

type Station struct {
	ID   string  `json:"id" bson:"id"`
	Name string  `json:"name" bson:"name"`
	Lat  float64 `json:"lat" bson:"lat"`
	Lon  float64 `json:"lon" bson:"lon"`
}

// (lon, lat)
func (s Station) Point() orb.Point {
	return orb.Point{s.Lon, s.Lat}
}

func (s Station) validate() error {
	if s.ID == "" {
		return malformed("station with empty id (name %q)", s.Name)
	}
	if math.IsNaN(s.Lat) || math.IsNaN(s.Lon) || s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 {
		return malformed("station %q has invalid coordinates (%v, %v)", s.ID, s.Lat, s.Lon)
	}
	return nil
}

type EdgeKind string

const (
	// 车内行驶
	EDGE_RIDE EdgeKind = "ride"
	// 换乘
	EDGE_TRANSFER EdgeKind = "transfer"
)

// 有向边，From->To，Minutes为分钟数
type Edge struct {
	From    string   `json:"from" bson:"from"`
	To      string   `json:"to" bson:"to"`
	Minutes float64  `json:"minutes" bson:"minutes"`
	Kind    EdgeKind `json:"kind,omitempty" bson:"kind,omitempty"`
	Line    string   `json:"line,omitempty" bson:"line,omitempty"`
}

type edgeAttr struct {
	Kind EdgeKind
	Line string
}

type Neighbor struct {
	ID      string   `json:"id"`
	Minutes float64  `json:"minutes"`
	Kind    EdgeKind `json:"kind,omitempty"`
	Line    string   `json:"line,omitempty"`
}
