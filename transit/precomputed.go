package transit

import (
	"fmt"
	"math"
	"sort"

	"github.com/markleyboyer/subway-equidistance/transit/algo"
)

// 预计算的行程时间矩阵，跳过网络图与最短路计算
type Precomputed struct {
	stations []Station
	index    map[string]int
	rows     map[string]map[string]algo.Minutes
}

// 车站数受WithLimits约束，边数与搜索上限不适用
func NewPrecomputed(stations []Station, travelTimes map[string]map[string]float64, opts ...Option) (*Precomputed, error) {
	o := options{maxStations: algo.DEFAULT_MAX_NODES}
	for _, opt := range opts {
		opt(&o)
	}
	if len(stations) > o.maxStations {
		return nil, fmt.Errorf("%w: %d stations exceed limit %d", ErrGraphTooLarge, len(stations), o.maxStations)
	}
	p := &Precomputed{
		stations: make([]Station, len(stations)),
		index:    make(map[string]int, len(stations)),
		rows:     make(map[string]map[string]algo.Minutes, len(travelTimes)),
	}
	copy(p.stations, stations)
	sort.Slice(p.stations, func(i, j int) bool { return p.stations[i].ID < p.stations[j].ID })
	for i, s := range p.stations {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, ok := p.index[s.ID]; ok {
			return nil, malformed("duplicate station %q", s.ID)
		}
		p.index[s.ID] = i
	}
	for origin, row := range travelTimes {
		if _, ok := p.index[origin]; !ok {
			return nil, malformed("travel time row for unknown station %q", origin)
		}
		times := make(map[string]algo.Minutes, len(row)+1)
		for dest, v := range row {
			if _, ok := p.index[dest]; !ok {
				return nil, malformed("travel time %q->%q references unknown station %q", origin, dest, dest)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, malformed("travel time %q->%q is invalid: %v", origin, dest, v)
			}
			if dest == origin && v != 0 {
				return nil, malformed("travel time %q->%q should be 0, got %v", origin, dest, v)
			}
			times[dest] = algo.Reach(v)
		}
		p.rows[origin] = times
	}
	return p, nil
}

func (p *Precomputed) Stations() []Station {
	ret := make([]Station, len(p.stations))
	copy(ret, p.stations)
	return ret
}

func (p *Precomputed) HasStation(id string) bool {
	_, ok := p.index[id]
	return ok
}

func (p *Precomputed) ShortestTimes(origin string) (Row, error) {
	if !p.HasStation(origin) {
		return Row{}, unknownStation(origin)
	}
	src := p.rows[origin]
	times := make(map[string]algo.Minutes, len(src))
	for k, v := range src {
		times[k] = v
	}
	return newRow(origin, times), nil
}
