package transit

import (
	"fmt"
	"sort"

	"github.com/markleyboyer/subway-equidistance/transit/algo"
	"github.com/samber/lo"
)

type options struct {
	maxStations int
	maxEdges    int
	horizon     float64
}

type Option func(*options)

// 图规模上限，0表示使用默认值
func WithLimits(maxStations, maxEdges int) Option {
	return func(o *options) {
		if maxStations > 0 {
			o.maxStations = maxStations
		}
		if maxEdges > 0 {
			o.maxEdges = maxEdges
		}
	}
}

// 最短路搜索的时间上限（分钟），超过则视为不可达，0表示不限制
func WithHorizon(minutes float64) Option {
	return func(o *options) {
		o.horizon = minutes
	}
}

// 地铁网络：车站与有向边构成的静态图
type Network struct {
	stations []Station
	index    map[string]int // station id -> node id
	graph    *algo.SearchGraph[string, edgeAttr]
	horizon  float64
}

// 构建并校验网络，节点下标按车站ID升序分配
func NewNetwork(stations []Station, edges []Edge, opts ...Option) (*Network, error) {
	o := options{
		maxStations: algo.DEFAULT_MAX_NODES,
		maxEdges:    algo.DEFAULT_MAX_EDGES,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(stations) > o.maxStations {
		return nil, fmt.Errorf("%w: %d stations exceed limit %d", ErrGraphTooLarge, len(stations), o.maxStations)
	}
	if len(edges) > o.maxEdges {
		return nil, fmt.Errorf("%w: %d edges exceed limit %d", ErrGraphTooLarge, len(edges), o.maxEdges)
	}
	sorted := make([]Station, len(stations))
	copy(sorted, stations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	n := &Network{
		stations: sorted,
		index:    make(map[string]int, len(sorted)),
		graph:    algo.NewSearchGraph[string, edgeAttr](),
		horizon:  o.horizon,
	}
	for _, s := range sorted {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, ok := n.index[s.ID]; ok {
			return nil, malformed("duplicate station %q", s.ID)
		}
		n.index[s.ID] = n.graph.InitNode(s.Point(), s.ID)
	}
	for _, e := range edges {
		from, ok := n.index[e.From]
		if !ok {
			return nil, malformed("edge %q->%q references unknown station %q", e.From, e.To, e.From)
		}
		to, ok := n.index[e.To]
		if !ok {
			return nil, malformed("edge %q->%q references unknown station %q", e.From, e.To, e.To)
		}
		kind := e.Kind
		if kind == "" {
			kind = EDGE_RIDE
		}
		if err := n.graph.InitEdge(from, to, e.Minutes, edgeAttr{Kind: kind, Line: e.Line}); err != nil {
			return nil, malformed("edge %q->%q: %v", e.From, e.To, err)
		}
	}
	log.Debugf("network built with %d stations and %d edges", n.graph.NodeCount(), n.graph.EdgeCount())
	return n, nil
}

func (n *Network) Len() int {
	return len(n.stations)
}

func (n *Network) EdgeCount() int {
	return n.graph.EdgeCount()
}

// 按ID升序返回所有车站
func (n *Network) AllStations() []Station {
	ret := make([]Station, len(n.stations))
	copy(ret, n.stations)
	return ret
}

// RowSource
func (n *Network) Stations() []Station {
	return n.AllStations()
}

func (n *Network) HasStation(id string) bool {
	_, ok := n.index[id]
	return ok
}

func (n *Network) Station(id string) (Station, error) {
	i, ok := n.index[id]
	if !ok {
		return Station{}, unknownStation(id)
	}
	return n.stations[i], nil
}

// 出边邻居，平行边已取最小值，按邻居ID升序
func (n *Network) Neighbors(id string) ([]Neighbor, error) {
	i, ok := n.index[id]
	if !ok {
		return nil, unknownStation(id)
	}
	return lo.Map(n.graph.Neighbors(i), func(nb algo.Neighbor[edgeAttr], _ int) Neighbor {
		return Neighbor{
			ID:      n.graph.NodeAttr(nb.Node),
			Minutes: nb.Minutes,
			Kind:    nb.Attr.Kind,
			Line:    nb.Attr.Line,
		}
	}), nil
}

// 从origin出发到所有车站的最短时间
func (n *Network) ShortestTimes(origin string) (Row, error) {
	i, ok := n.index[origin]
	if !ok {
		return Row{}, unknownStation(origin)
	}
	dist := n.graph.ShortestTimes(i, n.horizon)
	times := make(map[string]algo.Minutes, len(dist))
	for j, d := range dist {
		times[n.stations[j].ID] = d
	}
	return newRow(origin, times), nil
}
