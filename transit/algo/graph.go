package algo

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/puzpuzpuz/xsync/v3"
)

type node[NT any] struct {
	p    orb.Point
	attr NT
}

type edge[ET any] struct {
	w    float64
	attr ET
}

// 邻接表结构的有向图，边权为非负的分钟数
type SearchGraph[NT any, ET any] struct {
	// 邻接表，from node -> to node -> edge
	// 平行边只保留边权最小的一条
	edges []map[int]edge[ET]
	nodes []node[NT]
	// 边数（含被合并的平行边）
	edgeCount int

	mu *xsync.RBMutex
}

func NewSearchGraph[NT any, ET any]() *SearchGraph[NT, ET] {
	return &SearchGraph[NT, ET]{
		edges: make([]map[int]edge[ET], 0),
		nodes: make([]node[NT], 0),
		mu:    xsync.NewRBMutex(),
	}
}

func (g *SearchGraph[NT, ET]) InitNode(p orb.Point, attr NT) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, node[NT]{p: p, attr: attr})
	g.edges = append(g.edges, make(map[int]edge[ET]))
	return len(g.nodes) - 1
}

// 加入一条有向边，同一对节点的平行边取最小边权
func (g *SearchGraph[NT, ET]) InitEdge(from, to int, w float64, attr ET) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if from < 0 || from >= len(g.nodes) {
		return fmt.Errorf("%w: from=%d", ErrNodeNotExists, from)
	}
	if to < 0 || to >= len(g.nodes) {
		return fmt.Errorf("%w: to=%d", ErrNodeNotExists, to)
	}
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w: %d->%d weight %v", ErrInvalidWeight, from, to, w)
	}
	g.edgeCount++
	if old, ok := g.edges[from][to]; ok && old.w <= w {
		return nil
	}
	g.edges[from][to] = edge[ET]{w: w, attr: attr}
	return nil
}

func (g *SearchGraph[NT, ET]) NodeCount() int {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	return len(g.nodes)
}

func (g *SearchGraph[NT, ET]) EdgeCount() int {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	return g.edgeCount
}

func (g *SearchGraph[NT, ET]) NodeAttr(i int) NT {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	return g.nodes[i].attr
}

func (g *SearchGraph[NT, ET]) NodePosition(i int) orb.Point {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	return g.nodes[i].p
}

type Neighbor[ET any] struct {
	Node    int
	Minutes float64
	Attr    ET
}

// 出边邻居，按节点下标升序
func (g *SearchGraph[NT, ET]) Neighbors(from int) []Neighbor[ET] {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	ret := make([]Neighbor[ET], 0, len(g.edges[from]))
	for to, e := range g.edges[from] {
		ret = append(ret, Neighbor[ET]{Node: to, Minutes: e.w, Attr: e.attr})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Node < ret[j].Node })
	return ret
}

// Dijkstra单源最短路，返回start到每个节点的最短时间
// horizon>0时超过horizon的节点视为不可达
func (g *SearchGraph[NT, ET]) ShortestTimes(start int, horizon float64) []Minutes {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	n := len(g.nodes)
	dist := make([]Minutes, n)
	if start < 0 || start >= n {
		return dist
	}
	settled := make([]bool, n)
	openSet := make(PriorityQueue, 0)
	openSetMap := make(map[int]*Item) // 节点下标 -> 堆中元素
	dist[start] = Reach(0)
	item := &Item{Value: start, Priority: 0}
	heap.Push(&openSet, item)
	openSetMap[start] = item
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item)
		delete(openSetMap, cur.Value)
		settled[cur.Value] = true
		// 按下标升序遍历出边
		neighbors := make([]int, 0, len(g.edges[cur.Value]))
		for to := range g.edges[cur.Value] {
			neighbors = append(neighbors, to)
		}
		sort.Ints(neighbors)
		for _, to := range neighbors {
			if settled[to] {
				continue
			}
			tentative := cur.Priority + g.edges[cur.Value][to].w
			if horizon > 0 && tentative > horizon {
				continue
			}
			if dist[to].Reachable() && dist[to].v <= tentative {
				continue
			}
			dist[to] = Reach(tentative)
			if it, ok := openSetMap[to]; ok {
				// 已在堆中，修改其优先级
				it.Priority = tentative
				heap.Fix(&openSet, it.Index)
			} else {
				it := &Item{Value: to, Priority: tentative}
				heap.Push(&openSet, it)
				openSetMap[to] = it
			}
		}
	}
	return dist
}
