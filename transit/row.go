package transit

import (
	"sort"

	"github.com/markleyboyer/subway-equidistance/transit/algo"
)

// 行程时间矩阵中的一行：从Origin出发到各车站的最短时间
// 一旦构造完成不再修改
type Row struct {
	origin string
	times  map[string]algo.Minutes
}

func newRow(origin string, times map[string]algo.Minutes) Row {
	if times == nil {
		times = make(map[string]algo.Minutes)
	}
	times[origin] = algo.Reach(0)
	return Row{origin: origin, times: times}
}

func (r Row) Origin() string {
	return r.origin
}

// 不在行中的车站视为不可达
func (r Row) Get(dest string) algo.Minutes {
	return r.times[dest]
}

// 可达车站ID，升序
func (r Row) Reachable() []string {
	ret := make([]string, 0, len(r.times))
	for id, t := range r.times {
		if t.Reachable() {
			ret = append(ret, id)
		}
	}
	sort.Strings(ret)
	return ret
}

// 仅包含可达车站
func (r Row) Times() map[string]float64 {
	ret := make(map[string]float64, len(r.times))
	for id, t := range r.times {
		if v, ok := t.Value(); ok {
			ret[id] = v
		}
	}
	return ret
}
