package equidistance

import (
	"math"
	"sort"

	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/markleyboyer/subway-equidistance/transit/algo"
)

const (
	// 两站时间差不超过该值（分钟）视为等距
	DEFAULT_THRESHOLD = 5.0
	// 阈值比较的容差（分钟），吸收分钟小数累加的舍入误差
	EQUIDISTANCE_EPSILON = 1e-9
)

type Label string

const (
	LABEL_A                     Label = "A"
	LABEL_B                     Label = "B"
	LABEL_EQUIDISTANT           Label = "EQUIDISTANT"
	LABEL_UNREACHABLE_FROM_A    Label = "UNREACHABLE_FROM_A"
	LABEL_UNREACHABLE_FROM_B    Label = "UNREACHABLE_FROM_B"
	LABEL_UNREACHABLE_FROM_BOTH Label = "UNREACHABLE_FROM_BOTH"
)

// 交换A与B后的标签
func (l Label) Swap() Label {
	switch l {
	case LABEL_A:
		return LABEL_B
	case LABEL_B:
		return LABEL_A
	case LABEL_UNREACHABLE_FROM_A:
		return LABEL_UNREACHABLE_FROM_B
	case LABEL_UNREACHABLE_FROM_B:
		return LABEL_UNREACHABLE_FROM_A
	default:
		return l
	}
}

func (l Label) Reachable() bool {
	return l == LABEL_A || l == LABEL_B || l == LABEL_EQUIDISTANT
}

type Result struct {
	TimeFromA algo.Minutes `json:"time_from_a"`
	TimeFromB algo.Minutes `json:"time_from_b"`
	// TimeFromB - TimeFromA，任意一方不可达时不可达
	Difference algo.Minutes `json:"difference"`
	Label      Label        `json:"label"`
}

type TimeSource interface {
	Row(origin string) (transit.Row, error)
	Stations() []transit.Station
}

type Classifier struct {
	source    TimeSource
	threshold float64
}

func NewClassifier(source TimeSource, threshold float64) *Classifier {
	if math.IsNaN(threshold) || threshold < 0 {
		threshold = DEFAULT_THRESHOLD
	}
	return &Classifier{source: source, threshold: threshold}
}

func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// 对每个车站判断离A近、离B近还是等距
func (c *Classifier) Classify(a, b string) (map[string]Result, error) {
	rowA, err := c.source.Row(a)
	if err != nil {
		return nil, err
	}
	rowB, err := c.source.Row(b)
	if err != nil {
		return nil, err
	}
	stations := c.source.Stations()
	ret := make(map[string]Result, len(stations))
	for _, s := range stations {
		ret[s.ID] = Compare(rowA.Get(s.ID), rowB.Get(s.ID), c.threshold)
	}
	return ret, nil
}

// 纯函数，ta与tb为同一车站分别从A、B出发的时间
// |tb-ta|<=threshold为等距（含边界，容差EQUIDISTANCE_EPSILON）
func Compare(ta, tb algo.Minutes, threshold float64) Result {
	r := Result{TimeFromA: ta, TimeFromB: tb, Difference: tb.Sub(ta)}
	switch {
	case !ta.Reachable() && !tb.Reachable():
		r.Label = LABEL_UNREACHABLE_FROM_BOTH
	case !ta.Reachable():
		r.Label = LABEL_UNREACHABLE_FROM_A
	case !tb.Reachable():
		r.Label = LABEL_UNREACHABLE_FROM_B
	default:
		d, _ := r.Difference.Value()
		if d > threshold+EQUIDISTANCE_EPSILON {
			r.Label = LABEL_A
		} else if -d > threshold+EQUIDISTANCE_EPSILON {
			r.Label = LABEL_B
		} else {
			r.Label = LABEL_EQUIDISTANT
		}
	}
	return r
}

type Summary struct {
	Counts map[Label]int `json:"counts"`
	// 等距车站，升序
	Equidistant []string `json:"equidistant"`
}

func Summarize(results map[string]Result) Summary {
	s := Summary{Counts: make(map[Label]int), Equidistant: make([]string, 0)}
	for id, r := range results {
		s.Counts[r.Label]++
		if r.Label == LABEL_EQUIDISTANT {
			s.Equidistant = append(s.Equidistant, id)
		}
	}
	sort.Strings(s.Equidistant)
	return s
}
