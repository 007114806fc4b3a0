package algo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Minutes 行程时间（分钟），零值表示不可达
type Minutes struct {
	v  float64
	ok bool
}

// 不可达
var Unreachable = Minutes{}

// 构造可达的行程时间
func Reach(v float64) Minutes {
	return Minutes{v: v, ok: true}
}

func (m Minutes) Reachable() bool {
	return m.ok
}

// 返回分钟数与是否可达
func (m Minutes) Value() (float64, bool) {
	return m.v, m.ok
}

// 可达时返回分钟数，否则返回+Inf，仅用于比较
func (m Minutes) OrInf() float64 {
	if !m.ok {
		return math.Inf(1)
	}
	return m.v
}

// 任意一方不可达则结果不可达
func (m Minutes) Add(o Minutes) Minutes {
	if !m.ok || !o.ok {
		return Unreachable
	}
	return Reach(m.v + o.v)
}

// m - o，任意一方不可达则结果不可达
func (m Minutes) Sub(o Minutes) Minutes {
	if !m.ok || !o.ok {
		return Unreachable
	}
	return Reach(m.v - o.v)
}

func (m Minutes) Neg() Minutes {
	if !m.ok {
		return Unreachable
	}
	return Reach(-m.v)
}

// 不可达视为无穷大
func (m Minutes) Less(o Minutes) bool {
	return m.OrInf() < o.OrInf()
}

// 可达且不超过t
func (m Minutes) Within(t float64) bool {
	return m.ok && m.v <= t
}

func (m Minutes) String() string {
	if !m.ok {
		return "unreachable"
	}
	return fmt.Sprintf("%.2fmin", m.v)
}

// 不可达编码为null
func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return []byte("null"), nil
	}
	return json.Marshal(m.v)
}

func (m *Minutes) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*m = Unreachable
	} else {
		*m = Reach(*v)
	}
	return nil
}
