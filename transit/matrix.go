package transit

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/markleyboyer/subway-equidistance/transit/algo"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// 行程时间的来源：网络图（现场计算）或预计算矩阵
type RowSource interface {
	Stations() []Station
	HasStation(id string) bool
	ShortestTimes(origin string) (Row, error)
}

// 行程时间矩阵缓存
// 每个起点的行在首次请求时计算一次，此后常驻，图是静态的因此不失效
type Matrix struct {
	source RowSource
	// origin -> row，只存放计算完成的行
	rows  *xsync.MapOf[string, Row]
	group singleflight.Group
	// 实际调用source的次数
	computed atomic.Int64
}

func NewMatrix(source RowSource) *Matrix {
	return &Matrix{
		source: source,
		rows:   xsync.NewMapOf[string, Row](),
	}
}

func (m *Matrix) Source() RowSource {
	return m.source
}

func (m *Matrix) Stations() []Station {
	return m.source.Stations()
}

func (m *Matrix) HasStation(id string) bool {
	return m.source.HasStation(id)
}

// 获取起点的整行，未缓存时计算
// 同一起点的并发请求只计算一次，后到者等待进行中的计算
func (m *Matrix) Row(origin string) (Row, error) {
	if r, ok := m.rows.Load(origin); ok {
		return r, nil
	}
	if !m.source.HasStation(origin) {
		return Row{}, unknownStation(origin)
	}
	v, err, _ := m.group.Do(origin, func() (any, error) {
		if r, ok := m.rows.Load(origin); ok {
			return r, nil
		}
		start := time.Now()
		r, err := m.source.ShortestTimes(origin)
		if err != nil {
			return nil, err
		}
		m.rows.Store(origin, r)
		m.computed.Add(1)
		log.Debugf("computed travel times from %s in %v", origin, time.Since(start))
		return r, nil
	})
	if err != nil {
		return Row{}, err
	}
	return v.(Row), nil
}

func (m *Matrix) TimeBetween(a, b string) (algo.Minutes, error) {
	if !m.source.HasStation(b) {
		return algo.Unreachable, unknownStation(b)
	}
	r, err := m.Row(a)
	if err != nil {
		return algo.Unreachable, err
	}
	return r.Get(b), nil
}

func (m *Matrix) Has(origin string) bool {
	_, ok := m.rows.Load(origin)
	return ok
}

// 已缓存的行数
func (m *Matrix) Len() int {
	return m.rows.Size()
}

func (m *Matrix) Computations() int64 {
	return m.computed.Load()
}

func (m *Matrix) Clear() {
	m.rows.Clear()
}

// 已缓存的起点，升序
func (m *Matrix) Origins() []string {
	ret := make([]string, 0, m.rows.Size())
	m.rows.Range(func(k string, _ Row) bool {
		ret = append(ret, k)
		return true
	})
	sort.Strings(ret)
	return ret
}

// 导出已缓存的行，仅包含可达车站
func (m *Matrix) Export() map[string]map[string]float64 {
	ret := make(map[string]map[string]float64, m.rows.Size())
	m.rows.Range(func(k string, r Row) bool {
		ret[k] = r.Times()
		return true
	})
	return ret
}

// 并行预热origins的行，workers<=0时不限制并发
func (m *Matrix) Warm(ctx context.Context, origins []string, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	var done atomic.Int64
	for _, origin := range origins {
		origin := origin
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := m.Row(origin); err != nil {
				return err
			}
			if n := done.Add(1); n%100 == 0 {
				log.Infof("warmed %d/%d origins", n, len(origins))
			}
			return nil
		})
	}
	return g.Wait()
}
