package transit

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
)

// 数据集：车站 + 原始有向边，或车站 + 预计算的行程时间矩阵
type Dataset struct {
	Stations    map[string]Station            `json:"stations"`
	Edges       []Edge                        `json:"edges,omitempty"`
	TravelTimes map[string]map[string]float64 `json:"travel_times,omitempty"`
}

// 坐标用指针解码，以区分字段缺失与(0, 0)
type stationJSON struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

type datasetJSON struct {
	Stations    map[string]stationJSON        `json:"stations"`
	Edges       []Edge                        `json:"edges"`
	TravelTimes map[string]map[string]float64 `json:"travel_times"`
}

func ReadDataset(r io.Reader) (*Dataset, error) {
	var raw datasetJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	return raw.normalize()
}

// 补全车站ID并检查与键一致，坐标必须给出
func (raw *datasetJSON) normalize() (*Dataset, error) {
	if len(raw.Stations) == 0 {
		return nil, malformed("dataset has no stations")
	}
	d := &Dataset{
		Stations:    make(map[string]Station, len(raw.Stations)),
		Edges:       raw.Edges,
		TravelTimes: raw.TravelTimes,
	}
	for key, s := range raw.Stations {
		if s.ID == "" {
			s.ID = key
		}
		if s.ID != key {
			return nil, malformed("station key %q does not match id %q", key, s.ID)
		}
		if s.Lat == nil || s.Lon == nil {
			return nil, malformed("station %q is missing coordinates", s.ID)
		}
		d.Stations[key] = Station{ID: s.ID, Name: s.Name, Lat: *s.Lat, Lon: *s.Lon}
	}
	return d, nil
}

func (d *Dataset) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// 按ID升序
func (d *Dataset) StationList() []Station {
	ret := lo.Values(d.Stations)
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

func (d *Dataset) IsPrecomputed() bool {
	return d.TravelTimes != nil
}

func (d *Dataset) Network(opts ...Option) (*Network, error) {
	return NewNetwork(d.StationList(), d.Edges, opts...)
}

func (d *Dataset) Precomputed(opts ...Option) (*Precomputed, error) {
	return NewPrecomputed(d.StationList(), d.TravelTimes, opts...)
}

// 有预计算矩阵时优先使用，否则使用原始图
func (d *Dataset) Source(opts ...Option) (RowSource, error) {
	if d.IsPrecomputed() {
		return d.Precomputed(opts...)
	}
	return d.Network(opts...)
}

// 将矩阵中已缓存的行导出为预计算数据集
func FromMatrix(m *Matrix) *Dataset {
	return &Dataset{
		Stations:    lo.Associate(m.Stations(), func(s Station) (string, Station) { return s.ID, s }),
		TravelTimes: m.Export(),
	}
}
