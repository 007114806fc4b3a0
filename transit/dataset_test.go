package transit_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/markleyboyer/subway-equidistance/transit/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawDataset = `{
  "stations": {
    "X": {"id": "X", "name": "Xavier Sq", "lat": 40.75, "lon": -73.99},
    "Y": {"name": "York Av", "lat": 40.76, "lon": -73.98},
    "Z": {"id": "Z", "name": "Zeta St", "lat": 40.77, "lon": -73.97}
  },
  "edges": [
    {"from": "X", "to": "Y", "minutes": 10},
    {"from": "Y", "to": "Z", "minutes": 10},
    {"from": "X", "to": "Z", "minutes": 25, "kind": "ride", "line": "2"}
  ]
}`

func TestReadRawDataset(t *testing.T) {
	d, err := transit.ReadDataset(strings.NewReader(rawDataset))
	require.NoError(t, err)
	assert.False(t, d.IsPrecomputed())
	assert.Equal(t, "Y", d.Stations["Y"].ID)

	src, err := d.Source()
	require.NoError(t, err)
	_, isNetwork := src.(*transit.Network)
	assert.True(t, isNetwork)

	m := transit.NewMatrix(src)
	v, err := m.TimeBetween("X", "Z")
	require.NoError(t, err)
	assert.Equal(t, algo.Reach(20), v)
}

func TestDatasetRoundTrip(t *testing.T) {
	d, err := transit.ReadDataset(strings.NewReader(rawDataset))
	require.NoError(t, err)
	src, err := d.Source()
	require.NoError(t, err)
	m := transit.NewMatrix(src)
	for _, s := range d.StationList() {
		_, err := m.Row(s.ID)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, transit.FromMatrix(m).Write(&buf))
	reloaded, err := transit.ReadDataset(&buf)
	require.NoError(t, err)
	assert.True(t, reloaded.IsPrecomputed())

	src2, err := reloaded.Source()
	require.NoError(t, err)
	m2 := transit.NewMatrix(src2)
	for _, a := range d.StationList() {
		for _, b := range d.StationList() {
			want, err := m.TimeBetween(a.ID, b.ID)
			require.NoError(t, err)
			got, err := m2.TimeBetween(a.ID, b.ID)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s->%s", a.ID, b.ID)
		}
	}
}

func TestReadDatasetMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":     `{"stations": [`,
		"no stations":  `{"stations": {}}`,
		"key mismatch": `{"stations": {"A": {"id": "B", "lat": 1, "lon": 1}}}`,
		"missing lat":  `{"stations": {"A": {"lon": 1}}}`,
		"missing lon":  `{"stations": {"A": {"lat": 0}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := transit.ReadDataset(strings.NewReader(body))
			assert.ErrorIs(t, err, transit.ErrMalformedDataset)
		})
	}
}

// (0, 0)是合法坐标
func TestReadDatasetNullIsland(t *testing.T) {
	d, err := transit.ReadDataset(strings.NewReader(`{
  "stations": {
    "O": {"name": "Origin", "lat": 0, "lon": 0},
    "E": {"name": "East", "lat": 0, "lon": 0.01}
  },
  "edges": [{"from": "O", "to": "E", "minutes": 4}]
}`))
	require.NoError(t, err)
	assert.Equal(t, transit.Station{ID: "O", Name: "Origin"}, d.Stations["O"])
	n, err := d.Network()
	require.NoError(t, err)
	row, err := n.ShortestTimes("O")
	require.NoError(t, err)
	assert.Equal(t, algo.Reach(4), row.Get("E"))
}

func TestPrecomputedLimits(t *testing.T) {
	tt := map[string]map[string]float64{"X": {"Y": 12}}
	_, err := transit.NewPrecomputed(xyzStations, tt, transit.WithLimits(2, 0))
	assert.ErrorIs(t, err, transit.ErrGraphTooLarge)
	assert.ErrorIs(t, err, transit.ErrMalformedDataset)

	d := &transit.Dataset{
		Stations:    map[string]transit.Station{},
		TravelTimes: tt,
	}
	for _, s := range xyzStations {
		d.Stations[s.ID] = s
	}
	_, err = d.Source(transit.WithLimits(2, 0))
	assert.ErrorIs(t, err, transit.ErrGraphTooLarge)
	src, err := d.Source(transit.WithLimits(3, 0))
	require.NoError(t, err)
	assert.IsType(t, &transit.Precomputed{}, src)
}

func TestPrecomputedValidation(t *testing.T) {
	cases := map[string]map[string]map[string]float64{
		"unknown origin":      {"Q": {"X": 1}},
		"unknown destination": {"X": {"Q": 1}},
		"negative time":       {"X": {"Y": -1}},
		"non-zero self":       {"X": {"X": 3}},
	}
	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := transit.NewPrecomputed(xyzStations, tt)
			require.ErrorIs(t, err, transit.ErrMalformedDataset)
		})
	}

	p, err := transit.NewPrecomputed(xyzStations, map[string]map[string]float64{"X": {"Y": 12}})
	require.NoError(t, err)
	row, err := p.ShortestTimes("X")
	require.NoError(t, err)
	assert.Equal(t, algo.Reach(0), row.Get("X"))
	assert.Equal(t, algo.Reach(12), row.Get("Y"))
	assert.False(t, row.Get("Z").Reachable())
	// 没有行的已知车站只能到达自身
	row, err = p.ShortestTimes("Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, row.Reachable())
	_, err = p.ShortestTimes("Q")
	assert.ErrorIs(t, err, transit.ErrUnknownStation)
}
