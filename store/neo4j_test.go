package store

import (
	"testing"

	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(kv ...any) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Keys = append(rec.Keys, kv[i].(string))
		rec.Values = append(rec.Values, kv[i+1])
	}
	return rec
}

func TestStationFromRecord(t *testing.T) {
	s, err := stationFromRecord(record("id", "X", "name", "Xavier Sq", "lat", 40.75, "lon", int64(-74)))
	require.NoError(t, err)
	assert.Equal(t, transit.Station{ID: "X", Name: "Xavier Sq", Lat: 40.75, Lon: -74}, s)

	// name可以为空
	s, err = stationFromRecord(record("id", "Y", "name", nil, "lat", 40.76, "lon", -73.98))
	require.NoError(t, err)
	assert.Equal(t, "", s.Name)

	_, err = stationFromRecord(record("id", "X", "name", "n", "lat", "north", "lon", 1.0))
	assert.ErrorIs(t, err, transit.ErrMalformedDataset)
	_, err = stationFromRecord(record("id", "X"))
	assert.ErrorIs(t, err, transit.ErrMalformedDataset)
}

func TestEdgeFromRecord(t *testing.T) {
	e, err := edgeFromRecord(record("from", "X", "to", "Y", "minutes", int64(10), "kind", "ride", "line", "1"))
	require.NoError(t, err)
	assert.Equal(t, transit.Edge{From: "X", To: "Y", Minutes: 10, Kind: transit.EDGE_RIDE, Line: "1"}, e)

	e, err = edgeFromRecord(record("from", "Y", "to", "X", "minutes", 2.5, "kind", nil, "line", nil))
	require.NoError(t, err)
	assert.Equal(t, 2.5, e.Minutes)
	assert.Equal(t, transit.EdgeKind(""), e.Kind)

	_, err = edgeFromRecord(record("from", 1, "to", "X", "minutes", 1.0, "kind", "", "line", ""))
	assert.ErrorIs(t, err, transit.ErrMalformedDataset)
}
