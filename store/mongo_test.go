package store

import (
	"testing"

	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoDocsRaw(t *testing.T) {
	stations, edges := toDocs(testDataset())
	require.Len(t, stations, 2)
	require.Len(t, edges, 2)
	assert.Equal(t, "X", stations[0].Data.ID)
	assert.Equal(t, CLASS_STATION, stations[0].Class)
	assert.Nil(t, stations[0].Data.Times)
	assert.Equal(t, CLASS_EDGE, edges[0].Class)

	d, err := fromDocs(stations, edges)
	require.NoError(t, err)
	assert.False(t, d.IsPrecomputed())
	assert.Equal(t, testDataset(), d)
}

func TestMongoDocsPrecomputed(t *testing.T) {
	in := testDataset()
	in.Edges = nil
	in.TravelTimes = map[string]map[string]float64{
		"X": {"X": 0, "Y": 10},
		"Y": {"Y": 0, "X": 3},
	}
	stations, edges := toDocs(in)
	assert.Empty(t, edges)

	d, err := fromDocs(stations, edges)
	require.NoError(t, err)
	assert.True(t, d.IsPrecomputed())
	assert.Equal(t, in.TravelTimes, d.TravelTimes)
}

// 车站字段内联在data下，times与车站字段同级
func TestMongoDocLayout(t *testing.T) {
	doc := stationDoc{
		Class: CLASS_STATION,
		Data: stationData{
			Station: transit.Station{ID: "X", Name: "Xavier Sq", Lat: 40.75, Lon: -73.99},
			Times:   map[string]float64{"X": 0},
		},
	}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var m struct {
		Class string `bson:"class"`
		Data  bson.M `bson:"data"`
	}
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, CLASS_STATION, m.Class)
	data := m.Data
	assert.Equal(t, "X", data["id"])
	assert.Equal(t, 40.75, data["lat"])
	assert.Contains(t, data, "times")

	var back stationDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, doc, back)
}

func TestMongoDocsInvalid(t *testing.T) {
	_, err := fromDocs(nil, nil)
	assert.ErrorIs(t, err, transit.ErrMalformedDataset)

	s := stationDoc{Class: CLASS_STATION, Data: stationData{Station: transit.Station{ID: "X"}}}
	_, err = fromDocs([]stationDoc{s, s}, nil)
	assert.ErrorIs(t, err, transit.ErrMalformedDataset)
}

func TestOpenMongoWithoutURI(t *testing.T) {
	_, err := OpenMongo("", MongoPath{DB: "city", Coll: "subway"})
	assert.ErrorIs(t, err, errNoMongoURI)
}
