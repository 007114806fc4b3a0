package equidistance_test

import (
	"testing"

	"github.com/markleyboyer/subway-equidistance/equidistance"
	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/markleyboyer/subway-equidistance/transit/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stations = []transit.Station{
	{ID: "A", Name: "Astor Pl", Lat: 40.7300, Lon: -73.9910},
	{ID: "B", Name: "Bowery", Lat: 40.7200, Lon: -73.9940},
	{ID: "C", Name: "Canal St", Lat: 40.7190, Lon: -74.0010},
	{ID: "D", Name: "Delancey St", Lat: 40.7180, Lon: -73.9880},
	{ID: "E", Name: "Essex St", Lat: 40.7185, Lon: -73.9875},
	{ID: "F", Name: "Fulton St", Lat: 40.7100, Lon: -74.0070},
}

// 从A、B出发的预计算时间
// C: 12 vs 13 -> 等距；D: 4 vs 20 -> A；E: 30 vs 2 -> B；F: A不可达
var travelTimes = map[string]map[string]float64{
	"A": {"B": 8, "C": 12, "D": 4, "E": 30},
	"B": {"A": 8, "C": 13, "D": 20, "E": 2, "F": 9},
}

func newClassifier(t *testing.T) *equidistance.Classifier {
	t.Helper()
	p, err := transit.NewPrecomputed(stations, travelTimes)
	require.NoError(t, err)
	return equidistance.NewClassifier(transit.NewMatrix(p), equidistance.DEFAULT_THRESHOLD)
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)
	res, err := c.Classify("A", "B")
	require.NoError(t, err)
	require.Len(t, res, len(stations))

	assert.Equal(t, equidistance.LABEL_EQUIDISTANT, res["C"].Label)
	assert.Equal(t, algo.Reach(1), res["C"].Difference)
	assert.Equal(t, equidistance.LABEL_A, res["D"].Label)
	assert.Equal(t, algo.Reach(16), res["D"].Difference)
	assert.Equal(t, equidistance.LABEL_B, res["E"].Label)
	assert.Equal(t, equidistance.LABEL_UNREACHABLE_FROM_A, res["F"].Label)
	assert.False(t, res["F"].Difference.Reachable())
	// A到自身0分钟，B到A 8分钟
	assert.Equal(t, equidistance.LABEL_A, res["A"].Label)
	assert.Equal(t, equidistance.LABEL_B, res["B"].Label)

	_, err = c.Classify("A", "nope")
	assert.ErrorIs(t, err, transit.ErrUnknownStation)
}

func TestClassifySymmetry(t *testing.T) {
	c := newClassifier(t)
	ab, err := c.Classify("A", "B")
	require.NoError(t, err)
	ba, err := c.Classify("B", "A")
	require.NoError(t, err)
	for id, r := range ab {
		assert.Equal(t, r.Label.Swap(), ba[id].Label, id)
		assert.Equal(t, r.Difference.Neg(), ba[id].Difference, id)
		assert.Equal(t, r.Label == equidistance.LABEL_EQUIDISTANT, ba[id].Label == equidistance.LABEL_EQUIDISTANT, id)
	}
}

func TestCompareBoundary(t *testing.T) {
	th := equidistance.DEFAULT_THRESHOLD
	assert.Equal(t, equidistance.LABEL_EQUIDISTANT, equidistance.Compare(algo.Reach(10), algo.Reach(15), th).Label)
	assert.Equal(t, equidistance.LABEL_EQUIDISTANT, equidistance.Compare(algo.Reach(15), algo.Reach(10), th).Label)
	assert.Equal(t, equidistance.LABEL_A, equidistance.Compare(algo.Reach(10), algo.Reach(15.000001), th).Label)
	assert.Equal(t, equidistance.LABEL_B, equidistance.Compare(algo.Reach(15.000001), algo.Reach(10), th).Label)
	assert.Equal(t, equidistance.LABEL_EQUIDISTANT, equidistance.Compare(algo.Reach(12), algo.Reach(13), th).Label)
	assert.Equal(t, equidistance.LABEL_UNREACHABLE_FROM_BOTH, equidistance.Compare(algo.Unreachable, algo.Unreachable, th).Label)
	assert.Equal(t, equidistance.LABEL_UNREACHABLE_FROM_B, equidistance.Compare(algo.Reach(1), algo.Unreachable, th).Label)

	// 换乘时间按秒/60累加，两侧相差恰好5分钟
	for i := 0; i < 2000; i++ {
		ta := algo.Reach(float64(i)/60 + 0.3)
		tb := algo.Reach(float64(i+300)/60 + 0.3)
		require.Equal(t, equidistance.LABEL_EQUIDISTANT, equidistance.Compare(ta, tb, th).Label, "i=%d", i)
		require.Equal(t, equidistance.LABEL_EQUIDISTANT, equidistance.Compare(tb, ta, th).Label, "i=%d", i)
	}
	ta, tb := algo.Reach(1.0/60+3), algo.Reach(1.0/60+3).Add(algo.Reach(5))
	assert.Equal(t, equidistance.LABEL_EQUIDISTANT, equidistance.Compare(ta, tb, th).Label)
}

func TestClassifierThreshold(t *testing.T) {
	p, err := transit.NewPrecomputed(stations, travelTimes)
	require.NoError(t, err)
	m := transit.NewMatrix(p)
	wide := equidistance.NewClassifier(m, 30)
	res, err := wide.Classify("A", "B")
	require.NoError(t, err)
	assert.Equal(t, equidistance.LABEL_EQUIDISTANT, res["E"].Label)
	assert.Equal(t, 5.0, equidistance.NewClassifier(m, -1).Threshold())
}

func TestSummarize(t *testing.T) {
	c := newClassifier(t)
	res, err := c.Classify("A", "B")
	require.NoError(t, err)
	s := equidistance.Summarize(res)
	assert.Equal(t, []string{"C"}, s.Equidistant)
	assert.Equal(t, 1, s.Counts[equidistance.LABEL_EQUIDISTANT])
	assert.Equal(t, 2, s.Counts[equidistance.LABEL_A])
	assert.Equal(t, 2, s.Counts[equidistance.LABEL_B])
	assert.Equal(t, 1, s.Counts[equidistance.LABEL_UNREACHABLE_FROM_A])
}
