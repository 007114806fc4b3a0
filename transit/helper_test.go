package transit_test

import "github.com/markleyboyer/subway-equidistance/transit"

var xyzStations = []transit.Station{
	{ID: "Z", Name: "Zeta St", Lat: 40.7700, Lon: -73.9700},
	{ID: "X", Name: "Xavier Sq", Lat: 40.7500, Lon: -73.9900},
	{ID: "Y", Name: "York Av", Lat: 40.7600, Lon: -73.9800},
}

var xyzEdges = []transit.Edge{
	{From: "X", To: "Y", Minutes: 10, Line: "1"},
	{From: "Y", To: "Z", Minutes: 10, Line: "1"},
	{From: "X", To: "Z", Minutes: 25, Line: "2"},
}
