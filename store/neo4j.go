package store

import (
	"context"
	"fmt"

	"github.com/markleyboyer/subway-equidistance/transit"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	neo4jLoadStations = `
MATCH (s:Station)
RETURN s.id AS id, s.name AS name, s.lat AS lat, s.lon AS lon
ORDER BY id`
	neo4jLoadEdges = `
MATCH (a:Station)-[r:LINK]->(b:Station)
RETURN a.id AS from, b.id AS to, r.minutes AS minutes, r.kind AS kind, r.line AS line`
	neo4jSaveStations = `
UNWIND $rows AS row
MERGE (s:Station {id: row.id})
SET s.name = row.name, s.lat = row.lat, s.lon = row.lon`
	neo4jClearEdges = `
MATCH (:Station)-[r:LINK]->(:Station)
DELETE r`
	neo4jSaveEdges = `
UNWIND $rows AS row
MATCH (a:Station {id: row.from}), (b:Station {id: row.to})
CREATE (a)-[:LINK {minutes: row.minutes, kind: row.kind, line: row.line}]->(b)`
)

// 原始网络图存放在Neo4j中：(:Station)-[:LINK {minutes, kind, line}]->(:Station)
type Neo4j struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4j(ctx context.Context, uri, username, password, database string) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connection: %w", err)
	}
	return &Neo4j{driver: driver, database: database}, nil
}

func (n *Neo4j) query(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if n.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(n.database))
	}
	return neo4j.ExecuteQuery(ctx, n.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
}

// 只读取网络图，不包含预计算矩阵
func (n *Neo4j) Load(ctx context.Context) (*transit.Dataset, error) {
	res, err := n.query(ctx, neo4jLoadStations, nil)
	if err != nil {
		return nil, err
	}
	d := &transit.Dataset{Stations: make(map[string]transit.Station, len(res.Records))}
	for _, rec := range res.Records {
		s, err := stationFromRecord(rec)
		if err != nil {
			return nil, err
		}
		d.Stations[s.ID] = s
	}
	res, err = n.query(ctx, neo4jLoadEdges, nil)
	if err != nil {
		return nil, err
	}
	for _, rec := range res.Records {
		e, err := edgeFromRecord(rec)
		if err != nil {
			return nil, err
		}
		d.Edges = append(d.Edges, e)
	}
	log.Infof("loaded %d stations and %d edges from neo4j", len(d.Stations), len(d.Edges))
	return d, nil
}

func (n *Neo4j) Save(ctx context.Context, d *transit.Dataset) error {
	if d.TravelTimes != nil {
		log.Warnf("neo4j store keeps the raw graph only, travel times are not saved")
	}
	stations := make([]map[string]any, 0, len(d.Stations))
	for _, s := range d.StationList() {
		stations = append(stations, map[string]any{"id": s.ID, "name": s.Name, "lat": s.Lat, "lon": s.Lon})
	}
	if _, err := n.query(ctx, neo4jSaveStations, map[string]any{"rows": stations}); err != nil {
		return err
	}
	if _, err := n.query(ctx, neo4jClearEdges, nil); err != nil {
		return err
	}
	edges := make([]map[string]any, 0, len(d.Edges))
	for _, e := range d.Edges {
		edges = append(edges, map[string]any{
			"from": e.From, "to": e.To, "minutes": e.Minutes, "kind": string(e.Kind), "line": e.Line,
		})
	}
	if _, err := n.query(ctx, neo4jSaveEdges, map[string]any{"rows": edges}); err != nil {
		return err
	}
	log.Infof("saved %d stations and %d edges to neo4j", len(stations), len(edges))
	return nil
}

func (n *Neo4j) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}

func recordString(rec *neo4j.Record, key string) (string, error) {
	v, ok := rec.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: record has no field %q", transit.ErrMalformedDataset, key)
	}
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, not string", transit.ErrMalformedDataset, key, v)
	}
	return s, nil
}

// Neo4j中的数字可能是整数
func recordFloat(rec *neo4j.Record, key string) (float64, error) {
	v, ok := rec.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: record has no field %q", transit.ErrMalformedDataset, key)
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: field %q is %T, not number", transit.ErrMalformedDataset, key, v)
	}
}

func stationFromRecord(rec *neo4j.Record) (s transit.Station, err error) {
	if s.ID, err = recordString(rec, "id"); err != nil {
		return
	}
	if s.Name, err = recordString(rec, "name"); err != nil {
		return
	}
	if s.Lat, err = recordFloat(rec, "lat"); err != nil {
		return
	}
	s.Lon, err = recordFloat(rec, "lon")
	return
}

func edgeFromRecord(rec *neo4j.Record) (e transit.Edge, err error) {
	if e.From, err = recordString(rec, "from"); err != nil {
		return
	}
	if e.To, err = recordString(rec, "to"); err != nil {
		return
	}
	if e.Minutes, err = recordFloat(rec, "minutes"); err != nil {
		return
	}
	kind, err := recordString(rec, "kind")
	if err != nil {
		return
	}
	e.Kind = transit.EdgeKind(kind)
	e.Line, err = recordString(rec, "line")
	return
}
