package store

import (
	"context"
	"errors"
	"fmt"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/markleyboyer/subway-equidistance/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CLASS_STATION = "station"
	CLASS_EDGE    = "edge"
)

// {db}.{col}
type MongoPath struct {
	DB   string
	Coll string
}

func (p MongoPath) GetDb() string {
	return p.DB
}

func (p MongoPath) GetColl() string {
	return p.Coll
}

// 一个集合中存放两类文档，以class区分
// station: data为车站信息，times为从该站出发的预计算行程时间
// edge:    data为有向边
type stationData struct {
	transit.Station `bson:",inline"`
	Times           map[string]float64 `bson:"times,omitempty"`
}

type stationDoc struct {
	Class string      `bson:"class"`
	Data  stationData `bson:"data"`
}

type edgeDoc struct {
	Class string       `bson:"class"`
	Data  transit.Edge `bson:"data"`
}

type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	path   MongoPath
}

func NewMongo(uri string, path MongoPath) *Mongo {
	client := mongoutil.NewClient(uri)
	return &Mongo{
		client: client,
		coll:   mongoutil.GetMongoColl(client, path),
		path:   path,
	}
}

func (m *Mongo) Load(ctx context.Context) (*transit.Dataset, error) {
	var stations []stationDoc
	cur, err := m.coll.Find(ctx, bson.M{"class": CLASS_STATION})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &stations); err != nil {
		return nil, err
	}
	var edges []edgeDoc
	cur, err = m.coll.Find(ctx, bson.M{"class": CLASS_EDGE})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &edges); err != nil {
		return nil, err
	}
	d, err := fromDocs(stations, edges)
	if err != nil {
		return nil, fmt.Errorf("load %s.%s: %w", m.path.DB, m.path.Coll, err)
	}
	log.Infof("loaded %d stations and %d edges from %s.%s", len(stations), len(edges), m.path.DB, m.path.Coll)
	return d, nil
}

func (m *Mongo) Save(ctx context.Context, d *transit.Dataset) error {
	stations, edges := toDocs(d)
	models := make([]mongo.WriteModel, 0, len(stations))
	for _, doc := range stations {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"class": CLASS_STATION, "data.id": doc.Data.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if len(models) > 0 {
		if _, err := m.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return err
		}
	}
	// 边没有自然主键，整体替换
	if _, err := m.coll.DeleteMany(ctx, bson.M{"class": CLASS_EDGE}); err != nil {
		return err
	}
	if len(edges) > 0 {
		docs := make([]any, len(edges))
		for i, e := range edges {
			docs[i] = e
		}
		if _, err := m.coll.InsertMany(ctx, docs); err != nil {
			return err
		}
	}
	log.Infof("saved %d stations and %d edges to %s.%s", len(stations), len(edges), m.path.DB, m.path.Coll)
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toDocs(d *transit.Dataset) ([]stationDoc, []edgeDoc) {
	stations := make([]stationDoc, 0, len(d.Stations))
	for _, s := range d.StationList() {
		stations = append(stations, stationDoc{
			Class: CLASS_STATION,
			Data:  stationData{Station: s, Times: d.TravelTimes[s.ID]},
		})
	}
	edges := make([]edgeDoc, 0, len(d.Edges))
	for _, e := range d.Edges {
		edges = append(edges, edgeDoc{Class: CLASS_EDGE, Data: e})
	}
	return stations, edges
}

// 任一车站带有times时视为预计算数据集
func fromDocs(stations []stationDoc, edges []edgeDoc) (*transit.Dataset, error) {
	if len(stations) == 0 {
		return nil, fmt.Errorf("%w: no station documents", transit.ErrMalformedDataset)
	}
	d := &transit.Dataset{Stations: make(map[string]transit.Station, len(stations))}
	for _, doc := range stations {
		s := doc.Data.Station
		if _, ok := d.Stations[s.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate station %q", transit.ErrMalformedDataset, s.ID)
		}
		d.Stations[s.ID] = s
		if doc.Data.Times != nil {
			if d.TravelTimes == nil {
				d.TravelTimes = make(map[string]map[string]float64)
			}
			d.TravelTimes[s.ID] = doc.Data.Times
		}
	}
	for _, doc := range edges {
		d.Edges = append(d.Edges, doc.Data)
	}
	if d.TravelTimes != nil && len(d.Edges) > 0 {
		log.Warnf("dataset has both travel times and edges, travel times take precedence")
	}
	return d, nil
}

var errNoMongoURI = errors.New("mongo uri is empty")

// 只有uri非空时才连接
func OpenMongo(uri string, path MongoPath) (*Mongo, error) {
	if uri == "" {
		return nil, errNoMongoURI
	}
	return NewMongo(uri, path), nil
}
