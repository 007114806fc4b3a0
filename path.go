package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/markleyboyer/subway-equidistance/store"
)

var neo4jSchemes = []string{"neo4j://", "neo4j+s://", "neo4j+ssc://", "bolt://", "bolt+s://", "bolt+ssc://"}

// 数据集位置：{fspath}、{db}.{col}或neo4j/bolt URI
type Path struct {
	File  string
	DB    string
	Coll  string
	Neo4j string
}

func NewPath(location string) (*Path, error) {
	// 检查location是否作为文件存在
	if _, err := os.Stat(location); err == nil {
		return &Path{File: location}, nil
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, nil
	}
	for _, scheme := range neo4jSchemes {
		if strings.HasPrefix(location, scheme) {
			return &Path{Neo4j: location}, nil
		}
	}
	// 尚不存在的输出文件
	if strings.EqualFold(filepath.Ext(location), ".json") || strings.ContainsRune(location, os.PathSeparator) {
		return &Path{File: location}, nil
	}
	splitted := strings.Split(location, ".")
	if len(splitted) != 2 || splitted[0] == "" || splitted[1] == "" {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", location)
	}
	return &Path{DB: splitted[0], Coll: splitted[1]}, nil
}

func (p *Path) GetDb() string {
	return p.DB
}

func (p *Path) GetColl() string {
	return p.Coll
}

func (p *Path) String() string {
	switch {
	case p.File != "":
		return p.File
	case p.Neo4j != "":
		return p.Neo4j
	default:
		return p.DB + "." + p.Coll
	}
}

// 按位置类型打开存储
func (p *Path) Open(ctx context.Context, cfg Config) (store.Store, error) {
	switch {
	case p.File != "":
		return store.NewFile(p.File), nil
	case p.Neo4j != "":
		s, err := store.NewNeo4j(ctx, p.Neo4j, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := store.OpenMongo(cfg.MongoURI, store.MongoPath{DB: p.DB, Coll: p.Coll})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
